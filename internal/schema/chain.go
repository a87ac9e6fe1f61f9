// SPDX-License-Identifier: Apache-2.0

package schema

// Chain is a validated, ordered set of revisions forming one singly linked
// list from root to head. Construction verifies the linked-list invariants;
// a valid Chain is immutable afterwards.
type Chain struct {
	ordered []Revision
	byID    map[string]Revision
}

// NewChain validates the revision set and returns a Chain. The set must have
// unique ids, exactly one root (empty DownRevision), no cycles, and every
// DownRevision must reference a member of the set.
func NewChain(revisions ...Revision) (*Chain, error) {
	if len(revisions) == 0 {
		return nil, ChainError.New("revision chain is empty")
	}

	byID := make(map[string]Revision, len(revisions))
	referenced := make(map[string]string, len(revisions))
	var root *Revision

	for i := range revisions {
		rev := revisions[i]
		if rev.ID == "" {
			return nil, ChainError.New("revision with empty id")
		}
		if _, dup := byID[rev.ID]; dup {
			return nil, ChainError.New("duplicate revision id %s", rev.ID)
		}
		byID[rev.ID] = rev

		if rev.DownRevision == "" {
			if root != nil {
				return nil, ChainError.New("multiple roots: %s and %s", root.ID, rev.ID)
			}
			root = &revisions[i]
			continue
		}
		if prev, dup := referenced[rev.DownRevision]; dup {
			return nil, ChainError.New("revisions %s and %s share predecessor %s", prev, rev.ID, rev.DownRevision)
		}
		referenced[rev.DownRevision] = rev.ID
	}

	if root == nil {
		return nil, ChainError.New("no root revision (every revision has a predecessor)")
	}

	for _, rev := range revisions {
		if rev.DownRevision == "" {
			continue
		}
		if _, ok := byID[rev.DownRevision]; !ok {
			return nil, ChainError.New("revision %s references unknown predecessor %s", rev.ID, rev.DownRevision)
		}
	}

	// Walk root to head; the walk visiting every member proves the set is a
	// single acyclic list.
	ordered := make([]Revision, 0, len(revisions))
	for id := root.ID; id != ""; {
		rev := byID[id]
		ordered = append(ordered, rev)
		id = referenced[rev.ID]
	}
	if len(ordered) != len(revisions) {
		return nil, ChainError.New("revision set is not a single linked chain (%d of %d reachable from root)",
			len(ordered), len(revisions))
	}

	return &Chain{ordered: ordered, byID: byID}, nil
}

// Head returns the id of the revision no other revision lists as its
// predecessor.
func (c *Chain) Head() string {
	return c.ordered[len(c.ordered)-1].ID
}

// Root returns the id of the revision with no predecessor.
func (c *Chain) Root() string {
	return c.ordered[0].ID
}

// Get returns the revision with the given id.
func (c *Chain) Get(id string) (Revision, bool) {
	rev, ok := c.byID[id]
	return rev, ok
}

// All returns the revisions in application order, root to head.
func (c *Chain) All() []Revision {
	out := make([]Revision, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// UpgradePath returns the revisions to apply, in root-to-head order, to move
// from current (empty for an uninitialized database) to target. Target "" or
// "head" means the chain head. Current must precede target in the chain.
func (c *Chain) UpgradePath(current, target string) ([]Revision, error) {
	targetIdx, err := c.index(target, len(c.ordered)-1)
	if err != nil {
		return nil, err
	}

	startIdx := 0
	if current != "" {
		idx, err := c.index(current, -1)
		if err != nil {
			return nil, err
		}
		startIdx = idx + 1
	}

	if targetIdx < startIdx-1 {
		return nil, ChainError.New("target %s precedes current revision %s; use downgrade", target, current)
	}
	return c.ordered[startIdx : targetIdx+1], nil
}

// DowngradePath returns the revisions to revert, in head-to-root order, to
// move from current back to target. Target "" or "base" reverts everything.
// The returned revisions are those applied after target, newest first.
func (c *Chain) DowngradePath(current, target string) ([]Revision, error) {
	if current == "" {
		return nil, ChainError.New("database has no current revision, nothing to downgrade")
	}
	currentIdx, err := c.index(current, -1)
	if err != nil {
		return nil, err
	}

	targetIdx := -1
	if target != "" && target != "base" {
		idx, err := c.index(target, -1)
		if err != nil {
			return nil, err
		}
		targetIdx = idx
	}

	if targetIdx > currentIdx {
		return nil, ChainError.New("target %s is ahead of current revision %s; use upgrade", target, current)
	}

	out := make([]Revision, 0, currentIdx-targetIdx)
	for i := currentIdx; i > targetIdx; i-- {
		out = append(out, c.ordered[i])
	}
	return out, nil
}

func (c *Chain) index(id string, def int) (int, error) {
	if id == "" || id == "head" {
		return def, nil
	}
	for i, rev := range c.ordered {
		if rev.ID == id {
			return i, nil
		}
	}
	return 0, RevisionError.New("unknown revision %s", id)
}
