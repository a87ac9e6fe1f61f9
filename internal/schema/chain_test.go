// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRevisions() []Revision {
	return []Revision{
		{ID: "aaa111", Description: "first",
			UpgradeStatements:   []string{"CREATE TABLE a (id INT)"},
			DowngradeStatements: []string{"DROP TABLE a"}},
		{ID: "bbb222", DownRevision: "aaa111", Description: "second",
			UpgradeStatements:   []string{"CREATE TABLE b (id INT)"},
			DowngradeStatements: []string{"DROP TABLE b"}},
		{ID: "ccc333", DownRevision: "bbb222", Description: "third",
			UpgradeStatements:   []string{"ALTER TABLE a ADD COLUMN name TEXT"},
			DowngradeStatements: []string{"ALTER TABLE a DROP COLUMN name"}},
	}
}

func revisionIDs(revs []Revision) []string {
	ids := make([]string, 0, len(revs))
	for _, r := range revs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestNewChain(t *testing.T) {
	chain, err := NewChain(testRevisions()...)
	require.NoError(t, err)

	assert.Equal(t, "aaa111", chain.Root())
	assert.Equal(t, "ccc333", chain.Head())
	assert.Equal(t, []string{"aaa111", "bbb222", "ccc333"}, revisionIDs(chain.All()))

	rev, ok := chain.Get("bbb222")
	require.True(t, ok)
	assert.Equal(t, "second", rev.Description)
}

func TestNewChainOrderIndependent(t *testing.T) {
	revs := testRevisions()
	shuffled := []Revision{revs[2], revs[0], revs[1]}

	chain, err := NewChain(shuffled...)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa111", "bbb222", "ccc333"}, revisionIDs(chain.All()))
}

func TestNewChainRejectsInvalidSets(t *testing.T) {
	tests := []struct {
		name      string
		revisions []Revision
	}{
		{
			name:      "empty set",
			revisions: nil,
		},
		{
			name: "duplicate id",
			revisions: []Revision{
				{ID: "aaa111"},
				{ID: "aaa111", DownRevision: "aaa111"},
			},
		},
		{
			name: "multiple roots",
			revisions: []Revision{
				{ID: "aaa111"},
				{ID: "bbb222"},
			},
		},
		{
			name: "no root",
			revisions: []Revision{
				{ID: "aaa111", DownRevision: "bbb222"},
				{ID: "bbb222", DownRevision: "aaa111"},
			},
		},
		{
			name: "unknown predecessor",
			revisions: []Revision{
				{ID: "aaa111"},
				{ID: "bbb222", DownRevision: "zzz999"},
			},
		},
		{
			name: "branching chain",
			revisions: []Revision{
				{ID: "aaa111"},
				{ID: "bbb222", DownRevision: "aaa111"},
				{ID: "ccc333", DownRevision: "aaa111"},
			},
		},
		{
			name: "empty id",
			revisions: []Revision{
				{ID: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChain(tt.revisions...)
			require.Error(t, err)
			assert.True(t, errorx.IsOfType(err, ChainError))
		})
	}
}

func TestUpgradePath(t *testing.T) {
	chain, err := NewChain(testRevisions()...)
	require.NoError(t, err)

	tests := []struct {
		name      string
		current   string
		target    string
		expectIDs []string
		expectErr bool
	}{
		{
			name:      "uninitialized to head",
			current:   "",
			target:    "head",
			expectIDs: []string{"aaa111", "bbb222", "ccc333"},
		},
		{
			name:      "empty target means head",
			current:   "aaa111",
			target:    "",
			expectIDs: []string{"bbb222", "ccc333"},
		},
		{
			name:      "partial upgrade to explicit target",
			current:   "aaa111",
			target:    "bbb222",
			expectIDs: []string{"bbb222"},
		},
		{
			name:      "already at target",
			current:   "ccc333",
			target:    "head",
			expectIDs: []string{},
		},
		{
			name:      "target behind current",
			current:   "ccc333",
			target:    "aaa111",
			expectErr: true,
		},
		{
			name:      "unknown target",
			current:   "",
			target:    "zzz999",
			expectErr: true,
		},
		{
			name:      "unknown current",
			current:   "zzz999",
			target:    "head",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := chain.UpgradePath(tt.current, tt.target)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectIDs, revisionIDs(path))
		})
	}
}

func TestDowngradePath(t *testing.T) {
	chain, err := NewChain(testRevisions()...)
	require.NoError(t, err)

	tests := []struct {
		name      string
		current   string
		target    string
		expectIDs []string
		expectErr bool
	}{
		{
			name:      "head to base reverts everything newest first",
			current:   "ccc333",
			target:    "base",
			expectIDs: []string{"ccc333", "bbb222", "aaa111"},
		},
		{
			name:      "empty target means base",
			current:   "bbb222",
			target:    "",
			expectIDs: []string{"bbb222", "aaa111"},
		},
		{
			name:      "partial downgrade",
			current:   "ccc333",
			target:    "aaa111",
			expectIDs: []string{"ccc333", "bbb222"},
		},
		{
			name:      "already at target",
			current:   "aaa111",
			target:    "aaa111",
			expectIDs: []string{},
		},
		{
			name:      "target ahead of current",
			current:   "aaa111",
			target:    "ccc333",
			expectErr: true,
		},
		{
			name:      "uninitialized database",
			current:   "",
			target:    "base",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := chain.DowngradePath(tt.current, tt.target)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectIDs, revisionIDs(path))
		})
	}
}

func TestUnknownRevisionCarriesNotFound(t *testing.T) {
	chain, err := NewChain(testRevisions()...)
	require.NoError(t, err)

	_, err = chain.UpgradePath("", "zzz999")
	require.Error(t, err)
	assert.True(t, errorx.HasTrait(err, errorx.NotFound()))
}

func TestDefaultChain(t *testing.T) {
	chain := DefaultChain()

	assert.Equal(t, "952da73b5eff", chain.Root())
	assert.Equal(t, "8f966b9c467a", chain.Head())

	// Every revision must be reversible.
	for _, rev := range chain.All() {
		assert.NotEmpty(t, rev.UpgradeStatements, "revision %s has no upgrade statements", rev.ID)
		assert.NotEmpty(t, rev.DowngradeStatements, "revision %s has no downgrade statements", rev.ID)
		assert.NotEmpty(t, rev.Description, "revision %s has no description", rev.ID)
	}
}
