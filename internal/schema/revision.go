// SPDX-License-Identifier: Apache-2.0

// Package schema implements the metadata database migration: an ordered
// chain of reversible revisions, a tracking table holding the current
// revision pointer, and online (transactional) and offline (SQL script)
// execution modes.
package schema

import "github.com/joomcode/errorx"

var (
	ErrNamespace  = errorx.NewNamespace("schema")
	ChainError    = ErrNamespace.NewType("chain")
	RevisionError = ErrNamespace.NewType("revision", errorx.NotFound())
	ExecError     = ErrNamespace.NewType("exec")
)

// Revision is one atomic, reversible schema change. Revisions form a singly
// linked chain through DownRevision; the root has an empty DownRevision.
type Revision struct {
	// ID is the unique revision identifier (12 lowercase hex characters).
	ID string
	// DownRevision references the predecessor, empty for the chain root.
	DownRevision string
	// Description is a short human-readable summary.
	Description string
	// UpgradeStatements are executed in order to apply the revision.
	UpgradeStatements []string
	// DowngradeStatements are executed in order to revert the revision.
	DowngradeStatements []string
}
