// SPDX-License-Identifier: Apache-2.0

package backup

import "github.com/joomcode/errorx"

var (
	ErrNamespace = errorx.NewNamespace("backup")

	// SnapshotError indicates a snapshot could not be created or restored.
	SnapshotError = ErrNamespace.NewType("snapshot_error")

	// NotFoundError indicates no snapshot matched the request.
	NotFoundError = ErrNamespace.NewType("not_found", errorx.NotFound())

	// LockError indicates the backup directory lock could not be acquired.
	LockError = ErrNamespace.NewType("lock_error")
)
