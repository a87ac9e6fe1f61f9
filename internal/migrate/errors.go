// SPDX-License-Identifier: Apache-2.0

package migrate

import "github.com/joomcode/errorx"

var (
	ErrNamespace   = errorx.NewNamespace("migrate")
	TransformError = ErrNamespace.NewType("transform")
	IOError        = ErrNamespace.NewType("io")
)
