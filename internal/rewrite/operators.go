// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	"fmt"
	"strings"

	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/pysrc"
)

// OperatorRewriter strips deprecated keyword arguments from call sites of
// mapped operator classes. Non-deprecated keyword arguments are preserved
// verbatim, including their formatting.
type OperatorRewriter struct {
	table    *pattern.Table
	warnings []string
}

// NewOperatorRewriter builds an OperatorRewriter over the given table.
func NewOperatorRewriter(table *pattern.Table) *OperatorRewriter {
	return &OperatorRewriter{table: table}
}

// Warnings returns migration warnings accumulated across Transform calls.
func (r *OperatorRewriter) Warnings() []string {
	return r.warnings
}

// Transform rewrites assignment nodes whose right-hand side calls a mapped
// operator class. The context-injection flag additionally records a warning
// when set to True: no code change is needed because 2.x callables receive
// the execution context automatically, but the callable signature should be
// reviewed.
func (r *OperatorRewriter) Transform(n pysrc.Node) []pysrc.Node {
	if n.Kind != pysrc.KindAssign || n.Call == nil {
		return []pysrc.Node{n}
	}
	if _, ok := r.table.LookupOperator(n.Call.Func); !ok {
		return []pysrc.Node{n}
	}

	if a, ok := n.Call.KeywordArg(pattern.ContextInjectionParam); ok && strings.TrimSpace(a.Value) == "True" {
		r.warnings = append(r.warnings, fmt.Sprintf(
			"line %d: %s=True on %s is obsolete; the execution context is passed automatically, verify the callable accepts **kwargs",
			n.Line, pattern.ContextInjectionParam, n.Call.Func))
	}

	raw, removed := pysrc.RemoveKeywordArgs(n.Raw, n.Call, r.table.IsDeprecatedParam)
	if len(removed) == 0 {
		return []pysrc.Node{n}
	}

	n.Raw = raw
	n.Call = pysrc.ParseCall(raw, n.Call.Func)
	return []pysrc.Node{n}
}
