// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	"fmt"
	"strings"

	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/pysrc"
)

const (
	legacyTaskCtor      = "PythonOperator"
	decoratorImportLine = "from airflow.decorators import task"
)

// taskBinding is the result of scanning one legacy callback-task assignment.
type taskBinding struct {
	taskID        string
	injectContext bool
	assignRaw     string
	target        string
	callable      string
}

// TaskflowConverter converts the imperative PythonOperator pattern into the
// decorator-based TaskFlow pattern.
//
// Pass 1 scans assignments calling the legacy constructor and records the
// referenced callable, the declared task id and the context-injection flag.
// Pass 2 appends a @task decorator to every matching function definition.
// The decorator import is inserted once at the top of the unit. The legacy
// assignments themselves are left in place; TrailingComments describes the
// manual replacement for each of them.
//
// The conversion is idempotent for already-converted input: an existing
// decorator import is not duplicated, decorated functions are skipped and
// advisories already present in the source are not appended again.
type TaskflowConverter struct {
	table            *pattern.Table
	bindings         map[string]taskBinding
	warnings         []string
	trailingComments []string
}

// NewTaskflowConverter builds a TaskflowConverter over the given table.
func NewTaskflowConverter(table *pattern.Table) *TaskflowConverter {
	return &TaskflowConverter{table: table}
}

// Warnings returns migration warnings accumulated during Convert.
func (c *TaskflowConverter) Warnings() []string {
	return c.warnings
}

// TrailingComments returns the advisory comment lines to append to the
// serialized source, one per legacy assignment that needs a manual rewrite.
// Each line is already a complete comment including the leading "# ".
func (c *TaskflowConverter) TrailingComments() []string {
	return c.trailingComments
}

// Scan runs the read-only first pass. It must run before any transformer
// that strips deprecated keyword arguments, otherwise the context-injection
// flag is no longer observable. Convert falls back to scanning itself when
// Scan was not called.
func (c *TaskflowConverter) Scan(u *pysrc.Unit) {
	c.bindings = c.collectBindings(u)
}

// Convert runs both passes over the unit in place.
func (c *TaskflowConverter) Convert(u *pysrc.Unit) {
	bindings := c.bindings
	if bindings == nil {
		bindings = c.collectBindings(u)
	}
	if len(bindings) == 0 {
		return
	}

	c.decorateFunctions(u, bindings)
	c.insertDecoratorImport(u)

	for _, b := range bindings {
		comment := fmt.Sprintf(
			"# %s replace '%s = %s(task_id=%s, python_callable=%s, ...)' with '%s = %s()'",
			AdvisoryMarker, b.target, legacyTaskCtor, quotePy(b.taskID), b.callable, b.target, b.callable)
		// Re-converting previously written output finds the same legacy
		// assignments again; an advisory already present in the unit is not
		// stacked a second time.
		if unitContains(u, comment) {
			continue
		}
		c.trailingComments = append(c.trailingComments, comment)
	}
}

func unitContains(u *pysrc.Unit, text string) bool {
	for _, n := range u.Nodes {
		if strings.Contains(n.Raw, text) {
			return true
		}
	}
	return false
}

// collectBindings is the read-only first pass.
func (c *TaskflowConverter) collectBindings(u *pysrc.Unit) map[string]taskBinding {
	bindings := make(map[string]taskBinding)

	for _, n := range u.Nodes {
		if n.Kind != pysrc.KindAssign || n.Call == nil || n.Call.Func != legacyTaskCtor {
			continue
		}

		callableArg, ok := n.Call.KeywordArg("python_callable")
		if !ok {
			continue
		}
		callable := strings.TrimSpace(callableArg.Value)

		b := taskBinding{
			assignRaw: n.Raw,
			target:    n.Target,
			callable:  callable,
		}
		if a, ok := n.Call.KeywordArg("task_id"); ok {
			b.taskID = unquotePy(a.Value)
		}
		if a, ok := n.Call.KeywordArg(pattern.ContextInjectionParam); ok {
			b.injectContext = strings.TrimSpace(a.Value) == "True"
		}

		bindings[callable] = b
	}

	return bindings
}

// decorateFunctions is the mutating second pass.
func (c *TaskflowConverter) decorateFunctions(u *pysrc.Unit, bindings map[string]taskBinding) {
	out := make([]pysrc.Node, 0, len(u.Nodes)+len(bindings))

	var prev pysrc.Node
	for _, n := range u.Nodes {
		if n.Kind == pysrc.KindFunctionDef {
			if b, ok := bindings[n.FuncName]; ok {
				alreadyDecorated := prev.Kind == pysrc.KindDecorator && strings.Contains(prev.Raw, "@task")
				if !alreadyDecorated {
					if b.injectContext && !strings.Contains(n.Params, "**") {
						// Signature rewriting is ambiguous in the general
						// case; flag it for human review instead.
						out = append(out, pysrc.CommentNode(n.Indent, fmt.Sprintf(
							"%s %s requested context injection; add '**kwargs' to %s if it reads the execution context",
							AdvisoryMarker, legacyTaskCtor, n.FuncName)))
					}
					decorator := pysrc.Node{
						Kind:   pysrc.KindDecorator,
						Raw:    fmt.Sprintf("%s@task(task_id=%s)", n.Indent, quotePy(b.taskID)),
						Indent: n.Indent,
					}
					out = append(out, decorator)
				}
			}
		}
		out = append(out, n)
		prev = n
	}

	u.Nodes = out
}

// insertDecoratorImport places the decorator import after the last top-level
// import, or at the top of the file when there are none. A pre-existing
// decorator import is never duplicated.
func (c *TaskflowConverter) insertDecoratorImport(u *pysrc.Unit) {
	lastImport := -1
	for i, n := range u.Nodes {
		if strings.Contains(n.Raw, decoratorImportLine) {
			return
		}
		if (n.Kind == pysrc.KindImportFrom || n.Kind == pysrc.KindImport) && n.Indent == "" {
			lastImport = i
		}
	}

	node := pysrc.Node{Kind: pysrc.KindImportFrom, Raw: decoratorImportLine, Module: "airflow.decorators", Symbols: "task"}
	at := lastImport + 1
	u.Nodes = append(u.Nodes[:at], append([]pysrc.Node{node}, u.Nodes[at:]...)...)
}

func unquotePy(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`'''`, `"""`, `'`, `"`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

func quotePy(s string) string {
	return "'" + s + "'"
}
