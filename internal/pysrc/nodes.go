// SPDX-License-Identifier: Apache-2.0

// Package pysrc models Python workflow source files at the statement level.
//
// It is not a general Python parser. It recognizes exactly the statement
// shapes the migration transformers operate on (imports, call assignments,
// function definitions, decorators, comments) and keeps the raw text of every
// logical line so that untouched statements round-trip byte for byte.
package pysrc

// Kind classifies a statement node.
type Kind int

const (
	KindOther Kind = iota
	KindBlank
	KindComment
	KindImportFrom
	KindImport
	KindAssign
	KindFunctionDef
	KindDecorator
)

// Node is one logical source line (a statement that may span several physical
// lines). Raw always holds the original text without a trailing newline;
// transformers that modify a node must keep Raw consistent with the change.
type Node struct {
	Kind   Kind
	Raw    string
	Line   int
	Indent string

	// KindImportFrom: "from Module import Symbols"
	Module  string
	Symbols string

	// KindAssign: "Target = <expr>"; Call is non-nil when the right-hand
	// side is a call expression.
	Target string
	Call   *Call

	// KindFunctionDef: "def FuncName(Params):"
	FuncName string
	Params   string
}

// Call is a parsed call expression inside a node's Raw text.
type Call struct {
	// Func is the callee as written, possibly dotted.
	Func string
	// Args holds the arguments in source order with byte spans into Raw.
	Args []Arg
	// Open and Close are the byte offsets of the call parentheses in Raw.
	Open  int
	Close int
}

// Arg is one call argument. For keyword arguments, Keyword holds the name and
// Value the raw value text; positional arguments leave Keyword empty. Start
// and End delimit the whole argument (including the keyword) within Raw.
type Arg struct {
	Keyword string
	Value   string
	Start   int
	End     int
}

// Keyword returns the argument with the given keyword name, if present.
func (c *Call) KeywordArg(name string) (Arg, bool) {
	for _, a := range c.Args {
		if a.Keyword == name {
			return a, true
		}
	}
	return Arg{}, false
}

// CommentNode builds an advisory comment node at the given indent.
func CommentNode(indent, text string) Node {
	return Node{
		Kind:   KindComment,
		Raw:    indent + "# " + text,
		Indent: indent,
	}
}

// Transformer rewrites a single node into an ordered sequence of output
// nodes. Returning the input unchanged in a one-element slice is the identity
// transform; returning extra nodes prepends or appends sibling statements.
type Transformer interface {
	Transform(n Node) []Node
}
