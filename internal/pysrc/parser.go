// SPDX-License-Identifier: Apache-2.0

package pysrc

import (
	"regexp"
	"strings"
)

var (
	reImportFrom = regexp.MustCompile(`^from\s+([\w.]+)\s+import\s+(.+)$`)
	reImport     = regexp.MustCompile(`^import\s+[\w.]`)
	reFunctionDef = regexp.MustCompile(`^def\s+(\w+)\s*\(`)
	reAssign      = regexp.MustCompile(`^([\w.]+)\s*=\s*([A-Za-z_][\w.]*)\s*\(`)
	reIdent       = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// Unit is one parsed source file. It owns its nodes exclusively; a Unit is
// never shared across concurrent migrations. Damage is non-empty when the
// scanner hit end of file inside an open bracket, string or continuation;
// such a unit still renders verbatim but must not be transformed.
type Unit struct {
	Path   string
	Nodes  []Node
	Damage string
}

// Parse builds a Unit from source text. Parsing is total: statements the
// model does not recognize are preserved verbatim as KindOther nodes, so a
// parse never fails outright. Structural damage at end of file is recorded
// on the unit for the caller to act on.
func Parse(path, src string) *Unit {
	lines, damage := scanLogical(src)
	nodes := make([]Node, 0, len(lines))
	for _, ll := range lines {
		nodes = append(nodes, classify(ll))
	}
	return &Unit{Path: path, Nodes: nodes, Damage: damage}
}

// Render serializes the unit back to source text.
func (u *Unit) Render() string {
	var b strings.Builder
	for _, n := range u.Nodes {
		b.WriteString(n.Raw)
		b.WriteString("\n")
	}
	return b.String()
}

// Apply runs a node-wise transformer over the unit, replacing each node with
// the transformer's output sequence.
func (u *Unit) Apply(t Transformer) {
	out := make([]Node, 0, len(u.Nodes))
	for _, n := range u.Nodes {
		out = append(out, t.Transform(n)...)
	}
	u.Nodes = out
}

func classify(ll logicalLine) Node {
	raw := ll.text
	trimmed := strings.TrimLeft(raw, " \t")
	indent := raw[:len(raw)-len(trimmed)]

	n := Node{Kind: KindOther, Raw: raw, Line: ll.line, Indent: indent}

	// Joined statements keep their raw text but classification only looks at
	// the flattened form so spans stay valid against Raw.
	flat := trimmed

	switch {
	case flat == "":
		n.Kind = KindBlank
	case strings.HasPrefix(flat, "#"):
		n.Kind = KindComment
	case strings.HasPrefix(flat, "@"):
		n.Kind = KindDecorator
	default:
		if m := reImportFrom.FindStringSubmatch(singleLine(flat)); m != nil {
			n.Kind = KindImportFrom
			n.Module = m[1]
			n.Symbols = strings.TrimSpace(m[2])
			return n
		}
		if reImport.MatchString(flat) {
			n.Kind = KindImport
			return n
		}
		if m := reFunctionDef.FindStringSubmatch(flat); m != nil {
			n.Kind = KindFunctionDef
			n.FuncName = m[1]
			open := strings.Index(raw, "(")
			if close := matchParen(raw, open); close > open {
				n.Params = raw[open+1 : close]
			}
			return n
		}
		if m := reAssign.FindStringSubmatch(flat); m != nil {
			n.Kind = KindAssign
			n.Target = m[1]
			if call := parseCallAt(raw, m[2]); call != nil {
				n.Call = call
			}
			return n
		}
	}

	return n
}

// singleLine flattens a multi-line logical statement for regex matching.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\n\\") {
		return s
	}
	s = strings.ReplaceAll(s, "\\\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseCall re-parses a call expression from modified raw text. Transformers
// use it to refresh argument spans after splicing.
func ParseCall(raw, callee string) *Call {
	return parseCallAt(raw, callee)
}

// parseCallAt locates callee's opening parenthesis in raw and parses the call
// expression. Returns nil when the call cannot be delimited.
func parseCallAt(raw, callee string) *Call {
	idx := strings.Index(raw, callee+"(")
	if idx < 0 {
		// Whitespace between callee and paren.
		idx = strings.Index(raw, callee)
		if idx < 0 {
			return nil
		}
	}
	open := strings.Index(raw[idx:], "(")
	if open < 0 {
		return nil
	}
	open += idx

	closing := matchParen(raw, open)
	if closing <= open {
		return nil
	}

	call := &Call{Func: callee, Open: open, Close: closing}
	call.Args = splitArgs(raw, open+1, closing)
	return call
}

// matchParen returns the offset of the parenthesis closing the one at open,
// or -1 when unbalanced. Nested brackets and string literals are respected.
func matchParen(raw string, open int) int {
	if open < 0 || open >= len(raw) || raw[open] != '(' {
		return -1
	}
	depth := 0
	var str stringState
	i := open
	for i < len(raw) {
		c := raw[i]
		if str.quote != 0 {
			if c == '\\' && !str.triple {
				i += 2
				continue
			}
			if c == str.quote {
				if str.triple && strings.HasPrefix(raw[i:], strings.Repeat(string(c), 3)) {
					str = stringState{}
					i += 3
					continue
				}
				if !str.triple {
					str = stringState{}
				}
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			if strings.HasPrefix(raw[i:], strings.Repeat(string(c), 3)) {
				str = stringState{quote: c, triple: true}
				i += 3
				continue
			}
			str = stringState{quote: c}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitArgs parses the argument list between the byte offsets lo (just after
// the open paren) and hi (the close paren), splitting on top-level commas.
func splitArgs(raw string, lo, hi int) []Arg {
	var args []Arg
	depth := 0
	var str stringState
	start := lo

	emit := func(end int) {
		seg := raw[start:end]
		lead := len(seg) - len(strings.TrimLeft(seg, " \t\n"))
		trail := len(seg) - len(strings.TrimRight(seg, " \t\n"))
		s, e := start+lead, end-trail
		if s >= e {
			return
		}
		args = append(args, makeArg(raw, s, e))
	}

	i := lo
	for i < hi {
		c := raw[i]
		if str.quote != 0 {
			if c == '\\' && !str.triple {
				i += 2
				continue
			}
			if c == str.quote {
				if str.triple && strings.HasPrefix(raw[i:], strings.Repeat(string(c), 3)) {
					str = stringState{}
					i += 3
					continue
				}
				if !str.triple {
					str = stringState{}
				}
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			if strings.HasPrefix(raw[i:], strings.Repeat(string(c), 3)) {
				str = stringState{quote: c, triple: true}
				i += 3
				continue
			}
			str = stringState{quote: c}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				emit(i)
				start = i + 1
			}
		}
		i++
	}
	emit(hi)

	return args
}

// makeArg builds an Arg for the span [s, e), detecting a keyword argument of
// the form "name=value" where name is a plain identifier and the equals sign
// is not part of a comparison.
func makeArg(raw string, s, e int) Arg {
	a := Arg{Start: s, End: e, Value: raw[s:e]}

	eq := strings.Index(raw[s:e], "=")
	if eq <= 0 {
		return a
	}
	if s+eq+1 < e && raw[s+eq+1] == '=' {
		return a
	}
	name := strings.TrimSpace(raw[s : s+eq])
	if !reIdent.MatchString(name) {
		return a
	}
	a.Keyword = name
	a.Value = strings.TrimSpace(raw[s+eq+1 : e])
	return a
}

// RemoveKeywordArgs returns Raw with every keyword argument whose name is
// accepted by drop spliced out of the call, along with the names removed.
// Surrounding formatting is preserved; only the argument text and one
// adjacent comma are deleted per removal.
func RemoveKeywordArgs(raw string, call *Call, drop func(string) bool) (string, []string) {
	var removed []string
	out := raw

	// Walk in reverse so earlier spans stay valid after each splice.
	for i := len(call.Args) - 1; i >= 0; i-- {
		a := call.Args[i]
		if a.Keyword == "" || !drop(a.Keyword) {
			continue
		}
		removed = append([]string{a.Keyword}, removed...)

		s, e := a.Start, a.End
		if i > 0 {
			// Absorb the separating comma and whitespace before this argument.
			prev := call.Args[i-1].End
			if c := strings.Index(out[prev:s], ","); c >= 0 {
				s = prev + c
			}
		} else {
			// First argument: absorb the comma and whitespace after it.
			rest := out[e:]
			if c := strings.Index(rest, ","); c >= 0 {
				trimmed := strings.TrimLeft(rest[c+1:], " \t\n")
				e += c + 1 + (len(rest[c+1:]) - len(trimmed))
			}
		}
		out = out[:s] + out[e:]
	}

	return out, removed
}
