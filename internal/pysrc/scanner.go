// SPDX-License-Identifier: Apache-2.0

package pysrc

import (
	"strconv"
	"strings"
)

// logicalLine is a statement joined from one or more physical lines.
type logicalLine struct {
	text string
	line int
}

// scanLogical splits source text into logical lines. Physical lines are
// joined while a bracket pair or a triple-quoted string is open, or when the
// previous line ends with a backslash continuation. Brackets inside string
// literals and comments do not count toward nesting depth.
//
// The second return value is non-empty when the scanner hit end of file with
// a construct still open; the joined lines are emitted regardless so callers
// can fall back to verbatim passthrough.
func scanLogical(src string) ([]logicalLine, string) {
	physical := strings.Split(src, "\n")
	// A trailing newline yields one empty trailing element; drop it so the
	// writer can re-append the final newline deterministically.
	if len(physical) > 0 && physical[len(physical)-1] == "" {
		physical = physical[:len(physical)-1]
	}

	var out []logicalLine
	var buf strings.Builder
	start := 0
	depth := 0
	var str stringState

	flush := func() {
		if buf.Len() == 0 && start == 0 {
			return
		}
		out = append(out, logicalLine{text: buf.String(), line: start + 1})
		buf.Reset()
	}

	open := false
	for i, line := range physical {
		if !open {
			start = i
		} else {
			buf.WriteString("\n")
		}
		buf.WriteString(line)

		depth, str = scanLine(line, depth, str)

		continued := strings.HasSuffix(line, "\\") && !str.inTriple()
		if depth > 0 || str.inTriple() || continued {
			open = true
			continue
		}

		open = false
		out = append(out, logicalLine{text: buf.String(), line: start + 1})
		buf.Reset()
	}

	// Unterminated bracket or string at EOF: emit what we have and report
	// the damage.
	damage := ""
	if open {
		flush()
		switch {
		case str.inTriple():
			damage = "unterminated triple-quoted string at end of file, statement starting at line " + strconv.Itoa(start+1)
		case depth > 0:
			damage = "unterminated bracket at end of file, statement starting at line " + strconv.Itoa(start+1)
		default:
			damage = "trailing line continuation at end of file, statement starting at line " + strconv.Itoa(start+1)
		}
	}

	return out, damage
}

// stringState tracks whether the scanner is inside a string literal and which
// quote opened it.
type stringState struct {
	quote  byte // 0 when not in a string
	triple bool
}

func (s stringState) inTriple() bool { return s.quote != 0 && s.triple }

// scanLine advances bracket depth and string state across one physical line.
// Single-quoted strings never span lines, so they are closed at end of line
// even when unterminated (best-effort recovery for malformed input).
func scanLine(line string, depth int, str stringState) (int, stringState) {
	i := 0
	for i < len(line) {
		c := line[i]

		if str.quote != 0 {
			if c == '\\' && !str.triple {
				i += 2
				continue
			}
			if c == str.quote {
				if str.triple {
					if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
						str = stringState{}
						i += 3
						continue
					}
				} else {
					str = stringState{}
				}
			}
			i++
			continue
		}

		switch c {
		case '#':
			return depth, str
		case '\'', '"':
			if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
				str = stringState{quote: c, triple: true}
				i += 3
				continue
			}
			str = stringState{quote: c}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		}
		i++
	}

	if str.quote != 0 && !str.triple {
		str = stringState{}
	}
	return depth, str
}
