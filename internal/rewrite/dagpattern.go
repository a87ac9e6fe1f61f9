// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	"strings"

	"github.com/dataops-works/airlift/internal/pysrc"
)

const dagAdvisory = "consider the context manager form: with DAG(...) as dag:"

// PatternUpdateRewriter prepends an advisory comment before assignments that
// construct a DAG directly, recommending the scoped context-manager idiom.
// The original assignment is never altered.
type PatternUpdateRewriter struct {
	prevComment string
}

// NewPatternUpdateRewriter builds a PatternUpdateRewriter.
func NewPatternUpdateRewriter() *PatternUpdateRewriter {
	return &PatternUpdateRewriter{}
}

// Transform inserts the advisory comment node immediately before a DAG
// constructor assignment. Running twice is stable: the comment is skipped
// when the previous node already carries it.
func (r *PatternUpdateRewriter) Transform(n pysrc.Node) []pysrc.Node {
	prev := r.prevComment
	r.prevComment = ""
	if n.Kind == pysrc.KindComment {
		r.prevComment = n.Raw
	}

	if n.Kind != pysrc.KindAssign || n.Call == nil || n.Call.Func != "DAG" {
		return []pysrc.Node{n}
	}
	if strings.Contains(prev, dagAdvisory) {
		return []pysrc.Node{n}
	}

	comment := pysrc.CommentNode(n.Indent, AdvisoryMarker+" "+dagAdvisory)
	r.prevComment = ""
	return []pysrc.Node{comment, n}
}
