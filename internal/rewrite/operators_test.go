// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/pysrc"
)

func parseAssign(t *testing.T, raw string) pysrc.Node {
	t.Helper()
	unit := pysrc.Parse("test.py", raw+"\n")
	require.Len(t, unit.Nodes, 1)
	require.Equal(t, pysrc.KindAssign, unit.Nodes[0].Kind)
	return unit.Nodes[0]
}

func TestOperatorTransformStripsDeprecatedParams(t *testing.T) {
	r := NewOperatorRewriter(pattern.Default())

	n := parseAssign(t, `t1 = PythonOperator(task_id='extract', provide_context=True, python_callable=extract)`)
	out := r.Transform(n)
	require.Len(t, out, 1)

	assert.Equal(t, `t1 = PythonOperator(task_id='extract', python_callable=extract)`, out[0].Raw)
	require.NotNil(t, out[0].Call)
	_, ok := out[0].Call.KeywordArg("provide_context")
	assert.False(t, ok)

	// Stripping the context flag set to True records a review warning.
	require.Len(t, r.Warnings(), 1)
	assert.Contains(t, r.Warnings()[0], "provide_context")
	assert.Contains(t, r.Warnings()[0], "PythonOperator")
}

func TestOperatorTransformPreservesOtherArgs(t *testing.T) {
	r := NewOperatorRewriter(pattern.Default())

	n := parseAssign(t, `t2 = BashOperator(task_id='t2', bash_command='echo hi', xcom_push=True, retries=3)`)
	out := r.Transform(n)
	require.Len(t, out, 1)

	assert.Equal(t, `t2 = BashOperator(task_id='t2', bash_command='echo hi', retries=3)`, out[0].Raw)
	assert.Empty(t, r.Warnings())
}

func TestOperatorTransformIgnoresUnmappedClasses(t *testing.T) {
	r := NewOperatorRewriter(pattern.Default())

	n := parseAssign(t, `t3 = MyCustomOperator(task_id='t3', provide_context=True)`)
	out := r.Transform(n)
	require.Len(t, out, 1)
	assert.Equal(t, n.Raw, out[0].Raw)
}

func TestOperatorTransformContextFlagFalseIsSilent(t *testing.T) {
	r := NewOperatorRewriter(pattern.Default())

	n := parseAssign(t, `t4 = PythonOperator(task_id='t4', provide_context=False, python_callable=f)`)
	out := r.Transform(n)
	require.Len(t, out, 1)

	assert.Equal(t, `t4 = PythonOperator(task_id='t4', python_callable=f)`, out[0].Raw)
	assert.Empty(t, r.Warnings())
}

func TestPatternUpdateRewriterAddsDagAdvisory(t *testing.T) {
	src := `dag = DAG('daily_report', schedule_interval='@daily')
t1 = BashOperator(task_id='t1', bash_command='echo hi')
`
	unit := pysrc.Parse("dag.py", src)
	unit.Apply(NewPatternUpdateRewriter())

	rendered := unit.Render()
	assert.Contains(t, rendered, "# "+AdvisoryMarker+" consider the context manager form")

	// The assignment itself is unchanged and the advisory precedes it.
	require.GreaterOrEqual(t, len(unit.Nodes), 3)
	assert.Equal(t, pysrc.KindComment, unit.Nodes[0].Kind)
	assert.Equal(t, `dag = DAG('daily_report', schedule_interval='@daily')`, unit.Nodes[1].Raw)
}

func TestPatternUpdateRewriterIsIdempotent(t *testing.T) {
	src := `dag = DAG('daily_report')
`
	unit := pysrc.Parse("dag.py", src)
	unit.Apply(NewPatternUpdateRewriter())
	once := unit.Render()

	again := pysrc.Parse("dag.py", once)
	again.Apply(NewPatternUpdateRewriter())
	assert.Equal(t, once, again.Render())
}
