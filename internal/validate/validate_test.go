// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-works/airlift/internal/pattern"
)

const cleanDag = `from airflow import DAG
from airflow.operators.bash import BashOperator

t1 = BashOperator(task_id='t1', bash_command='echo hi')
`

const staleDag = `from airflow.operators.bash_operator import BashOperator

t1 = BashOperator(task_id='t1', bash_command='echo hi', provide_context=True)
t2 = PythonOperator(task_id='t2', python_callable=f)
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestValidateTreeCleanSource(t *testing.T) {
	root := writeTree(t, map[string]string{"clean.py": cleanDag})

	v := New(pattern.Default())
	report, err := v.ValidateTree(root)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, 1, report.Stats.DagsChecked)
	assert.Equal(t, 0, report.Stats.DagsWithIssues)
	assert.Empty(t, report.Issues)
}

func TestValidateTreeFindsResiduals(t *testing.T) {
	root := writeTree(t, map[string]string{"stale.py": staleDag})

	v := New(pattern.Default())
	report, err := v.ValidateTree(root)
	require.NoError(t, err)

	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, 1, report.Stats.DagsChecked)
	assert.Equal(t, 1, report.Stats.DagsWithIssues)
	assert.Equal(t, 1, report.Stats.ImportIssues)
	assert.Equal(t, 1, report.Stats.ParameterIssues)
	// Both operator calls lack a current-style import.
	assert.Equal(t, 2, report.Stats.OperatorIssues)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, "stale.py", report.Issues[0].File)
	joined := ""
	for _, issue := range report.Issues[0].Issues {
		joined += issue + "\n"
	}
	assert.Contains(t, joined, "deprecated import path")
	assert.Contains(t, joined, `"airflow.operators.bash_operator"`)
	assert.Contains(t, joined, "provide_context")
	assert.Contains(t, joined, "line 1")
}

func TestValidateTreeCommentsAreIgnored(t *testing.T) {
	root := writeTree(t, map[string]string{"commented.py": "# from airflow.operators.bash_operator import BashOperator\n# provide_context=True\n"})

	v := New(pattern.Default())
	report, err := v.ValidateTree(root)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, 0, report.Stats.TotalIssues)
}

func TestValidateTreeCountsAcrossFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":          cleanDag,
		"nested/b.py":   staleDag,
		"nested/c.py":   staleDag,
		"not_python.md": staleDag,
	})

	v := New(pattern.Default())
	report, err := v.ValidateTree(root)
	require.NoError(t, err)

	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, 3, report.Stats.DagsChecked)
	assert.Equal(t, 2, report.Stats.DagsWithIssues)
	assert.Equal(t, 2, report.Stats.ImportIssues)
}

func TestValidateTreeMissingRoot(t *testing.T) {
	v := New(pattern.Default())
	report, err := v.ValidateTree(filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, ScanError))
	assert.Equal(t, StatusError, report.Status)
}

func TestValidateConnections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "connections.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "legacy_gcp": {"conn_type": "gcp"},
  "fine_pg": {"conn_type": "postgres"},
  "legacy_s3": {"conn_type": "s3"}
}`), 0o644))

	v := New(pattern.Default())
	report := &Report{Status: StatusSuccess}
	require.NoError(t, v.ValidateConnections(path, report))

	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, 2, report.Stats.ConnectionIssues)
	assert.Equal(t, 2, report.Stats.TotalIssues)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, "connections.json", report.Issues[0].File)
	// Findings are ordered by connection id.
	assert.Contains(t, report.Issues[0].Issues[0], "legacy_gcp")
	assert.Contains(t, report.Issues[0].Issues[0], "google_cloud_platform")
	assert.Contains(t, report.Issues[0].Issues[1], "legacy_s3")
}

func TestValidateConnectionsMissingFileIsFine(t *testing.T) {
	v := New(pattern.Default())
	report := &Report{Status: StatusSuccess}

	require.NoError(t, v.ValidateConnections(filepath.Join(t.TempDir(), "absent.json"), report))
	assert.Equal(t, StatusSuccess, report.Status)
}

func TestValidateConnectionsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "connections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	v := New(pattern.Default())
	report := &Report{Status: StatusSuccess}
	err := v.ValidateConnections(path, report)

	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, ScanError))
	assert.Equal(t, StatusError, report.Status)
}
