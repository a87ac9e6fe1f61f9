// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataops-works/airlift/internal/pattern"
)

const legacyHookPlugin = `from airflow.hooks.base_hook import BaseHook

class VaultHook(BaseHook):
    def get_conn(self):
        return None
`

func TestClassify(t *testing.T) {
	m := NewPluginMigrator(pattern.Default())

	tests := []struct {
		name   string
		src    string
		expect string
	}{
		{
			name:   "hook subclass",
			src:    "class MyHook(BaseHook):\n    pass\n",
			expect: "hook",
		},
		{
			name:   "operator subclass",
			src:    "class MyOperator(BaseOperator):\n    pass\n",
			expect: "operator",
		},
		{
			name:   "sensor subclass",
			src:    "class MySensor(BaseSensorOperator):\n    pass\n",
			expect: "sensor",
		},
		{
			name:   "dotted base class",
			src:    "class MyHook(airflow.hooks.base.BaseHook):\n    pass\n",
			expect: "hook",
		},
		{
			name:   "unknown base class",
			src:    "class Helper(object):\n    pass\n",
			expect: "other",
		},
		{
			name:   "no class definitions",
			src:    "x = 1\n",
			expect: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, m.Classify(tt.src))
		})
	}
}

func TestPluginMigrateFile(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	source := filepath.Join(sourceDir, "vault_hook.py")
	target := filepath.Join(targetDir, "vault_hook.py")
	require.NoError(t, os.WriteFile(source, []byte(legacyHookPlugin), 0o644))

	m := NewPluginMigrator(pattern.Default())
	r := m.MigrateFile(source, target)
	assert.Equal(t, StatusSuccess, r.Status)

	out, err := os.ReadFile(target)
	require.NoError(t, err)
	migrated := string(out)

	// Import rewrite runs and the hook advisory heads the file.
	assert.Contains(t, migrated, "from airflow.hooks.base import BaseHook")
	assert.True(t, strings.HasPrefix(migrated, "# "),
		"advisory header must be the first line")
	assert.Contains(t, migrated, "hooks should ship as provider packages")
}

func TestPluginAdvisoryNotDuplicated(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	source := filepath.Join(sourceDir, "vault_hook.py")
	require.NoError(t, os.WriteFile(source, []byte(legacyHookPlugin), 0o644))

	m := NewPluginMigrator(pattern.Default())
	first := filepath.Join(targetDir, "once.py")
	require.Equal(t, StatusSuccess, m.MigrateFile(source, first).Status)

	second := filepath.Join(targetDir, "twice.py")
	require.Equal(t, StatusSuccess, m.MigrateFile(first, second).Status)

	out, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), "hooks should ship as provider packages"))
}

func TestPluginMigrateDirectorySkipsTaskflow(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "ops.py"), []byte(
		"class NotifyOperator(BaseOperator):\n    pass\n"), 0o644))

	m := NewPluginMigrator(pattern.Default(), WithSkipTaskflow(true))
	batch := m.MigrateDirectory(sourceDir, targetDir)
	assert.Equal(t, StatusSuccess, batch.Status)
	assert.Equal(t, 1, batch.Stats.Processed)

	out, err := os.ReadFile(filepath.Join(targetDir, "ops.py"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "operators no longer need plugin registration")
}
