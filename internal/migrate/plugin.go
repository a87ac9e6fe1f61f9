// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"regexp"
	"strings"

	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/pysrc"
	"github.com/dataops-works/airlift/internal/rewrite"
)

var reClassDef = regexp.MustCompile(`class\s+\w+\s*\(\s*([\w.]+)`)

// Advisory headers injected per plugin kind. Hooks and operators moved to
// provider packages in 2.x; sensors follow the operator guidance.
var pluginAdvisories = map[string]string{
	"hook":     "hooks should ship as provider packages in Airflow 2; importing them via plugins is deprecated",
	"operator": "operators no longer need plugin registration in Airflow 2; import them directly from their module",
	"sensor":   "sensors no longer need plugin registration in Airflow 2; import them directly from their module",
}

// PluginMigrator migrates plugin source files. It runs the same transformer
// chain as the DAG migrator and additionally classifies each file as
// hook/operator/sensor/other by textual inspection of class definitions,
// injecting a kind-specific advisory header. Classification never fails:
// unrecognized files default to "other" with no special handling.
type PluginMigrator struct {
	table *pattern.Table
	dags  *DAGMigrator
}

// NewPluginMigrator builds a PluginMigrator over the given pattern table.
func NewPluginMigrator(table *pattern.Table, opts ...DAGOption) *PluginMigrator {
	return &PluginMigrator{
		table: table,
		dags:  NewDAGMigrator(table, opts...),
	}
}

// Stats returns the counters accumulated by this instance.
func (m *PluginMigrator) Stats() Stats {
	return m.dags.Stats()
}

// MigrateFile migrates a single plugin file.
func (m *PluginMigrator) MigrateFile(sourcePath, targetPath string) Result {
	r := m.dags.migrateFile(sourcePath, targetPath, m.injectAdvisory)
	m.dags.stats.record(r)
	return r
}

// MigrateDirectory migrates all plugin files under sourceDir.
func (m *PluginMigrator) MigrateDirectory(sourceDir, targetDir string) BatchResult {
	return m.dags.migrateDirectory(sourceDir, targetDir, m.injectAdvisory)
}

// Classify inspects transformed source text and returns the plugin kind:
// "hook", "operator", "sensor" or "other".
func (m *PluginMigrator) Classify(src string) string {
	for _, match := range reClassDef.FindAllStringSubmatch(src, -1) {
		base := match[1]
		if dot := strings.LastIndex(base, "."); dot >= 0 {
			base = base[dot+1:]
		}
		if kind := m.table.ClassifyBase(base); kind != "" {
			return kind
		}
	}
	return "other"
}

// injectAdvisory prepends the kind-specific advisory comment to the rendered
// source. Re-running on already-annotated output does not duplicate the
// header.
func (m *PluginMigrator) injectAdvisory(_ *pysrc.Unit, rendered string) string {
	kind := m.Classify(rendered)
	advisory, ok := pluginAdvisories[kind]
	if !ok {
		return rendered
	}

	header := "# " + rewrite.AdvisoryMarker + " " + advisory
	if strings.Contains(rendered, header) {
		return rendered
	}
	return header + "\n" + rendered
}
