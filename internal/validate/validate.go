// SPDX-License-Identifier: Apache-2.0

// Package validate inspects migrated artifacts for patterns the migration
// should have removed. Findings are advisory and never block a run; the
// orchestrator surfaces them in its final report for human review.
package validate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"

	"github.com/dataops-works/airlift/internal/pattern"
)

var (
	ErrNamespace = errorx.NewNamespace("validate")

	// ScanError indicates the validator itself could not read an artifact.
	ScanError = ErrNamespace.NewType("scan_error")
)

// Status is the overall outcome of a validation pass.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// FileIssues lists the findings for one file.
type FileIssues struct {
	File   string   `json:"file" yaml:"file"`
	Issues []string `json:"issues" yaml:"issues"`
}

// Stats counts findings by category across a validation pass.
type Stats struct {
	DagsChecked      int `json:"dags_checked" yaml:"dags_checked"`
	DagsWithIssues   int `json:"dags_with_issues" yaml:"dags_with_issues"`
	TotalIssues      int `json:"total_issues" yaml:"total_issues"`
	ImportIssues     int `json:"import_issues" yaml:"import_issues"`
	OperatorIssues   int `json:"operator_issues" yaml:"operator_issues"`
	ParameterIssues  int `json:"parameter_issues" yaml:"parameter_issues"`
	ConnectionIssues int `json:"connection_issues" yaml:"connection_issues"`
}

// Report is the machine-readable result of a validation pass.
type Report struct {
	Status Status       `json:"status" yaml:"status"`
	Issues []FileIssues `json:"issues" yaml:"issues"`
	Stats  Stats        `json:"stats" yaml:"stats"`
}

// Validator scans migrated source trees and connection files.
type Validator struct {
	table  *pattern.Table
	logger *zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New returns a Validator over the given pattern table.
func New(table *pattern.Table, opts ...Option) *Validator {
	nop := zerolog.Nop()
	v := &Validator{table: table, logger: &nop}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateTree walks a migrated source tree and records residual deprecated
// imports, operator classes and parameters per file.
func (v *Validator) ValidateTree(root string) (*Report, error) {
	report := &Report{Status: StatusSuccess, Issues: []FileIssues{}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		report.Stats.DagsChecked++
		issues := v.checkSource(string(src), &report.Stats)
		if len(issues) > 0 {
			report.Stats.DagsWithIssues++
			report.Stats.TotalIssues += len(issues)
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			report.Issues = append(report.Issues, FileIssues{File: rel, Issues: issues})
		}
		return nil
	})
	if err != nil {
		report.Status = StatusError
		return report, ScanError.Wrap(err, "failed to validate tree %s", root)
	}

	if report.Stats.TotalIssues > 0 {
		report.Status = StatusWarning
	}

	v.logger.Info().
		Int("checked", report.Stats.DagsChecked).
		Int("withIssues", report.Stats.DagsWithIssues).
		Str("status", string(report.Status)).
		Msg("Source tree validation finished")
	return report, nil
}

// ValidateConnections checks a migrated connections file for deprecated
// connection types and merges the findings into the report.
func (v *Validator) ValidateConnections(path string, report *Report) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		report.Status = StatusError
		return ScanError.Wrap(err, "failed to read connections file %s", path)
	}

	var records map[string]struct {
		ConnType string `json:"conn_type"`
	}
	if err := json.Unmarshal(data, &records); err != nil {
		report.Status = StatusError
		return ScanError.Wrap(err, "failed to decode connections file %s", path)
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var issues []string
	for _, id := range ids {
		if mapped, ok := v.table.LookupConnType(records[id].ConnType); ok {
			issues = append(issues,
				fmt.Sprintf("connection %q uses deprecated type %q, expected %q", id, records[id].ConnType, mapped))
		}
	}
	if len(issues) > 0 {
		report.Stats.ConnectionIssues += len(issues)
		report.Stats.TotalIssues += len(issues)
		report.Issues = append(report.Issues, FileIssues{File: filepath.Base(path), Issues: issues})
		if report.Status == StatusSuccess {
			report.Status = StatusWarning
		}
	}
	return nil
}

// checkSource scans one file's text line by line. Line numbers are reported
// one-based to match editor conventions.
func (v *Validator) checkSource(src string, stats *Stats) []string {
	lines := strings.Split(src, "\n")
	migrated := migratedImports(lines, v.table)

	var issues []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}

		if module, ok := deprecatedImport(trimmed, v.table); ok {
			stats.ImportIssues++
			issues = append(issues, fmt.Sprintf("line %d: deprecated import path %q", i+1, module))
			continue
		}

		for _, op := range v.table.MappedOperators() {
			// A class imported from its current module is fine; only calls
			// without such an import point at a leftover 1.x construct.
			if migrated[op] {
				continue
			}
			if strings.Contains(trimmed, op+"(") {
				stats.OperatorIssues++
				issues = append(issues, fmt.Sprintf("line %d: operator class %q without a current-style import", i+1, op))
				break
			}
		}

		for _, param := range v.table.DeprecatedParams() {
			if strings.Contains(trimmed, param+"=") {
				stats.ParameterIssues++
				issues = append(issues, fmt.Sprintf("line %d: deprecated parameter %q", i+1, param))
			}
		}
	}
	return issues
}

// migratedImports collects symbols imported from airflow modules the pattern
// table does not map away from, meaning the import is already current.
func migratedImports(lines []string, table *pattern.Table) map[string]bool {
	out := make(map[string]bool)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		const prefix = "from airflow."
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		rest := strings.TrimPrefix(trimmed, prefix)
		idx := strings.Index(rest, " import ")
		if idx < 0 {
			continue
		}
		if _, deprecated := table.LookupImport(strings.TrimSpace(rest[:idx])); deprecated {
			continue
		}
		for _, sym := range strings.Split(rest[idx+len(" import "):], ",") {
			sym = strings.TrimSpace(sym)
			if sym != "" {
				out[sym] = true
			}
		}
	}
	return out
}

// deprecatedImport reports whether the line imports from a module the
// pattern table maps away from.
func deprecatedImport(line string, table *pattern.Table) (string, bool) {
	const prefix = "from airflow."
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(line, prefix)
	idx := strings.Index(rest, " import ")
	if idx < 0 {
		return "", false
	}
	module := strings.TrimSpace(rest[:idx])
	if _, ok := table.LookupImport(module); ok {
		return "airflow." + module, true
	}
	return "", false
}
