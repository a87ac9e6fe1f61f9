// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dataops-works/airlift/internal/pattern"
	"github.com/dataops-works/airlift/internal/pysrc"
	"github.com/dataops-works/airlift/internal/rewrite"
)

const (
	sourceFileSuffix = ".py"
	packageInitFile  = "__init__.py"

	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
)

// DAGMigrator migrates workflow definition files. Each file runs the fixed
// stage chain: read, import rewrite, operator rewrite, pattern update,
// optional taskflow conversion, serialize, write (or dry-run).
//
// A migrator instance owns its Stats; it is not safe for concurrent use.
type DAGMigrator struct {
	table        *pattern.Table
	logger       *zerolog.Logger
	dryRun       bool
	skipTaskflow bool
	stats        Stats
}

// DAGOption configures a DAGMigrator.
type DAGOption func(*DAGMigrator)

// WithDAGLogger sets the logger.
func WithDAGLogger(logger *zerolog.Logger) DAGOption {
	return func(m *DAGMigrator) { m.logger = logger }
}

// WithDryRun makes the migrator report results without writing any output.
func WithDryRun(dryRun bool) DAGOption {
	return func(m *DAGMigrator) { m.dryRun = dryRun }
}

// WithSkipTaskflow disables the decorator conversion stage.
func WithSkipTaskflow(skip bool) DAGOption {
	return func(m *DAGMigrator) { m.skipTaskflow = skip }
}

// NewDAGMigrator builds a DAGMigrator over the given pattern table.
func NewDAGMigrator(table *pattern.Table, opts ...DAGOption) *DAGMigrator {
	nop := zerolog.Nop()
	m := &DAGMigrator{table: table, logger: &nop}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the counters accumulated by this instance.
func (m *DAGMigrator) Stats() Stats {
	return m.stats
}

// MigrateFile migrates a single file. The source must exist and be readable;
// the target's parent directory is created if absent. Transform failures are
// captured in the result, never raised: the source stays untouched and a
// structurally damaged file is copied to the target verbatim.
func (m *DAGMigrator) MigrateFile(sourcePath, targetPath string) Result {
	r := m.migrateFile(sourcePath, targetPath, nil)
	m.stats.record(r)
	return r
}

func (m *DAGMigrator) migrateFile(sourcePath, targetPath string, extra func(*pysrc.Unit, string) string) Result {
	result := Result{SourcePath: sourcePath, TargetPath: targetPath, Status: StatusSuccess}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		result.Status = StatusError
		result.Issues = append(result.Issues, fmt.Sprintf("read failed: %v", err))
		return result
	}

	out, warnings, err := m.transform(sourcePath, string(src), extra)
	if err != nil {
		result.Status = StatusError
		result.Issues = append(result.Issues, err.Error())
		m.logger.Error().Err(err).Str("source", sourcePath).Msg("Transform failed, original content preserved")
		if out == "" {
			return result
		}
		// Damaged but readable input falls through so the target still
		// receives the original text verbatim.
	}
	result.Warnings = append(result.Warnings, warnings...)

	if m.dryRun {
		m.logger.Info().Str("source", sourcePath).Str("target", targetPath).Msg("Dry run, skipping write")
		return result
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), defaultDirPerm); err != nil {
		result.Status = StatusError
		result.Issues = append(result.Issues, fmt.Sprintf("create target directory failed: %v", err))
		return result
	}
	if err := os.WriteFile(targetPath, []byte(out), defaultFilePerm); err != nil {
		result.Status = StatusError
		result.Issues = append(result.Issues, fmt.Sprintf("write failed: %v", err))
		return result
	}

	if result.Status == StatusSuccess {
		m.logger.Debug().Str("source", sourcePath).Str("target", targetPath).Msg("Migrated file")
	}
	return result
}

// transform runs the stage chain over one source unit. Any panic from the
// parser or a transformer is recovered into an error so that one malformed
// file never aborts a batch.
func (m *DAGMigrator) transform(path, src string, extra func(*pysrc.Unit, string) string) (out string, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = TransformError.New("transform panic on %s: %v", path, r)
		}
	}()

	unit := pysrc.Parse(path, src)
	if unit.Damage != "" {
		// Structurally damaged input is never transformed; the caller writes
		// the original text through verbatim and records the error.
		return src, nil, TransformError.New("malformed source %s: %s", path, unit.Damage)
	}

	taskflow := rewrite.NewTaskflowConverter(m.table)
	if !m.skipTaskflow {
		// Scan before the operator rewrite strips the context-injection flag.
		taskflow.Scan(unit)
	}

	unit.Apply(&importTransformer{rewriter: rewrite.NewImportRewriter(m.table)})

	operators := rewrite.NewOperatorRewriter(m.table)
	unit.Apply(operators)
	warnings = append(warnings, operators.Warnings()...)

	unit.Apply(rewrite.NewPatternUpdateRewriter())

	if !m.skipTaskflow {
		taskflow.Convert(unit)
		warnings = append(warnings, taskflow.Warnings()...)
	}

	out = unit.Render()
	if extra != nil {
		out = extra(unit, out)
	}
	for _, comment := range taskflow.TrailingComments() {
		out += comment + "\n"
	}

	return out, warnings, nil
}

// MigrateDirectory recursively migrates every source file under sourceDir,
// preserving the relative layout under targetDir. Package initializer files
// are skipped. The batch never fails fast: individual file errors degrade
// the overall status to warning while the remaining files are attempted.
func (m *DAGMigrator) MigrateDirectory(sourceDir, targetDir string) BatchResult {
	return m.migrateDirectory(sourceDir, targetDir, nil)
}

func (m *DAGMigrator) migrateDirectory(sourceDir, targetDir string, extra func(*pysrc.Unit, string) string) BatchResult {
	batch := BatchResult{Status: StatusSuccess}

	walkErr := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), sourceFileSuffix) || d.Name() == packageInitFile {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		r := m.migrateFile(path, filepath.Join(targetDir, rel), extra)
		m.stats.record(r)
		batch.add(r)
		return nil
	})
	if walkErr != nil {
		batch.Status = StatusError
		batch.Results = append(batch.Results, Result{
			SourcePath: sourceDir,
			Status:     StatusError,
			Issues:     []string{fmt.Sprintf("directory walk failed: %v", walkErr)},
		})
	}

	m.logger.Info().
		Str("source_dir", sourceDir).
		Str("target_dir", targetDir).
		Int("processed", batch.Stats.Processed).
		Int("successful", batch.Stats.Successful).
		Int("issues", batch.Stats.Issues).
		Msg("Directory migration finished")

	return batch
}

// importTransformer adapts the line-based import rewriter to the node-wise
// transformer interface. Multi-line imports are flattened before matching;
// when a rewrite applies the statement is emitted on a single line.
type importTransformer struct {
	rewriter *rewrite.ImportRewriter
}

func (t *importTransformer) Transform(n pysrc.Node) []pysrc.Node {
	if n.Kind != pysrc.KindImportFrom {
		return []pysrc.Node{n}
	}

	line := n.Raw
	if strings.ContainsAny(line, "\n\\()") {
		line = n.Indent + strings.Join(strings.Fields(strings.NewReplacer("\\\n", " ", "\n", " ", "(", " ", ")", " ").Replace(line)), " ")
	}

	rewritten := t.rewriter.RewriteLine(line)
	if rewritten == line && line == n.Raw {
		return []pysrc.Node{n}
	}
	if rewritten == line {
		// Flattening changed the text but no mapping applied: keep original.
		return []pysrc.Node{n}
	}

	n.Raw = rewritten
	return []pysrc.Node{n}
}
