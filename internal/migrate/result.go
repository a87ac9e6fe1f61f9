// SPDX-License-Identifier: Apache-2.0

// Package migrate orchestrates per-file and per-connection migrations: it
// runs the rewrite transformers over DAG and plugin sources and normalizes
// connection records, aggregating per-item results and counters.
package migrate

// Status is the outcome of a migration operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Result records the outcome of migrating a single file or connection.
type Result struct {
	SourcePath string   `json:"source_path" yaml:"sourcePath"`
	TargetPath string   `json:"target_path" yaml:"targetPath"`
	Status     Status   `json:"status" yaml:"status"`
	Issues     []string `json:"issues,omitempty" yaml:"issues,omitempty"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Stats counts migration outcomes. Counters only ever increase.
type Stats struct {
	Processed  int `json:"processed" yaml:"processed"`
	Successful int `json:"successful" yaml:"successful"`
	Issues     int `json:"issues" yaml:"issues"`
}

func (s *Stats) record(r Result) {
	s.Processed++
	if r.Status == StatusSuccess {
		s.Successful++
	}
	s.Issues += len(r.Issues)
}

// BatchResult aggregates the results of a directory or connection-file
// migration. Status is "warning" when any individual item failed: the batch
// is best-effort and never aborts on a single bad input.
type BatchResult struct {
	Status  Status   `json:"status" yaml:"status"`
	Results []Result `json:"results" yaml:"results"`
	Stats   Stats    `json:"stats" yaml:"stats"`
}

func (b *BatchResult) add(r Result) {
	b.Results = append(b.Results, r)
	b.Stats.record(r)
	if r.Status == StatusError && b.Status == StatusSuccess {
		b.Status = StatusWarning
	}
}
