// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dataops-works/airlift/internal/pattern"
)

// Connection is one connection record as stored in the connections JSON
// file, keyed externally by conn_id. Extra is loosely typed on input (JSON
// string or embedded object) and always a JSON string after transformation.
type Connection struct {
	ConnType string `json:"conn_type"`
	Host     string `json:"host,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
	Port     any    `json:"port,omitempty"`
	Extra    any    `json:"extra,omitempty"`
}

// ConnectionMigrator transforms connection records to the 2.x vocabulary.
type ConnectionMigrator struct {
	table  *pattern.Table
	logger *zerolog.Logger
	dryRun bool
	stats  Stats
}

// ConnOption configures a ConnectionMigrator.
type ConnOption func(*ConnectionMigrator)

// WithConnLogger sets the logger.
func WithConnLogger(logger *zerolog.Logger) ConnOption {
	return func(m *ConnectionMigrator) { m.logger = logger }
}

// WithConnDryRun makes the migrator report results without writing output.
func WithConnDryRun(dryRun bool) ConnOption {
	return func(m *ConnectionMigrator) { m.dryRun = dryRun }
}

// NewConnectionMigrator builds a ConnectionMigrator over the given table.
func NewConnectionMigrator(table *pattern.Table, opts ...ConnOption) *ConnectionMigrator {
	nop := zerolog.Nop()
	m := &ConnectionMigrator{table: table, logger: &nop}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stats returns the counters accumulated by this instance.
func (m *ConnectionMigrator) Stats() Stats {
	return m.stats
}

// TransformConnection returns a transformed copy of the record. It is total:
// it never fails, for any combination of string or structured extra.
//
//   - conn_type is renamed through the type table when mapped.
//   - extra is normalized to a JSON string. A string extra is parsed first;
//     malformed JSON is kept verbatim with a warning.
//   - For the Google Cloud connection type, a "project" key without a
//     sibling "project_id" is copied across as a forward-compatibility shim.
func (m *ConnectionMigrator) TransformConnection(connID string, rec Connection) (Connection, []string) {
	out := rec
	var warnings []string

	if newType, ok := m.table.LookupConnType(out.ConnType); ok {
		out.ConnType = newType
	}

	if out.Extra == nil {
		return out, warnings
	}

	var structured map[string]any
	switch extra := out.Extra.(type) {
	case string:
		if err := json.Unmarshal([]byte(extra), &structured); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"connection %s: extra is not valid JSON, preserved verbatim: %v", connID, err))
			m.logger.Warn().Str("conn_id", connID).Err(err).Msg("Malformed connection extra")
			return out, warnings
		}
	case map[string]any:
		structured = extra
	default:
		// Scalars and arrays round-trip through a JSON string unchanged.
		b, err := json.Marshal(extra)
		if err == nil {
			out.Extra = string(b)
		}
		return out, warnings
	}

	if out.ConnType == pattern.GoogleCloudConnType {
		if project, ok := structured["project"]; ok {
			if _, ok := structured["project_id"]; !ok {
				structured["project_id"] = project
			}
		}
	}

	b, err := json.Marshal(structured)
	if err != nil {
		// Marshal of a decoded map cannot realistically fail; guard anyway.
		warnings = append(warnings, fmt.Sprintf("connection %s: extra re-serialization failed: %v", connID, err))
		return out, warnings
	}
	out.Extra = string(b)

	return out, warnings
}

// MigrateConnections reads a JSON object of {conn_id: record}, transforms
// each record independently and writes the transformed object. A record that
// cannot be decoded keeps its original form and is listed under issues; other
// records are unaffected.
func (m *ConnectionMigrator) MigrateConnections(sourcePath, targetPath string) BatchResult {
	batch := BatchResult{Status: StatusSuccess}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		batch.add(Result{SourcePath: sourcePath, Status: StatusError,
			Issues: []string{fmt.Sprintf("read failed: %v", err)}})
		batch.Status = StatusError
		return batch
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		batch.add(Result{SourcePath: sourcePath, Status: StatusError,
			Issues: []string{fmt.Sprintf("connections file is not a JSON object: %v", err)}})
		batch.Status = StatusError
		return batch
	}

	transformed := make(map[string]json.RawMessage, len(raw))
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := Result{SourcePath: sourcePath, TargetPath: targetPath, Status: StatusSuccess}

		var rec Connection
		if err := json.Unmarshal(raw[id], &rec); err != nil {
			r.Status = StatusError
			r.Issues = append(r.Issues, fmt.Sprintf("connection %s: decode failed: %v", id, err))
			transformed[id] = raw[id] // keep original record
			batch.add(r)
			m.stats.record(r)
			continue
		}

		out, warnings := m.TransformConnection(id, rec)
		r.Warnings = append(r.Warnings, warnings...)

		b, err := json.Marshal(out)
		if err != nil {
			r.Status = StatusError
			r.Issues = append(r.Issues, fmt.Sprintf("connection %s: encode failed: %v", id, err))
			transformed[id] = raw[id]
		} else {
			transformed[id] = b
		}

		batch.add(r)
		m.stats.record(r)
	}

	if m.dryRun {
		m.logger.Info().Str("source", sourcePath).Msg("Dry run, skipping connections write")
		return batch
	}

	outData, err := json.MarshalIndent(transformed, "", "  ")
	if err == nil {
		err = os.MkdirAll(filepath.Dir(targetPath), defaultDirPerm)
	}
	if err == nil {
		err = os.WriteFile(targetPath, outData, defaultFilePerm)
	}
	if err != nil {
		batch.add(Result{SourcePath: sourcePath, TargetPath: targetPath, Status: StatusError,
			Issues: []string{fmt.Sprintf("write failed: %v", err)}})
		batch.Status = StatusError
	}

	m.logger.Info().
		Str("source", sourcePath).
		Str("target", targetPath).
		Int("processed", batch.Stats.Processed).
		Int("issues", batch.Stats.Issues).
		Msg("Connections migration finished")

	return batch
}
