// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ScriptRequest describes the offline script to render. Current is the
// revision the database is assumed to be at ("" for uninitialized); Target
// follows the same conventions as the online operations.
type ScriptRequest struct {
	Current   string
	Target    string
	Downgrade bool
}

// RenderScript writes a SQL script that performs the requested migration,
// including tracking-table updates, so an operator can review and apply it
// out of band. The script mirrors exactly what the online mode would execute.
func (e *Environment) RenderScript(w io.Writer, req ScriptRequest) error {
	var path []Revision
	var err error
	if req.Downgrade {
		path, err = e.chain.DowngradePath(req.Current, req.Target)
	} else {
		path, err = e.chain.UpgradePath(req.Current, req.Target)
	}
	if err != nil {
		return err
	}

	var b strings.Builder
	direction := "upgrade"
	if req.Downgrade {
		direction = "downgrade"
	}
	fmt.Fprintf(&b, "-- airlift schema %s script\n", direction)
	fmt.Fprintf(&b, "-- generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "-- from: %s\n", orBase(req.Current))
	if len(path) == 0 {
		fmt.Fprintf(&b, "-- to: %s\n", orBase(req.Current))
		b.WriteString("-- nothing to do\n")
		_, err = io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "-- to: %s\n\n", orBase(finalRevision(path, req.Downgrade)))

	b.WriteString("BEGIN;\n\n")
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (version_num VARCHAR(32) NOT NULL);\n\n", versionTable)

	for _, rev := range path {
		fmt.Fprintf(&b, "-- revision: %s (%s)\n", rev.ID, rev.Description)
		statements := rev.UpgradeStatements
		pointer := rev.ID
		if req.Downgrade {
			statements = rev.DowngradeStatements
			pointer = rev.DownRevision
		}
		for _, stmt := range statements {
			b.WriteString(strings.TrimRight(stmt, "; \n"))
			b.WriteString(";\n")
		}
		b.WriteString(trackingStatement(pointer))
		b.WriteString("\n")
	}

	b.WriteString("COMMIT;\n")
	_, err = io.WriteString(w, b.String())
	return err
}

func trackingStatement(revisionID string) string {
	if revisionID == "" {
		return fmt.Sprintf("DELETE FROM %s;\n", versionTable)
	}
	return fmt.Sprintf(
		"UPDATE %[1]s SET version_num = '%[2]s';\n"+
			"INSERT INTO %[1]s (version_num) SELECT '%[2]s' WHERE NOT EXISTS (SELECT 1 FROM %[1]s);\n",
		versionTable, revisionID)
}

func finalRevision(path []Revision, downgrade bool) string {
	last := path[len(path)-1]
	if downgrade {
		return last.DownRevision
	}
	return last.ID
}

func orBase(id string) string {
	if id == "" {
		return "base"
	}
	return id
}
