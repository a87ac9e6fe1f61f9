// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/automa-saga/automa"
	"gopkg.in/yaml.v3"
)

// PrintWorkflowReport prints the workflow execution report in YAML format
// and, when reportPath is non-empty, also writes it to that file.
var PrintWorkflowReport = func(report *automa.Report, reportPath string) {
	b, err := yaml.Marshal(report)
	if err != nil {
		fmt.Printf("Failed to marshal report: %v\n", err)
		return
	}

	fmt.Printf("Workflow Execution Report:\n%s\n", b)

	if reportPath != "" {
		if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
			fmt.Printf("Failed to create report directory: %v\n", err)
			return
		}
		if err := os.WriteFile(reportPath, b, 0o644); err != nil {
			fmt.Printf("Failed to write report file: %v\n", err)
		}
	}
}
