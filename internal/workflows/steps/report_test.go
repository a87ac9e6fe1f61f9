package steps

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/automa-saga/automa"
)

func TestPrintWorkflowReport(t *testing.T) {
	report := &automa.Report{
		Status: automa.StatusSuccess,
	}
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	PrintWorkflowReport(report, "")

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	if err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	output := buf.String()
	if want := "Workflow Execution Report:"; !bytes.Contains([]byte(output), []byte(want)) {
		t.Errorf("expected output to contain %q, got %q", want, output)
	}
}

func TestPrintWorkflowReportWritesFile(t *testing.T) {
	report := &automa.Report{
		Status: automa.StatusSuccess,
	}
	reportPath := filepath.Join(t.TempDir(), "reports", "migration_report.yaml")

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	PrintWorkflowReport(report, reportPath)

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected report file to be written: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected report file to be non-empty")
	}
}
