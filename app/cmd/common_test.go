package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"soltrace/internal"
	"testing"

	"github.com/spf13/cobra"
)

func init() {
	internal.InitStats()
}

const (
	simpleTrace    = "../../testdata/trace_simple.log"
	unpairedTrace  = "../../testdata/trace_unpaired.log"
	malformedTrace = "../../testdata/trace_malformed.log"
	nestedTrace    = "../../testdata/trace_nested.log"
)

// executeCommand runs cmd with args and returns what it wrote to stdout and stderr
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func expectPatterns(t *testing.T, output string, patterns ...string) {
	t.Helper()

	for _, p := range patterns {
		if !regexp.MustCompile(p).MatchString(output) {
			t.Errorf("expected pattern %q not found in output:\n%s", p, output)
		}
	}
}

// collectSnapshot collects traces into a snapshot file in a temporary directory
func collectSnapshot(t *testing.T, traces ...string) string {
	t.Helper()

	snapshot := filepath.Join(t.TempDir(), "trace.soltrace")
	args := append(append([]string{}, traces...), "--output", snapshot, "--quiet")
	if _, stderr, err := executeCommand(t, newCollectCmd(), args...); err != nil {
		t.Fatalf("collect failed: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("collect did not write %s: %v", snapshot, err)
	}
	return snapshot
}

// writeReports emits the json mode of a trace n times into a report file
func writeReports(t *testing.T, trace string, n int) string {
	t.Helper()

	reports := filepath.Join(t.TempDir(), "reports.json")
	for i := 0; i < n; i++ {
		if _, stderr, err := executeCommand(t, newRootCmd(), trace, "json", reports); err != nil {
			t.Fatalf("json mode failed: %v\n%s", err, stderr)
		}
	}
	return reports
}
