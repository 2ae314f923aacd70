package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReportCmd_Stdout(t *testing.T) {
	snapshot := collectSnapshot(t, simpleTrace)

	stdout, stderr, err := executeCommand(t, newReportCmd(), snapshot)
	if err != nil {
		t.Fatalf("report failed: %v\n%s", err, stderr)
	}

	if strings.Count(stdout, "\n") != 1 {
		t.Errorf("expected a single JSON line, got:\n%s", stdout)
	}
	expectPatterns(t, stdout,
		`"tempi":\{"glp_init":1,"glp_simplex":1.5\}`,
		`"executions":\{"glp_init":2,"glp_simplex":2\}`,
		`"avg":\{"glp_init":0.5,"glp_simplex":0.75\}`,
		`"tempi2":\{"glp_init":\[0.25,0.75\],"glp_simplex":\[0.5,1\]\}`,
		`"matlab_msg":\[1\]`,
		`"it_cnts":\[42,17\]`,
	)
}

func TestReportCmd_Append(t *testing.T) {
	snapshot := collectSnapshot(t, simpleTrace)
	output := filepath.Join(t.TempDir(), "reports.json")

	for i := 0; i < 2; i++ {
		stdout, _, err := executeCommand(t, newReportCmd(), snapshot, "--output", output)
		if err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout when appending, got:\n%s", stdout)
		}
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read %s: %v", output, err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 report lines, got %d", len(lines))
	}
	if lines[0] != lines[1] {
		t.Errorf("expected identical reports from the same snapshot")
	}
}

func TestReportCmd_MissingFile(t *testing.T) {
	if _, _, err := executeCommand(t, newReportCmd(), "../../testdata/missing.soltrace"); err == nil {
		t.Errorf("expected an error for a missing snapshot")
	}
}
