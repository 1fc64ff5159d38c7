package exit

import (
	"bytes"
	"os"
	"testing"
)

func TestSuccess(t *testing.T) {
	result := Success("all checks passed")

	if result.ExitCode != 0 {
		t.Errorf("Success() ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Message != "all checks passed" {
		t.Errorf("Success() Message = %q, want %q", result.Message, "all checks passed")
	}
	if result.Output != os.Stdout {
		t.Error("Success() expected output to stdout")
	}
}

func TestError(t *testing.T) {
	result := Error("check failed")

	if result.ExitCode != 1 {
		t.Errorf("Error() ExitCode = %d, want 1", result.ExitCode)
	}
	if result.Output != os.Stderr {
		t.Error("Error() expected output to stderr")
	}
}

func TestErrorf(t *testing.T) {
	result := Errorf("check %d failed: %s", 3, "count mismatch")

	want := "check 3 failed: count mismatch"
	if result.Message != want {
		t.Errorf("Errorf() Message = %q, want %q", result.Message, want)
	}
	if result.ExitCode != 1 {
		t.Errorf("Errorf() ExitCode = %d, want 1", result.ExitCode)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	result := &Result{
		Output:   &buf,
		ExitCode: 0,
		Message:  "summary line",
	}

	result.Print()

	if buf.String() != "summary line" {
		t.Errorf("Print() output = %q, want %q", buf.String(), "summary line")
	}
}

func TestPrintWithoutOutput(t *testing.T) {
	result := &Result{Message: "dropped"}
	result.Print()
}
