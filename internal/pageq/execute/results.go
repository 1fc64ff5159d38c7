package execute

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileResult records the outcome of one check file.
type FileResult struct {
	Filename   string
	CheckCount int
	Duration   time.Duration
	Error      error
}

// Summary aggregates results from one run over a set of check files.
type Summary struct {
	RunID          string
	FileResults    []FileResult
	ExecutedFiles  int
	ExecutedChecks int
	SucceededFiles int
	FailedFiles    int
	TotalDuration  time.Duration
}

// NewSummary creates a summary with a fresh run identifier.
func NewSummary(expectedFiles int) *Summary {
	return &Summary{
		RunID:       uuid.New().String(),
		FileResults: make([]FileResult, 0, expectedFiles),
	}
}

func (s *Summary) Add(result FileResult) {
	s.FileResults = append(s.FileResults, result)
	s.ExecutedFiles++
	s.ExecutedChecks += result.CheckCount

	if result.Error != nil {
		s.FailedFiles++
	} else {
		s.SucceededFiles++
	}
}

func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

func (s *Summary) SuccessPercentage() float64 {
	if s.ExecutedFiles == 0 {
		return 0
	}
	return (float64(s.SucceededFiles) / float64(s.ExecutedFiles)) * 100
}

func (s *Summary) FailurePercentage() float64 {
	if s.ExecutedFiles == 0 {
		return 0
	}
	return (float64(s.FailedFiles) / float64(s.ExecutedFiles)) * 100
}

// FormatText writes a human-readable summary.
func (s *Summary) FormatText(w io.Writer) error {
	for _, fileResult := range s.FileResults {
		status := "Success"
		if fileResult.Error != nil {
			status = fmt.Sprintf("Failed: %v", fileResult.Error)
		}
		_, err := fmt.Fprintf(w, "%s: %s (%d check(s) in %d ms)\n",
			fileResult.Filename, status, fileResult.CheckCount, fileResult.Duration.Milliseconds())
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "--------------------------------------------------------------------------------"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Run:             %s\n", s.RunID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Executed files:  %d\n", s.ExecutedFiles); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Executed checks: %d\n", s.ExecutedChecks); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Succeeded files: %d (%.1f%%)\n", s.SucceededFiles, s.SuccessPercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Failed files:    %d (%.1f%%)\n", s.FailedFiles, s.FailurePercentage()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duration:        %d ms\n", s.TotalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}

// FormatAggregated writes results from multiple iterations. A single
// iteration prints as a plain summary.
func FormatAggregated(w io.Writer, allResults []*Summary) error {
	if len(allResults) == 0 {
		return nil
	}

	if len(allResults) == 1 {
		return allResults[0].FormatText(w)
	}

	var (
		totalFiles           int
		totalChecks          int
		totalFailed          int
		totalDuration        time.Duration
		successfulIterations int
	)

	for i, summary := range allResults {
		status := "OK"
		if summary.FailedFiles > 0 {
			status = fmt.Sprintf("%d file(s) failed", summary.FailedFiles)
		} else {
			successfulIterations++
		}
		_, err := fmt.Fprintf(w, "Iteration %d: %s (%d check(s) in %d ms)\n",
			i+1, status, summary.ExecutedChecks, summary.TotalDuration.Milliseconds())
		if err != nil {
			return err
		}

		totalFiles += summary.ExecutedFiles
		totalChecks += summary.ExecutedChecks
		totalFailed += summary.FailedFiles
		totalDuration += summary.TotalDuration
	}

	if _, err := fmt.Fprintln(w, "--------------------------------------------------------------------------------"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Iterations:      %d (%d successful)\n", len(allResults), successfulIterations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Executed files:  %d\n", totalFiles); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Executed checks: %d\n", totalChecks); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Failed files:    %d\n", totalFailed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Duration:        %d ms\n", totalDuration.Milliseconds()); err != nil {
		return err
	}

	return nil
}
