// Package execute runs check files: it loads documents, composes the
// declared page model against them and evaluates the assertions.
package execute

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pageq/pageq/internal/pageq/config"
	"github.com/pageq/pageq/internal/pageq/dom"
	"github.com/pageq/pageq/internal/pageq/exit"
	"github.com/pageq/pageq/internal/pageq/fetch"
	"github.com/pageq/pageq/internal/pageq/model"
	"github.com/pageq/pageq/internal/pageq/page"
	"github.com/pageq/pageq/internal/pageq/predicate"
)

// ParsedFile is a check file parsed once and reused across iterations.
type ParsedFile struct {
	Filename string
	BaseDir  string
	Checks   []model.Check
}

type Runner struct {
	config    *config.Config
	fetcher   *fetch.Fetcher
	evaluator *predicate.Evaluator
	parsed    []ParsedFile
	output    io.Writer
	errOutput io.Writer
}

func New(cfg *config.Config) (*Runner, *exit.Result) {
	client, err := cfg.HTTPClient()
	if err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	return &Runner{
		config:    cfg,
		fetcher:   fetch.New(client, cfg.RateLimit, cfg.BaseDir),
		evaluator: predicate.NewEvaluator(),
		output:    os.Stdout,
		errOutput: os.Stderr,
	}, nil
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
}

func (r *Runner) resultWriter() io.Writer {
	if r.output == nil {
		return io.Discard
	}
	return r.output
}

func (r *Runner) errorWriter() io.Writer {
	if r.errOutput == nil {
		return io.Discard
	}
	return r.errOutput
}

func (r *Runner) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errorWriter(), format, args...)
}

func (r *Runner) debugf(format string, args ...any) {
	if !r.config.Debug {
		return
	}
	r.logf(format, args...)
}

func (r *Runner) Run(ctx context.Context) int {
	if r.config.Repeat < 0 {
		return r.runInfiniteLoop(ctx)
	}
	return r.runFiniteLoop(ctx)
}

func (r *Runner) runInfiniteLoop(ctx context.Context) int {
	return r.runLoop(
		ctx,
		0,
		func(completed int) string {
			return fmt.Sprintf("Interrupted after %d iterations", completed)
		},
		func(iteration int) string {
			if r.config.Debug {
				return fmt.Sprintf("--- Iteration %d ---", iteration)
			}
			return ""
		},
		func(result *Summary) error {
			return result.FormatText(r.resultWriter())
		},
		nil,
	)
}

func (r *Runner) runFiniteLoop(ctx context.Context) int {
	totalIterations := r.config.Repeat + 1
	allResults := make([]*Summary, 0, totalIterations)

	return r.runLoop(
		ctx,
		totalIterations,
		func(completed int) string {
			return fmt.Sprintf("Interrupted after %d of %d iterations", completed, totalIterations)
		},
		func(iteration int) string {
			if r.config.Debug && totalIterations > 1 {
				return fmt.Sprintf("--- Iteration %d of %d ---", iteration, totalIterations)
			}
			return ""
		},
		func(result *Summary) error {
			allResults = append(allResults, result)
			return nil
		},
		func() error {
			return FormatAggregated(r.resultWriter(), allResults)
		},
	)
}

func (r *Runner) runLoop(
	ctx context.Context,
	totalIterations int,
	interruptMessage func(completed int) string,
	debugHeader func(iteration int) string,
	handleResult func(*Summary) error,
	finish func() error,
) int {
	for iteration := 1; totalIterations <= 0 || iteration <= totalIterations; iteration++ {
		select {
		case <-ctx.Done():
			r.logf("\n%s\n", interruptMessage(iteration-1))
			return 1
		default:
		}

		if header := debugHeader(iteration); header != "" {
			r.logf("%s\n", header)
		}

		result, err := r.runOnce(ctx)
		if err != nil {
			r.logf("\nError in iteration %d: %v\n", iteration, err)
			return 1
		}

		if result != nil && handleResult != nil {
			if err := handleResult(result); err != nil {
				r.logf("Error formatting results: %v\n", err)
			}
		}
	}

	if finish != nil {
		if err := finish(); err != nil {
			r.logf("Error formatting results: %v\n", err)
		}
	}

	return 0
}

func (r *Runner) runOnce(ctx context.Context) (*Summary, error) {
	if r.parsed == nil {
		parsed, err := parseFiles(r.config.CheckFiles)
		if err != nil {
			return nil, err
		}
		r.parsed = parsed
	}

	return r.executeParsedFiles(ctx, r.parsed)
}

// ExecuteFiles parses and runs the given check files once.
func (r *Runner) ExecuteFiles(ctx context.Context, files []string) (*Summary, error) {
	parsed, err := parseFiles(files)
	if err != nil {
		return nil, err
	}

	return r.executeParsedFiles(ctx, parsed)
}

func (r *Runner) executeParsedFiles(ctx context.Context, files []ParsedFile) (*Summary, error) {
	s := NewSummary(len(files))

	overallStart := time.Now()
	var firstError error

	for _, file := range files {
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}

		start := time.Now()
		checkCount, err := r.executeParsedFile(ctx, file)
		duration := time.Since(start)

		s.Add(FileResult{
			Filename:   file.Filename,
			CheckCount: checkCount,
			Duration:   duration,
			Error:      err,
		})

		if err != nil && firstError == nil {
			firstError = err
		}
	}

	s.SetTotalDuration(time.Since(overallStart))
	return s, firstError
}

func (r *Runner) executeParsedFile(ctx context.Context, file ParsedFile) (int, error) {
	checkCount := 0

	for i, check := range file.Checks {
		select {
		case <-ctx.Done():
			return checkCount, ctx.Err()
		default:
		}

		if err := r.executeCheck(ctx, check, file.BaseDir); err != nil {
			return checkCount, fmt.Errorf("check %d (%s) failed: %w", i, checkLabel(check), err)
		}
		checkCount++
	}

	return checkCount, nil
}

func (r *Runner) executeCheck(ctx context.Context, check model.Check, baseDir string) error {
	doc, err := r.loadDocument(ctx, check, baseDir)
	if err != nil {
		return err
	}

	view, err := page.Create(buildDefinition(check.Page), page.Options{Document: doc})
	if err != nil {
		return fmt.Errorf("invalid page model: %w", err)
	}

	if err := r.executePropertyAsserts(view, check.Asserts.Properties); err != nil {
		return err
	}

	return r.executeJSONAsserts(doc, check.Asserts.JSON)
}

// loadDocument resolves the check's document reference. Relative file paths
// resolve against the configured base directory when set, otherwise against
// the check file's own directory.
func (r *Runner) loadDocument(ctx context.Context, check model.Check, baseDir string) (*dom.Document, error) {
	ref := check.URL
	if ref == "" {
		ref = check.Document
		if r.config.BaseDir == "" && !filepath.IsAbs(ref) {
			ref = filepath.Join(baseDir, ref)
		}
	}

	r.debugf("loading document %s\n", ref)

	return r.fetcher.Document(ctx, ref)
}

func checkLabel(check model.Check) string {
	if check.Name != "" {
		return check.Name
	}
	if check.URL != "" {
		return check.URL
	}
	return check.Document
}

func parseFiles(files []string) ([]ParsedFile, error) {
	parsed := make([]ParsedFile, 0, len(files))
	for _, filename := range files {
		file, err := parseFile(filename)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, file)
	}

	return parsed, nil
}

func parseFile(filename string) (ParsedFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return ParsedFile{}, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	checks, err := model.Parse(file)
	if err != nil {
		return ParsedFile{}, fmt.Errorf("failed to parse file %s: %w", filename, err)
	}

	return ParsedFile{
		Filename: filename,
		BaseDir:  filepath.Dir(filename),
		Checks:   checks,
	}, nil
}
