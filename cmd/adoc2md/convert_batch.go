package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	adoc2md "github.com/alnah/go-adoc2md"
	"github.com/alnah/go-adoc2md/internal/dateutil"
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	HTMLPath   string
	Size       int // bytes of Markdown written
	Err        error
	Duration   time.Duration
}

// resolveWorkers returns the worker count: n when set, else GOMAXPROCS,
// never more than the number of files.
func resolveWorkers(n, files int) int {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > files {
		n = files
	}
	return max(n, 1)
}

// convertBatch processes files concurrently with a fixed number of workers.
// Results keep the order of files.
func convertBatch(ctx context.Context, conv Converter, files []FileToConvert, workers int, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	finish := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	convResult, err := convertSource(ctx, conv, f.InputPath, params)
	if err != nil {
		return finish(err)
	}

	markdown := []byte(convResult.Markdown + "\n")
	if err := writeOutput(f.OutputPath, markdown); err != nil {
		return finish(err)
	}
	result.Size = len(markdown)

	if params.html {
		result.HTMLPath = htmlOutputPath(f.OutputPath)
		if err := writeOutput(result.HTMLPath, convResult.HTML); err != nil {
			return finish(err)
		}
	}

	params.logger.Debug("converted",
		zap.String("input", f.InputPath),
		zap.String("output", f.OutputPath),
		zap.Duration("took", time.Since(start)))
	return finish(nil)
}

// convertSource reads path and converts it with the document attributes
// derived from the file.
func convertSource(ctx context.Context, conv Converter, path string, params *conversionParams) (*adoc2md.ConvertResult, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- discovered path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}

	attrs, err := documentAttributes(path, info.ModTime(), params)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	root := params.root
	if root == "" {
		root = filepath.Dir(abs)
	}

	return conv.Convert(ctx, adoc2md.Input{
		Source:     string(content),
		Attributes: attrs,
		Include:    newIncludeResolver(root, filepath.Dir(abs), params.logger),
		Name:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		HTML:       params.html,
	})
}

// documentAttributes returns the intrinsic attributes of the document at
// path: docname, docfile, docdir, docfilesuffix, outfilesuffix and the
// date attributes.
func documentAttributes(path string, modified time.Time, params *conversionParams) (map[string]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadSource, err)
	}
	ext := filepath.Ext(abs)

	attrs, err := dateutil.Attributes(modified, params.now, params.dateFormat)
	if err != nil {
		return nil, err
	}
	maps.Copy(attrs, map[string]string{
		"docname":       strings.TrimSuffix(filepath.Base(abs), ext),
		"docfile":       abs,
		"docdir":        filepath.Dir(abs),
		"docfilesuffix": ext,
		"outfilesuffix": markdownExt,
	})
	return withoutUserAttrs(attrs, params.userAttrs), nil
}

// withoutUserAttrs drops from attrs every name the user set or unset, so
// config and flags keep the last word.
func withoutUserAttrs(attrs, user map[string]string) map[string]string {
	for name := range user {
		delete(attrs, strings.TrimSuffix(name, "!"))
	}
	return attrs
}

// printResults outputs conversion results. Failures always go to stderr.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %s)\n", r.InputPath, r.OutputPath,
				r.Duration.Round(time.Millisecond), humanize.Bytes(uint64(r.Size)))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.HTMLPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.HTMLPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
}

// batchError reports how many conversions of a batch failed. It unwraps
// to every per-file error.
type batchError struct {
	failed int
	err    error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d conversion(s) failed", e.failed)
}

func (e *batchError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// batchErr combines the failures in results, or returns nil.
func batchErr(results []ConversionResult) error {
	var err error
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.InputPath, r.Err))
		}
	}
	if err == nil {
		return nil
	}
	return &batchError{failed: failed, err: err}
}
