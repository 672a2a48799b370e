package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/alnah/go-adoc2md/internal/fileutil"
	"github.com/alnah/go-adoc2md/internal/hints"
)

// Sentinel errors for file discovery.
var (
	ErrUnsupportedInput   = errors.New("input must be an AsciiDoc file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// MaxWorkers caps --workers.
const MaxWorkers = 64

// markdownExt is the extension of every written document.
const markdownExt = ".md"

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all AsciiDoc files to convert. Directories are
// walked recursively and their layout is mirrored under outputDir.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateSourceExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if !fileutil.IsAsciiDoc(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	// Natural order: chapter-2 before chapter-10.
	sort.Slice(files, func(i, j int) bool {
		return natural.Less(files[i].InputPath, files[j].InputPath)
	})
	return files, err
}

// resolveOutputPath determines the Markdown output path for a source file.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+markdownExt)
	}

	if baseInputDir == "" && strings.HasSuffix(outputDir, markdownExt) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+markdownExt)
		}
	}

	return filepath.Join(outputDir, base+markdownExt)
}

// validateSourceExtension checks that the file has an AsciiDoc extension.
func validateSourceExtension(path string) error {
	if !fileutil.IsAsciiDoc(path) {
		return fmt.Errorf("%w: got %q%s", ErrUnsupportedInput, filepath.Ext(path), hints.ForUnsupportedInput())
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}

// htmlOutputPath returns the HTML preview path for a Markdown path.
func htmlOutputPath(mdPath string) string {
	return strings.TrimSuffix(mdPath, markdownExt) + ".html"
}
