package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	adoc2md "github.com/alnah/go-adoc2md"
	"github.com/alnah/go-adoc2md/internal/config"
	"github.com/alnah/go-adoc2md/internal/dateutil"
	"github.com/alnah/go-adoc2md/internal/fileutil"
	"github.com/alnah/go-adoc2md/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrNoInput          = errors.New("no input specified")
	ErrNoSources        = errors.New("no AsciiDoc files found")
	ErrReadSource       = errors.New("failed to read source file")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// stdinPath selects standard input as the source, or standard output as
// the destination when given to --output.
const stdinPath = "-"

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the interface for the conversion service.
type Converter interface {
	Convert(ctx context.Context, input adoc2md.Input) (*adoc2md.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ Converter = (*adoc2md.Converter)(nil)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	// root is the input root; includes may not escape it.
	root string
	// html also writes an .html preview next to each .md.
	html bool
	// dateFormat holds the layout tokens for the date attributes.
	dateFormat string
	// userAttrs are the names set by config or flags. Intrinsic
	// attributes never override them.
	userAttrs map[string]string
	now       time.Time
	logger    *zap.Logger
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}

	logger := newLogger(logLevel(flags.common, cfg), env.Stderr)
	defer func() { _ = logger.Sync() }()

	attrs, err := mergeAttributeFlags(cfg.AttributeMap(), flags.attributes)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	html := flags.html || cfg.Output.HTML
	conv := adoc2md.NewConverter(adoc2md.WithAttributes(attrs), adoc2md.WithLogger(logger))
	params := &conversionParams{
		html:       html,
		dateFormat: cfg.Date.Format,
		userAttrs:  attrs,
		now:        env.Now(),
		logger:     logger,
	}

	if inputPath == stdinPath {
		if flags.html {
			return fmt.Errorf("%w: --html needs a file input", ErrUsage)
		}
		return convertStdin(ctx, conv, flags.output, params, env)
	}

	root, err := inputRoot(inputPath)
	if err != nil {
		return err
	}
	params.root = root

	outputDir := resolveOutputDir(flags.output, cfg)
	if outputDir == stdinPath {
		if flags.html {
			return fmt.Errorf("%w: --html cannot write to stdout", ErrUsage)
		}
		return convertToStdout(ctx, conv, inputPath, params, env)
	}

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoSources, inputPath)
	}

	workers := resolveWorkers(flags.workers, len(files))
	logger.Debug("converting", zap.Int("files", len(files)), zap.Int("workers", workers))

	results := convertBatch(ctx, conv, files, workers, params)
	printResults(results, flags.common.quiet, flags.common.verbose, env)
	return batchErr(results)
}

// loadConfig loads the named config, or the defaults when name is empty.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name):
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		case errors.Is(err, dateutil.ErrInvalidDateFormat):
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForDateFormat(config.DatePresetNames()))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeAttributeFlags applies -a values over the config attributes.
func mergeAttributeFlags(base map[string]string, values []string) (map[string]string, error) {
	overrides, err := parseAttributeFlags(values)
	if err != nil {
		return nil, err
	}
	for name, value := range overrides {
		setAttribute(base, name, value)
	}
	return base, nil
}

// resolveInputPath returns the input path from args or config default.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("%w: expected one input, got %d", ErrUsage, len(args))
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir returns the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// inputRoot returns the absolute directory includes are confined to: the
// input itself when it is a directory, else its parent.
func inputRoot(inputPath string) (string, error) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf("resolving input: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// convertStdin converts standard input. Markdown goes to stdout, or to
// output when it names a file.
func convertStdin(ctx context.Context, conv Converter, output string, params *conversionParams, env *Environment) error {
	data, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %v", ErrReadSource, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	attrs, err := dateutil.Attributes(params.now, params.now, params.dateFormat)
	if err != nil {
		return err
	}
	result, err := conv.Convert(ctx, adoc2md.Input{
		Source:     string(data),
		Attributes: withoutUserAttrs(attrs, params.userAttrs),
		Include:    newIncludeResolver(cwd, cwd, params.logger),
	})
	if err != nil {
		return err
	}

	if output == "" || output == stdinPath {
		return writeMarkdown(env.Stdout, result.Markdown)
	}
	if err := writeOutput(output, []byte(result.Markdown+"\n")); err != nil {
		return err
	}
	params.logger.Info("created", zap.String("path", output))
	return nil
}

// convertToStdout converts a single file and writes the Markdown to stdout.
func convertToStdout(ctx context.Context, conv Converter, inputPath string, params *conversionParams, env *Environment) error {
	if err := validateSourceExtension(inputPath); err != nil {
		return err
	}
	result, err := convertSource(ctx, conv, inputPath, params)
	if err != nil {
		return err
	}
	return writeMarkdown(env.Stdout, result.Markdown)
}

func writeMarkdown(w io.Writer, markdown string) error {
	if _, err := io.WriteString(w, markdown+"\n"); err != nil {
		return fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err)
	}
	return nil
}

// writeOutput creates the parent directory of path and writes data to it
// atomically.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
