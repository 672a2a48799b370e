package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	attributes []string
	html       bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and debug diagnostics")
}

// parseConvertFlags parses convert command flags and returns positional args.
// Usage goes to usage when -h is given or a flag is malformed.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringArrayVarP(&f.attributes, "attribute", "a", nil, "set attribute name[=value], or unset with name!")
	fs.BoolVar(&f.html, "html", false, "also write an HTML preview")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	return f, fs.Args(), nil
}

// parseAttributeFlags turns repeated -a values into conversion overrides.
//
//	name=value  sets name to value
//	name        sets name to the empty string
//	name!       unsets name
func parseAttributeFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		name, value, _ := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		bare := strings.TrimSuffix(name, "!")
		if bare == "" || strings.ContainsAny(bare, " \t{}!") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAttribute, v)
		}
		setAttribute(out, name, value)
	}
	return out, nil
}

// setAttribute records name in attrs, replacing an earlier setting or unset
// of the same attribute.
func setAttribute(attrs map[string]string, name, value string) {
	bare := strings.TrimSuffix(name, "!")
	delete(attrs, bare)
	delete(attrs, bare+"!")
	attrs[name] = value
}
