package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	adoc2md "github.com/alnah/go-adoc2md"
	"github.com/alnah/go-adoc2md/internal/fileutil"
	"github.com/alnah/go-adoc2md/internal/hints"
)

// maxIncludeSize bounds a single included file.
const maxIncludeSize = 16 * 1024 * 1024

var errIncludeTooLarge = errors.New("include file too large")

// newIncludeResolver reads include:: targets relative to dir. Targets that
// resolve outside root are refused. Failures are logged and returned, so
// the directive degrades to a link.
func newIncludeResolver(root, dir string, logger *zap.Logger) adoc2md.IncludeResolver {
	return func(target string) (string, error) {
		path, err := fileutil.ResolveWithin(root, dir, target)
		if err != nil {
			logger.Warn("include refused", zap.String("target", target), zap.String("root", root))
			return "", fmt.Errorf("%w%s", err, hints.ForIncludeOutsideRoot())
		}

		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("include unresolved", zap.String("target", target), zap.Error(err))
			return "", err
		}
		if info.Size() > maxIncludeSize {
			logger.Warn("include unresolved", zap.String("target", target), zap.Int64("size", info.Size()))
			return "", fmt.Errorf("%w: %s", errIncludeTooLarge, target)
		}

		data, err := os.ReadFile(path) // #nosec G304 -- confined to the input root
		if err != nil {
			logger.Warn("include unresolved", zap.String("target", target), zap.Error(err))
			return "", err
		}
		logger.Debug("include resolved", zap.String("target", target), zap.String("path", path))
		return string(data), nil
	}
}
