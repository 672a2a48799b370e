package adoc2md

import (
	"errors"

	"github.com/alnah/go-adoc2md/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrInternal       = errors.New("internal conversion error")
)
