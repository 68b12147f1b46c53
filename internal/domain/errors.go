package domain

import "errors"

// Failure taxonomy for the pipeline. Errors returned by pipeline stages wrap
// exactly one of these sentinels plus the underlying cause, so callers can
// classify with errors.Is and still see what went wrong.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtraction        = errors.New("text extraction failed")
	ErrIndexing          = errors.New("indexing failed")
	ErrSearch            = errors.New("search failed")
	ErrProvider          = errors.New("model provider request failed")
	ErrStore             = errors.New("vector store request failed")
	ErrFormatting        = errors.New("result formatting failed")
)
