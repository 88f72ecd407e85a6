package ingest

import "errors"

// Sentinel kinds for malformed feature tables.
var (
	ErrEmptyTable         = errors.New("feature table has no rows")
	ErrMissingFrameColumn = errors.New("feature table missing frame column")
	ErrBadFrameIndex      = errors.New("non-numeric frame index")
)
