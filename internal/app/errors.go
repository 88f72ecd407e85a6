package app

import "errors"

// Sentinel kinds for orchestration errors.
var (
	ErrStoreRequired = errors.New("session store required")
	ErrMissingFrames = errors.New("missing input frames")
)
