package segment

import "errors"

// Sentinel kinds for caller contract violations. These are the only errors
// the segmenter raises; missing or NaN signal data degrades to the
// proportional fallback split instead.
var (
	ErrEmptySeries      = errors.New("frame series is empty")
	ErrTooFewFrames     = errors.New("frame series shorter than phase count")
	ErrNegativeIndex    = errors.New("negative frame index")
	ErrNonMonotonic     = errors.New("frame indices not strictly increasing")
	ErrImpactOutOfRange = errors.New("impact frame outside frame range")
)
