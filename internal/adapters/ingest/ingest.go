// Package ingest reads the pose pipeline's per-frame feature tables into
// the frame model. One CSV per subject: a frame column plus one column per
// derived metric. Blank or unparseable metric cells become NaN; a
// malformed frame column is a caller error.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// frameColumn is the required index column of every feature table.
const frameColumn = "frame"

// defaultImpactMetric drives impact detection when present.
const defaultImpactMetric = "combined_wrist_speed"

// ReadFile loads a feature table from disk.
func ReadFile(path string) ([]types.FrameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feature table %q: %w", path, err)
	}
	defer f.Close()
	frames, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("feature table %q: %w", path, err)
	}
	return frames, nil
}

// Read parses a feature table. Rows come back sorted by frame index.
func Read(r io.Reader) ([]types.FrameRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	frameCol := -1
	for i, name := range header {
		if name == frameColumn {
			frameCol = i
			break
		}
	}
	if frameCol < 0 {
		return nil, ErrMissingFrameColumn
	}

	var frames []types.FrameRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if frameCol >= len(row) {
			return nil, fmt.Errorf("line %d: %w", line, ErrBadFrameIndex)
		}
		idx, err := strconv.Atoi(row[frameCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: frame %q: %w", line, row[frameCol], ErrBadFrameIndex)
		}

		metrics := make(map[string]float64, len(header)-1)
		for i, cell := range row {
			if i == frameCol || i >= len(header) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = math.NaN()
			}
			metrics[header[i]] = v
		}
		frames = append(frames, types.FrameRecord{Index: idx, Metrics: metrics})
	}
	if len(frames) == 0 {
		return nil, ErrEmptyTable
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// DetectImpact locates the impact frame as the argmax of the wrist-speed
// metric. When the metric is absent or all-NaN, the middle frame of the
// sequence is the documented default.
func DetectImpact(frames []types.FrameRecord) int {
	best, bestIdx := math.Inf(-1), -1
	for _, f := range frames {
		if v := f.Value(defaultImpactMetric); !math.IsNaN(v) && v > best {
			best = v
			bestIdx = f.Index
		}
	}
	if bestIdx >= 0 {
		return bestIdx
	}
	return frames[len(frames)/2].Index
}
