package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/tlv"
)

// Outputs lists the files to write. Empty paths are skipped.
type Outputs struct {
	JSONPath   string
	YAMLPath   string
	BinaryPath string
}

// Write is the outcome of one output file.
type Write struct {
	Step Step   `json:"step"`
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// OutputResult collects the outcome of every requested output.
type OutputResult struct {
	Writes []Write `json:"writes"`
}

// BinaryWritten reports whether a binary container was requested and
// written. Steps that consume the container depend on it.
func (r *OutputResult) BinaryWritten() bool {
	for _, w := range r.Writes {
		if w.Step == StepBinary {
			return w.Err == nil
		}
	}
	return false
}

// Err joins the errors of all failed writes.
func (r *OutputResult) Err() error {
	var errs []error
	for _, w := range r.Writes {
		if w.Err != nil {
			errs = append(errs, w.Err)
		}
	}
	return errors.Join(errs...)
}

// WriteOutputs writes the store snapshot to every requested output. A failed
// write does not stop the others.
func WriteOutputs(ctx context.Context, store *tlv.Store, out Outputs) (*OutputResult, error) {
	logger := zerolog.Ctx(ctx)
	snap := store.Snapshot()
	res := &OutputResult{}

	writers := []struct {
		step Step
		path string
		save func(string, []tlv.Entry) error
	}{
		{StepJSON, out.JSONPath, format.SaveJSONFile},
		{StepYAML, out.YAMLPath, format.SaveYAMLFile},
		{StepBinary, out.BinaryPath, format.SaveBinaryFile},
	}

	for _, w := range writers {
		if w.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := w.save(w.path, snap)
		if err != nil {
			logger.Error().Err(err).Str("output", string(w.step)).Str("path", w.path).Msg("write failed")
		} else {
			logger.Info().Str("output", string(w.step)).Str("path", w.path).Int("entries", len(snap)).Msg("written")
		}
		res.Writes = append(res.Writes, Write{Step: w.step, Path: w.path, Err: err})
	}
	return res, nil
}
