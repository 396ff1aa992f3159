package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/roach88/factorydata/internal/format"
	"github.com/roach88/factorydata/internal/schema"
	"github.com/roach88/factorydata/internal/tlv"
)

// Step names one stage of a run.
type Step string

const (
	StepJSON      Step = "json"
	StepYAML      Step = "yaml"
	StepBinary    Step = "binary"
	StepRaw       Step = "raw"
	StepOverrides Step = "overrides"
	StepRemovals  Step = "removals"
)

// Actors attached to the change events of each step.
const (
	ActorJSON   = "Json file"
	ActorYAML   = "Yaml file"
	ActorBinary = "Binary file"
	ActorRaw    = "Flash dump"
	ActorCLI    = "Cli parameter"
)

// Override sets one parameter after all file sources have been applied.
// Value takes any form the codec accepts; certificate files are passed as
// the []byte returned by certs.Load.
type Override struct {
	Name  string
	Value any
	// Actor defaults to ActorCLI.
	Actor string
}

// Validator checks a document before it is applied.
type Validator interface {
	ValidateFile(path string, data []byte) ([]schema.Violation, error)
}

// Plan lists the sources of one run. Empty paths and a nil Raw are skipped.
type Plan struct {
	JSONPath   string
	YAMLPath   string
	BinaryPath string
	Raw        RawProvider
	Overrides  []Override
	Removals   []string

	// Validator, when set, rejects documents with schema violations as
	// malformed.
	Validator Validator
}

// StepResult records what one step did.
type StepResult struct {
	Step   Step        `json:"step"`
	Source string      `json:"source,omitempty"`
	Events []tlv.Event `json:"events"`
	Err    error       `json:"-"`
}

// Failed reports whether the step as a whole failed and was rolled back.
func (r StepResult) Failed() bool {
	return r.Err != nil
}

// Rejected counts the events of the step that were not applied.
func (r StepResult) Rejected() int {
	n := 0
	for _, ev := range r.Events {
		if ev.Failed() {
			n++
		}
	}
	return n
}

// Result is the outcome of Run.
type Result struct {
	Steps []StepResult `json:"steps"`
}

// Failed returns the steps that failed.
func (r *Result) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Failed() {
			out = append(out, s)
		}
	}
	return out
}

// Events returns every event of the run in order.
func (r *Result) Events() []tlv.Event {
	var out []tlv.Event
	for _, s := range r.Steps {
		out = append(out, s.Events...)
	}
	return out
}

// Run applies the plan to store. Only context cancellation aborts the run;
// step failures are recorded in the result.
func Run(ctx context.Context, plan Plan, store *tlv.Store) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	res := &Result{}

	steps := []struct {
		step   Step
		source string
		skip   bool
		apply  func(context.Context) ([]tlv.Event, error)
	}{
		{StepJSON, plan.JSONPath, plan.JSONPath == "", func(context.Context) ([]tlv.Event, error) {
			return applyDocument(plan.JSONPath, schema.SyntaxJSON, plan.Validator, store)
		}},
		{StepYAML, plan.YAMLPath, plan.YAMLPath == "", func(context.Context) ([]tlv.Event, error) {
			return applyDocument(plan.YAMLPath, schema.SyntaxYAML, plan.Validator, store)
		}},
		{StepBinary, plan.BinaryPath, plan.BinaryPath == "", func(context.Context) ([]tlv.Event, error) {
			return format.LoadBinaryFile(plan.BinaryPath, store, ActorBinary)
		}},
		{StepRaw, rawSource(plan.Raw), plan.Raw == nil, func(ctx context.Context) ([]tlv.Event, error) {
			return applyRaw(ctx, plan.Raw, store)
		}},
		{StepOverrides, "", len(plan.Overrides) == 0, func(context.Context) ([]tlv.Event, error) {
			return applyOverrides(plan.Overrides, store), nil
		}},
		{StepRemovals, "", len(plan.Removals) == 0, func(context.Context) ([]tlv.Event, error) {
			return applyRemovals(plan.Removals, store), nil
		}},
	}

	for _, s := range steps {
		if s.skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		logger.Debug().Str("step", string(s.step)).Str("source", s.source).Msg("applying source")

		before := store.Clone()
		events, err := s.apply(ctx)
		if err != nil {
			store.Restore(before)
			logger.Warn().Err(err).Str("step", string(s.step)).Str("source", s.source).Msg("source rejected")
		}

		sr := StepResult{Step: s.step, Source: s.source, Events: events, Err: err}
		if err == nil {
			logger.Info().
				Str("step", string(s.step)).
				Str("source", s.source).
				Int("events", len(events)).
				Int("rejected", sr.Rejected()).
				Msg("source applied")
		}
		res.Steps = append(res.Steps, sr)
	}
	return res, nil
}

func applyDocument(path string, syntax schema.Syntax, v Validator, store *tlv.Store) ([]tlv.Event, error) {
	data, err := format.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if v != nil {
		violations, err := v.ValidateFile(path, data)
		if err != nil {
			return nil, &format.FormatError{Source: path, Err: err}
		}
		if len(violations) > 0 {
			return nil, &format.FormatError{Source: path, Err: &schema.ValidationError{Violations: violations}}
		}
	}

	var pairs []format.Pair
	actor := ActorJSON
	if syntax == schema.SyntaxYAML {
		actor = ActorYAML
		pairs, err = format.ParseYAML(data)
	} else {
		pairs, err = format.ParseJSON(data)
	}
	if err != nil {
		return nil, &format.FormatError{Source: path, Err: err}
	}
	return format.Apply(store, pairs, actor), nil
}

func applyRaw(ctx context.Context, raw RawProvider, store *tlv.Store) ([]tlv.Event, error) {
	data, err := raw.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}
	return format.DecodeInto(data, store, ActorRaw, format.DecodeOptions{StopAtErased: true})
}

func applyOverrides(overrides []Override, store *tlv.Store) []tlv.Event {
	events := make([]tlv.Event, 0, len(overrides))
	for _, o := range overrides {
		actor := o.Actor
		if actor == "" {
			actor = ActorCLI
		}
		ev, _ := store.Set(o.Name, o.Value, actor)
		events = append(events, ev)
	}
	return events
}

func applyRemovals(names []string, store *tlv.Store) []tlv.Event {
	events := make([]tlv.Event, 0, len(names))
	for _, name := range names {
		ev, _ := store.Remove(name, ActorCLI)
		events = append(events, ev)
	}
	return events
}

func rawSource(raw RawProvider) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(fmt.Stringer); ok {
		return s.String()
	}
	return "raw"
}
