// Package pipeline orchestrates one harness run: collect both toolchains'
// raw output, normalize into canonical records, diff, classify against the
// target's expectation overlay and assemble the run report. The transform
// stages are pure and synchronous; only collection touches the outside
// world, and a failed collection degrades that side to its zero value so the
// missing data surfaces as diffs instead of aborting the run.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/effortless-metrics/mtpcompat/internal/canon"
	"github.com/effortless-metrics/mtpcompat/internal/diff"
	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/overlay"
	"github.com/effortless-metrics/mtpcompat/internal/report"
)

// State identifies the pipeline stage. Transitions are unconditional and
// forward-only; there is no retry state.
type State int

const (
	StateCollecting State = iota
	StateNormalizing
	StateDiffing
	StateClassifying
	StateReporting
	StateDone
)

// String returns the stage name.
func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateNormalizing:
		return "normalizing"
	case StateDiffing:
		return "diffing"
	case StateClassifying:
		return "classifying"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// RawReference is the reference toolchain's collected output: the parsed
// detection report plus folder and file listings, and the concatenated
// process log for the evidence bundle.
type RawReference struct {
	Detect  canon.DetectReport
	Folders []canon.Folder
	Files   []canon.File
	Log     string
}

// RawCandidate is the candidate toolchain's collected output: decoded probe
// and listing JSON, plus the process log.
type RawCandidate struct {
	Probe map[string]interface{}
	List  interface{}
	Log   string
}

// ReferenceCollector gathers the reference side's raw records.
type ReferenceCollector interface {
	Collect(ctx context.Context) (RawReference, error)
}

// CandidateCollector gathers the candidate side's raw records.
type CandidateCollector interface {
	Collect(ctx context.Context) (RawCandidate, error)
}

// Options carries run configuration into the pipeline. There is no ambient
// state: everything the pipeline needs arrives here.
type Options struct {
	RunID            string
	Target           string
	ToleranceSeconds int64
	AllowWrite       bool
	ToolVersions     map[string]string
	OverlayPath      string
}

// Pipeline drives one run.
type Pipeline struct {
	state State
	log   logger.Logger
	now   func() time.Time
}

// New creates a pipeline.
func New(log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{log: log, now: time.Now}
}

// State returns the current stage.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) advance(s State) {
	p.state = s
	p.log.Debug("stage", logger.String("state", s.String()))
}

// Logs carries the per-side raw process logs out of collection, bound for
// the evidence bundle. The core stages never read them.
type Logs struct {
	Reference string
	Candidate string
}

// Run collects from both toolchains and evaluates the result. The two
// collection paths run concurrently as a latency optimization; the core
// stages always see two already-materialized raw records.
func (p *Pipeline) Run(ctx context.Context, ref ReferenceCollector, cand CandidateCollector, ov *overlay.Overlay, opts Options) (*report.Report, Logs) {
	p.advance(StateCollecting)

	var (
		wg      sync.WaitGroup
		rawRef  RawReference
		rawCand RawCandidate
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		raw, err := ref.Collect(ctx)
		if err != nil {
			p.log.Warn("reference collection failed, continuing with empty record",
				logger.Error(err))
			raw = RawReference{Log: err.Error()}
		}
		rawRef = raw
	}()
	go func() {
		defer wg.Done()
		raw, err := cand.Collect(ctx)
		if err != nil {
			p.log.Warn("candidate collection failed, continuing with empty record",
				logger.Error(err))
			raw = RawCandidate{Log: err.Error()}
		}
		rawCand = raw
	}()
	wg.Wait()

	return p.Evaluate(rawRef, rawCand, ov, opts), Logs{
		Reference: rawRef.Log,
		Candidate: rawCand.Log,
	}
}

// Evaluate runs the pure pipeline stages over already-collected raw records.
// Deterministic: fixed inputs and overlay always produce the same report
// content (metadata aside).
func (p *Pipeline) Evaluate(rawRef RawReference, rawCand RawCandidate, ov *overlay.Overlay, opts Options) *report.Report {
	if ov == nil {
		ov = overlay.Empty()
	}
	tolerance := ov.TimestampTolerance(opts.ToleranceSeconds)

	p.advance(StateNormalizing)
	refDevice := canon.NormalizeReferenceDevice(rawRef.Detect)
	refFiles := canon.NormalizeReferenceFiles(rawRef.Files, rawRef.Folders)
	candDevice := canon.NormalizeCandidateDevice(rawCand.Probe)
	candFiles := canon.NormalizeCandidateFiles(rawCand.List)

	p.advance(StateDiffing)
	tol := diff.NewTolerance(tolerance)
	entries := diff.Devices(refDevice, candDevice, tol)
	entries = append(entries, diff.Files(refFiles, candFiles, tol)...)
	p.log.Info("diff complete", logger.Int("diffs", len(entries)))

	p.advance(StateClassifying)
	entries = overlay.Classify(entries, ov)

	p.advance(StateReporting)
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()[:8]
	}
	rep := &report.Report{
		Meta: report.Meta{
			RunID:            runID,
			Timestamp:        p.now().UTC(),
			Target:           opts.Target,
			ToleranceSeconds: tolerance,
			AllowWrite:       opts.AllowWrite,
			OverlayPath:      opts.OverlayPath,
			ExpectedFailures: ov.ExpectedFailures,
			ToolVersions:     opts.ToolVersions,
		},
		Reference: report.SidePayload{
			Raw: map[string]interface{}{
				"detect":  rawRef.Detect,
				"folders": rawRef.Folders,
				"files":   rawRef.Files,
			},
			Device: refDevice,
			Files:  refFiles,
		},
		Candidate: report.SidePayload{
			Raw: map[string]interface{}{
				"probe": rawCand.Probe,
				"ls":    rawCand.List,
			},
			Device: candDevice,
			Files:  candFiles,
		},
		Diffs:   entries,
		Summary: report.Summarize(entries),
	}

	p.advance(StateDone)
	return rep
}
