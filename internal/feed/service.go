package feed

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/feedclean/internal/history"
	"github.com/JonMunkholm/feedclean/internal/logging"
	"github.com/google/uuid"
)

// Settings are the pipeline knobs shared by every run of a Service.
type Settings struct {
	SampleSize    int
	SourceColumn  string
	TargetColumn  string
	KnitColumns   []string
	JumperColumns []string
}

// Service runs the pipelines under a concurrency limit and records each run.
type Service struct {
	store    history.Store
	limiter  *RunLimiter
	settings Settings
}

// NewService creates a Service. A nil store records nothing; a nil limiter
// uses the default limits.
func NewService(store history.Store, limiter *RunLimiter, settings Settings) *Service {
	if store == nil {
		store = history.Nop{}
	}
	if limiter == nil {
		limiter = NewRunLimiter(DefaultMaxConcurrentRuns, DefaultMaxWaitTime)
	}
	return &Service{
		store:    store,
		limiter:  limiter,
		settings: settings,
	}
}

func (s *Service) convertOptions(input, output string) ConvertOptions {
	return ConvertOptions{
		InputPath:    input,
		OutputPath:   output,
		SampleSize:   s.settings.SampleSize,
		SourceColumn: s.settings.SourceColumn,
		TargetColumn: s.settings.TargetColumn,
	}
}

func (s *Service) filterOptions(input, output string) FilterOptions {
	return FilterOptions{
		InputPath:     input,
		OutputPath:    output,
		KnitColumns:   s.settings.KnitColumns,
		JumperColumns: s.settings.JumperColumns,
	}
}

// ConvertFile runs the conversion pipeline from input to output.
func (s *Service) ConvertFile(ctx context.Context, input, output string) (*ConvertResult, history.Run, error) {
	var result *ConvertResult
	run, err := s.execute(ctx, history.PipelineConvert, input, output, func(ctx context.Context) error {
		var err error
		result, err = Convert(ctx, s.convertOptions(input, output))
		return err
	})
	fillConvert(&run, result)
	s.record(ctx, run)
	return result, run, err
}

// ConvertUpload runs the conversion pipeline over an uploaded feed named name.
func (s *Service) ConvertUpload(ctx context.Context, name string, r io.Reader, w io.Writer) (*ConvertResult, history.Run, error) {
	var result *ConvertResult
	run, err := s.execute(ctx, history.PipelineConvert, name, "", func(ctx context.Context) error {
		var err error
		result, err = ConvertStream(ctx, r, w, s.convertOptions("", ""))
		return err
	})
	fillConvert(&run, result)
	s.record(ctx, run)
	return result, run, err
}

// FilterFile runs the filtering pipeline from input to output.
func (s *Service) FilterFile(ctx context.Context, input, output string) (*FilterResult, history.Run, error) {
	var result *FilterResult
	run, err := s.execute(ctx, history.PipelineFilter, input, output, func(ctx context.Context) error {
		var err error
		result, err = Filter(ctx, s.filterOptions(input, output))
		return err
	})
	fillFilter(&run, result)
	s.record(ctx, run)
	return result, run, err
}

// FilterUpload runs the filtering pipeline over an uploaded CSV named name.
func (s *Service) FilterUpload(ctx context.Context, name string, r io.Reader, w io.Writer) (*FilterResult, history.Run, error) {
	var result *FilterResult
	run, err := s.execute(ctx, history.PipelineFilter, name, "", func(ctx context.Context) error {
		var err error
		result, err = FilterStream(ctx, r, w, s.filterOptions("", ""))
		return err
	})
	fillFilter(&run, result)
	s.record(ctx, run)
	return result, run, err
}

// execute acquires a slot, tags ctx with a fresh run ID and times fn.
func (s *Service) execute(ctx context.Context, pipeline, input, output string, fn func(context.Context) error) (history.Run, error) {
	run := history.Run{
		ID:        uuid.New(),
		Pipeline:  pipeline,
		Input:     input,
		Output:    output,
		StartedAt: time.Now().UTC(),
	}
	ctx = logging.ContextWithRunID(ctx, run.ID.String())

	err := s.limiter.Acquire(ctx)
	if err == nil {
		err = fn(ctx)
		s.limiter.Release()
	}

	run.Duration = time.Since(run.StartedAt)
	run.Status = history.StatusSucceeded
	if err != nil {
		run.Status = history.StatusFailed
		run.Error = err.Error()
		run.ErrorCode = MapError(err).Code
	}
	return run, err
}

// record stores run. A history failure is logged and never fails the run.
func (s *Service) record(ctx context.Context, run history.Run) {
	if err := s.store.Record(ctx, run); err != nil {
		logging.FromContext(ctx).Warn("failed to record run", "run_id", run.ID.String(), "error", err)
	}
}

func fillConvert(run *history.Run, result *ConvertResult) {
	if result == nil {
		return
	}
	run.Rows = result.Rows
	run.Kept = result.Rows
	run.Skipped = result.Skipped
}

func fillFilter(run *history.Run, result *FilterResult) {
	if result == nil {
		return
	}
	run.Rows = result.Stats.Total
	run.Kept = result.Kept
	run.Removed = result.Removed
	run.Skipped = result.Skipped
	run.Knit = result.Stats.Knit
	run.Jumper = result.Stats.Jumper
	run.KnitWithJumper = result.Stats.KnitWithJumper
	run.KnitWithoutJumper = result.Stats.KnitWithoutJumper
}

// RecentRuns returns up to limit recorded runs, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]history.Run, error) {
	return s.store.Recent(ctx, limit)
}

// LimiterStatus returns the current run limiter state.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
