// Package history records a summary of every pipeline run.
//
// Runs are written to PostgreSQL or to an embedded SQLite file depending on
// configuration. With no driver configured a no-op store is used, so the
// pipelines never depend on a database being available.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Pipeline names.
const (
	PipelineConvert = "convert"
	PipelineFilter  = "filter"
)

// Run is the audit record of one pipeline invocation.
type Run struct {
	ID       uuid.UUID `json:"id"`
	Pipeline string    `json:"pipeline"`
	Input    string    `json:"input"`
	Output   string    `json:"output,omitempty"`
	Status   Status    `json:"status"`

	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Removed int `json:"removed"`
	Skipped int `json:"skipped"`

	// Classification counts; zero for conversion runs.
	Knit              int `json:"knit"`
	Jumper            int `json:"jumper"`
	KnitWithJumper    int `json:"knit_with_jumper"`
	KnitWithoutJumper int `json:"knit_without_jumper"`

	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Store persists runs.
type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and sizes the store.
type Config struct {
	Driver   string
	URL      string
	MaxConns int
	MinConns int
}

// Open connects the configured store and ensures its schema exists.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverNone:
		return Nop{}, nil
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.URL, cfg.MaxConns, cfg.MinConns)
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

// Nop discards runs.
type Nop struct{}

func (Nop) Record(context.Context, Run) error { return nil }

func (Nop) Recent(context.Context, int) ([]Run, error) { return nil, nil }

func (Nop) Close() error { return nil }
