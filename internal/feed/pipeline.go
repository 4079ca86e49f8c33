package feed

// pipeline.go wires the components into the two entry points.
//
// Conversion:  DetectDelimiter -> LoadFile -> WriteFile (intermediate)
//              -> NormalizePrice -> WriteFile (output)
// Filtering:   LoadFile -> AggregateText x2 -> Classify -> WriteFile
//
// Each step aborts its pipeline on failure. The price step never runs when
// the format conversion failed, and no output file is written for a step
// that failed.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/feedclean/internal/logging"
)

// ConvertOptions configure a conversion run.
type ConvertOptions struct {
	InputPath        string
	IntermediatePath string // Defaults to IntermediatePath(InputPath)
	OutputPath       string
	SampleSize       int    // Detection sample; DefaultSampleSize when zero
	SourceColumn     string // Defaults to PriceSourceColumn
	TargetColumn     string // Defaults to PriceColumn
}

func (o *ConvertOptions) applyDefaults() {
	if o.IntermediatePath == "" {
		o.IntermediatePath = IntermediatePath(o.InputPath)
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.SourceColumn == "" {
		o.SourceColumn = PriceSourceColumn
	}
	if o.TargetColumn == "" {
		o.TargetColumn = PriceColumn
	}
}

// ConvertResult describes a finished conversion.
type ConvertResult struct {
	Delimiter        Delimiter
	IntermediatePath string
	Converted        bool // False when the input already was the canonical CSV
	OutputPath       string
	Rows             int
	Skipped          int
}

// IntermediatePath returns where the canonical CSV of input is written:
// a ".tsv" input gets a sibling ".csv" file, anything else is rewritten in place.
func IntermediatePath(input string) string {
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".tsv") {
		return strings.TrimSuffix(input, ext) + ".csv"
	}
	return input
}

// Convert runs the conversion pipeline over files.
func Convert(ctx context.Context, opts ConvertOptions) (*ConvertResult, error) {
	opts.applyDefaults()
	logger := logging.WithFields(ctx, "pipeline", "convert", "input", opts.InputPath)

	d := DetectDelimiter(ctx, opts.InputPath, opts.SampleSize)
	logger.Info("detected file format", "format", d.String(), "delimiter", fmt.Sprintf("%q", rune(d)))

	t, stats, err := LoadFile(ctx, opts.InputPath, d)
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		logger.Warn("malformed rows skipped", "skipped", stats.Skipped)
	}

	result := &ConvertResult{
		Delimiter:        d,
		IntermediatePath: opts.IntermediatePath,
		OutputPath:       opts.OutputPath,
		Rows:             stats.Rows,
		Skipped:          stats.Skipped,
	}

	if d == Tab || opts.InputPath != opts.IntermediatePath {
		if err := WriteFile(ctx, opts.IntermediatePath, t); err != nil {
			return nil, err
		}
		result.Converted = true
		logger.Info("converted to csv", "from", d.String(), "path", opts.IntermediatePath)
	} else {
		logger.Info("file is already in csv format, no conversion needed")
	}

	if _, err := NormalizePrice(t, opts.SourceColumn, opts.TargetColumn); err != nil {
		return result, err
	}
	if err := WriteFile(ctx, opts.OutputPath, t); err != nil {
		return result, err
	}

	return result, nil
}

// ConvertStream runs the conversion pipeline over in-memory data, writing
// the price-normalized CSV to w. Nothing is written to w on failure.
func ConvertStream(ctx context.Context, r io.Reader, w io.Writer, opts ConvertOptions) (*ConvertResult, error) {
	opts.applyDefaults()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, parseError("load", "", err)
	}

	sample := data
	if len(sample) > opts.SampleSize {
		sample = sample[:opts.SampleSize]
	}
	d := DetectDelimiterSample(sample)

	t, stats, err := LoadTable(ctx, bytes.NewReader(data), d)
	if err != nil {
		return nil, err
	}

	result := &ConvertResult{
		Delimiter: d,
		Converted: true,
		Rows:      stats.Rows,
		Skipped:   stats.Skipped,
	}

	if _, err := NormalizePrice(t, opts.SourceColumn, opts.TargetColumn); err != nil {
		return result, err
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, t); err != nil {
		return result, writeError("write", "", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return result, writeError("write", "", err)
	}
	return result, nil
}

// FilterOptions configure a filtering run.
type FilterOptions struct {
	InputPath     string
	OutputPath    string
	KnitColumns   []string // Defaults to KnitColumns
	JumperColumns []string // Defaults to JumperColumns
}

func (o *FilterOptions) applyDefaults() {
	if o.KnitColumns == nil {
		o.KnitColumns = KnitColumns
	}
	if o.JumperColumns == nil {
		o.JumperColumns = JumperColumns
	}
}

// FilterResult describes a finished filtering run.
type FilterResult struct {
	KnitColumns   []string // Knit candidates present in the input
	JumperColumns []string // Jumper candidates present in the input
	Stats         ClassificationStats
	Kept          int
	Removed       int
	Skipped       int
}

// FilterTable drops knitwear rows without a jumper reference and returns
// the remaining rows as a new table.
func FilterTable(ctx context.Context, t *Table, knitColumns, jumperColumns []string) (*Table, *FilterResult, error) {
	logger := logging.WithFields(ctx, "pipeline", "filter")

	result := &FilterResult{
		KnitColumns:   PresentColumns(t, knitColumns),
		JumperColumns: PresentColumns(t, jumperColumns),
	}
	logger.Info("columns checked",
		"knit_columns", strings.Join(result.KnitColumns, ", "),
		"jumper_columns", strings.Join(result.JumperColumns, ", "),
	)

	c := Classify(AggregateText(t, knitColumns), AggregateText(t, jumperColumns))
	result.Stats = c.Stats

	filtered, err := t.Filter(c.Keep)
	if err != nil {
		return nil, nil, err
	}
	result.Kept = filtered.Len()
	result.Removed = t.Len() - filtered.Len()

	logger.Info("classified rows",
		"total", c.Stats.Total,
		"knit", c.Stats.Knit,
		"jumper", c.Stats.Jumper,
		"knit_with_jumper", c.Stats.KnitWithJumper,
		"knit_without_jumper", c.Stats.KnitWithoutJumper,
		"removed", result.Removed,
		"kept", result.Kept,
	)
	return filtered, result, nil
}

// Filter runs the filtering pipeline over files. The input must be
// comma-delimited, as produced by Convert.
func Filter(ctx context.Context, opts FilterOptions) (*FilterResult, error) {
	opts.applyDefaults()

	t, stats, err := LoadFile(ctx, opts.InputPath, Comma)
	if err != nil {
		return nil, err
	}

	filtered, result, err := FilterTable(ctx, t, opts.KnitColumns, opts.JumperColumns)
	if err != nil {
		return nil, err
	}
	result.Skipped = stats.Skipped

	if err := WriteFile(ctx, opts.OutputPath, filtered); err != nil {
		return result, err
	}
	return result, nil
}

// FilterStream runs the filtering pipeline over in-memory CSV data.
// Nothing is written to w on failure.
func FilterStream(ctx context.Context, r io.Reader, w io.Writer, opts FilterOptions) (*FilterResult, error) {
	opts.applyDefaults()

	t, stats, err := LoadTable(ctx, r, Comma)
	if err != nil {
		return nil, err
	}

	filtered, result, err := FilterTable(ctx, t, opts.KnitColumns, opts.JumperColumns)
	if err != nil {
		return nil, err
	}
	result.Skipped = stats.Skipped

	var buf bytes.Buffer
	if err := WriteTable(&buf, filtered); err != nil {
		return result, writeError("write", "", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return result, writeError("write", "", err)
	}
	return result, nil
}
