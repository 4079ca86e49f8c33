package feed

// loader.go reads delimited text into a Table.
//
// Input handling follows the import path of the upload service:
//  1. A leading byte-order mark is dropped; UTF-16 input with a BOM is decoded
//  2. The remaining bytes must be valid UTF-8, otherwise the load fails
//  3. Rows whose field count differs from the header are skipped with a warning
//
// Blank lines are ignored and never counted as malformed.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/JonMunkholm/feedclean/internal/logging"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadStats summarizes a load.
type LoadStats struct {
	Rows    int // Rows kept in the table
	Skipped int // Malformed rows dropped
}

// LoadFile opens path and loads it with LoadTable.
func LoadFile(ctx context.Context, path string, d Delimiter) (*Table, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, parseError("load", path, err)
	}
	defer f.Close()

	t, stats, err := LoadTable(ctx, f, d)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		return nil, stats, err
	}
	return t, stats, nil
}

// LoadTable parses r as header-first delimited text.
// It fails with ErrParse only when the input cannot be decoded or has no
// header; a header with zero data rows is a valid, empty table.
func LoadTable(ctx context.Context, r io.Reader, d Delimiter) (*Table, LoadStats, error) {
	var stats LoadStats
	logger := logging.FromContext(ctx)

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, parseError("load", "", fmt.Errorf("read input: %w", err))
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, stats, parseError("load", "", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = rune(d)
	cr.FieldsPerRecord = -1
	// Product text routinely carries inch marks such as 5" heel
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, parseError("load", "", errors.New("empty file: no header row"))
	}
	if err != nil {
		return nil, stats, parseError("load", "", fmt.Errorf("invalid csv header: %w", err))
	}

	t := NewTable(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, stats, parseError("load", "", err)
			}
			stats.Skipped++
			logger.Warn("skipping malformed row", "line", pe.StartLine, "cause", pe.Err)
			continue
		}

		if len(record) != len(header) {
			line, _ := cr.FieldPos(0)
			stats.Skipped++
			logger.Warn("skipping malformed row",
				"line", line,
				"cause", fmt.Sprintf("expected %d fields, saw %d", len(header), len(record)),
			)
			continue
		}

		if err := t.AppendRow(record); err != nil {
			return nil, stats, parseError("load", "", err)
		}
	}

	stats.Rows = t.Len()
	return t, stats, nil
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// decodeText returns raw as UTF-8 without a byte-order mark.
// UTF-16 input is only recognised by its BOM; anything else must already be
// valid UTF-8.
func decodeText(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, utf16LEBOM) || bytes.HasPrefix(raw, utf16BEBOM) {
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
		if err != nil {
			return nil, fmt.Errorf("encoding error: %w", err)
		}
		return out, nil
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, errors.New("encoding error: input is not valid UTF-8")
	}
	return raw, nil
}
