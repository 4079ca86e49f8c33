package feed

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/JonMunkholm/feedclean/internal/logging"
)

// DefaultSampleSize is how many bytes DetectDelimiter reads from the file head.
const DefaultSampleSize = 1024

// Delimiter is the field separator of a delimited file.
type Delimiter rune

const (
	Comma Delimiter = ','
	Tab   Delimiter = '\t'
)

// String returns the file type name for the delimiter.
func (d Delimiter) String() string {
	if d == Tab {
		return "tsv"
	}
	return "csv"
}

// DetectDelimiter samples the head of the file at path and picks a delimiter.
// It never fails: read errors are logged and fall back to Comma.
func DetectDelimiter(ctx context.Context, path string, sampleSize int) Delimiter {
	logger := logging.FromContext(ctx)
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Error("error detecting delimiter", "path", path, "error", err)
		return Comma
	}
	defer f.Close()

	sample := make([]byte, sampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		logger.Error("error detecting delimiter", "path", path, "error", err)
		return Comma
	}

	return DetectDelimiterSample(sample[:n])
}

// DetectDelimiterSample picks Tab when the first line of sample holds strictly
// more tabs than commas, and Comma otherwise.
func DetectDelimiterSample(sample []byte) Delimiter {
	firstLine := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		firstLine = sample[:i]
	}

	if bytes.Count(firstLine, []byte{'\t'}) > bytes.Count(firstLine, []byte{','}) {
		return Tab
	}
	return Comma
}
