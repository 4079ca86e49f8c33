package feed

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/feedclean/internal/logging"
)

// WriteTable serializes t as comma-delimited text: a header line, then one
// line per row, each terminated by "\n". A field is quoted only when it
// contains a comma, a double quote or a line break; embedded quotes are doubled.
func WriteTable(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, t.columns); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	// A lone empty field would otherwise be a blank line, which readers skip.
	if len(fields) == 1 && fields[0] == "" {
		_, err := w.WriteString("\"\"\n")
		return err
	}
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(byte(Comma)); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteField(field)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// quoteField applies minimal quoting.
func quoteField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteFile writes t to path. The table goes to a temporary file in the
// target directory first and is renamed over path only after a complete
// write, so a failure never leaves a truncated file at path.
func WriteFile(ctx context.Context, path string, t *Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeError("write", path, err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return writeError("write", path, err)
	}

	if err := WriteTable(tmp, t); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return writeError("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return writeError("write", path, err)
	}

	logging.FromContext(ctx).Info("saved table", "path", path, "rows", t.Len(), "columns", len(t.columns))
	return nil
}
