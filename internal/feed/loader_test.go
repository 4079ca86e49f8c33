package feed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadTable(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		delim       Delimiter
		wantColumns []string
		wantRows    [][]string
		wantSkipped int
	}{
		{
			name:        "tab delimited",
			input:       "id\tname\tsearch_price\n1\tWool Jumper\t19.99\n2\tScarf\t\n",
			delim:       Tab,
			wantColumns: []string{"id", "name", "search_price"},
			wantRows:    [][]string{{"1", "Wool Jumper", "19.99"}, {"2", "Scarf", ""}},
		},
		{
			name:        "quoted fields",
			input:       "a,b\n\"x, y\",\"say \"\"hi\"\"\"\n\"line\nbreak\",2\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"x, y", `say "hi"`}, {"line\nbreak", "2"}},
		},
		{
			name:        "malformed rows skipped",
			input:       "a,b\n1,2\n3\n4,5,6\n7,8\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}, {"7", "8"}},
			wantSkipped: 2,
		},
		{
			name:        "blank lines ignored",
			input:       "a,b\n\n1,2\n\n\n3,4\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:        "header only",
			input:       "a,b\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
		},
		{
			name:        "bare quote inside field",
			input:       "name,size\nBoot 5\" heel,6\n",
			delim:       Comma,
			wantColumns: []string{"name", "size"},
			wantRows:    [][]string{{`Boot 5" heel`, "6"}},
		},
		{
			name:        "utf-8 bom stripped",
			input:       "\xEF\xBB\xBFa,b\n1,2\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "crlf line endings",
			input:       "a,b\r\n1,2\r\n",
			delim:       Comma,
			wantColumns: []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}},
		},
		{
			name:        "duplicate headers",
			input:       "name,name\nA,B\n",
			delim:       Comma,
			wantColumns: []string{"name", "name.1"},
			wantRows:    [][]string{{"A", "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, stats, err := LoadTable(context.Background(), strings.NewReader(tt.input), tt.delim)
			if err != nil {
				t.Fatalf("LoadTable() error = %v", err)
			}
			if got := tbl.Columns(); !reflect.DeepEqual(got, tt.wantColumns) {
				t.Errorf("Columns() = %q, want %q", got, tt.wantColumns)
			}
			if tbl.Len() != len(tt.wantRows) {
				t.Fatalf("Len() = %d, want %d", tbl.Len(), len(tt.wantRows))
			}
			for i, want := range tt.wantRows {
				if got := tbl.Row(i); !reflect.DeepEqual(got, want) {
					t.Errorf("Row(%d) = %q, want %q", i, got, want)
				}
			}
			if stats.Rows != len(tt.wantRows) {
				t.Errorf("stats.Rows = %d, want %d", stats.Rows, len(tt.wantRows))
			}
			if stats.Skipped != tt.wantSkipped {
				t.Errorf("stats.Skipped = %d, want %d", stats.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestLoadTable_UTF16WithBOM(t *testing.T) {
	text := "a,b\n1,é\n"
	raw := []byte{0xFF, 0xFE}
	for _, r := range text {
		raw = append(raw, byte(r), byte(r>>8))
	}

	tbl, _, err := LoadTable(context.Background(), strings.NewReader(string(raw)), Comma)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if v, _ := tbl.Value(0, "b"); v != "é" {
		t.Errorf("Value(0, b) = %q, want %q", v, "é")
	}
}

func TestLoadTable_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{"empty input", "", "FILE005"},
		{"only blank lines", "\n\n", "FILE005"},
		{"invalid utf-8", "a,b\n\xff\xfe\xfd,2\n", "FILE003"},
		{"invalid utf-8 after bom", "\xEF\xBB\xBFa,b\n\xff,2\n", "FILE003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadTable(context.Background(), strings.NewReader(tt.input), Comma)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("LoadTable() error = %v, want ErrParse", err)
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("MapError code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestLoadFile_ReportsPath(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.csv")
	_, _, err := LoadFile(context.Background(), missing, Comma)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("LoadFile(missing) error = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the file: %v", err)
	}
	if got := MapError(err).Code; got != "FILE006" {
		t.Errorf("MapError code = %s, want FILE006", got)
	}

	empty := filepath.Join(dir, "empty.csv")
	os.WriteFile(empty, nil, 0o644)
	_, _, err = LoadFile(context.Background(), empty, Comma)
	var fe *Error
	if !errors.As(err, &fe) || fe.Path != empty {
		t.Errorf("LoadFile(empty) error = %v, want *Error with path %s", err, empty)
	}
}
