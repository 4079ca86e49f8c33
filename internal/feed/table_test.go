package feed

import (
	"reflect"
	"testing"
)

func TestNewTable_DedupesHeaders(t *testing.T) {
	tbl := NewTable([]string{"id", "name", "id", "id", "id.1"})

	want := []string{"id", "name", "id.1", "id.2", "id.1.1"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}

func TestTable_AppendRow(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})

	if err := tbl.AppendRow([]string{"1", "2"}); err != nil {
		t.Fatalf("AppendRow() error = %v", err)
	}
	if err := tbl.AppendRow([]string{"1"}); err == nil {
		t.Error("AppendRow() with short row should fail")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}

	if v, ok := tbl.Value(0, "b"); !ok || v != "2" {
		t.Errorf("Value(0, b) = %q, %v; want 2, true", v, ok)
	}
	if _, ok := tbl.Value(0, "missing"); ok {
		t.Error("Value() on a missing column should report false")
	}
}

func TestTable_SetColumn(t *testing.T) {
	tbl := NewTable([]string{"a"})
	tbl.AppendRow([]string{"x"})
	tbl.AppendRow([]string{"y"})

	if err := tbl.SetColumn("b", []string{"1", "2"}); err != nil {
		t.Fatalf("SetColumn() append error = %v", err)
	}
	if got := tbl.Columns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Columns() = %v", got)
	}

	if err := tbl.SetColumn("a", []string{"p", "q"}); err != nil {
		t.Fatalf("SetColumn() overwrite error = %v", err)
	}
	if got := tbl.Values("a"); !reflect.DeepEqual(got, []string{"p", "q"}) {
		t.Errorf("Values(a) = %v, want [p q]", got)
	}
	if len(tbl.Columns()) != 2 {
		t.Errorf("overwrite should not add a column, got %v", tbl.Columns())
	}

	if err := tbl.SetColumn("c", []string{"only one"}); err == nil {
		t.Error("SetColumn() with wrong length should fail")
	}
}

func TestTable_Filter(t *testing.T) {
	tbl := NewTable([]string{"a"})
	for _, v := range []string{"1", "2", "3"} {
		tbl.AppendRow([]string{v})
	}

	out, err := tbl.Filter([]bool{true, false, true})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if got := out.Values("a"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("filtered Values(a) = %v, want [1 3]", got)
	}
	if tbl.Len() != 3 {
		t.Errorf("source table changed: Len() = %d", tbl.Len())
	}

	if _, err := tbl.Filter([]bool{true}); err == nil {
		t.Error("Filter() with short mask should fail")
	}
}
