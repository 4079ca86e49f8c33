package feed

import (
	"reflect"
	"testing"
)

func TestIsKnit(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Cotton Knit Cardigan", true},
		{"KNITWEAR", true},
		{"chunky knit", true},
		{"knit-look top", true},
		{"Hand-knitted scarf", false},
		{"knitted jumper", false},
		{"Knits", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsKnit(tt.text); got != tt.want {
			t.Errorf("IsKnit(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasJumper(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Wool Jumper", true},
		{"jumpers & cardigans", true},
		{"JUMPER", true},
		{"Chunky Knit Jumper Suit", true},
		{"Jumpsuit", false},
		{"Denim Jumpsuits", false},
		{"jumpersuit", false},
		{"Jumperdress", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasJumper(tt.text); got != tt.want {
			t.Errorf("HasJumper(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestKeep(t *testing.T) {
	tests := []struct {
		isKnit, hasJumper, want bool
	}{
		{false, false, true},
		{false, true, true},
		{true, true, true},
		{true, false, false},
	}

	for _, tt := range tests {
		if got := Keep(tt.isKnit, tt.hasJumper); got != tt.want {
			t.Errorf("Keep(%v, %v) = %v, want %v", tt.isKnit, tt.hasJumper, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	knit := []string{
		"Knitwear Jumper Dress",
		"Cotton Knit Cardigan",
		"Chunky Knit Jumpsuit",
		"Denim Jeans",
		"Knit Top",
	}
	jumper := []string{
		"Knitwear Jumper Dress",
		"Cotton Knit Cardigan",
		"Chunky Knit Jumpsuit",
		"Jumper",
		"Knit Top Jumpers",
	}

	c := Classify(knit, jumper)

	wantKeep := []bool{true, false, false, true, true}
	if !reflect.DeepEqual(c.Keep, wantKeep) {
		t.Errorf("Keep = %v, want %v", c.Keep, wantKeep)
	}

	want := ClassificationStats{Total: 5, Knit: 4, Jumper: 3, KnitWithJumper: 2, KnitWithoutJumper: 2}
	if c.Stats != want {
		t.Errorf("Stats = %+v, want %+v", c.Stats, want)
	}
	if c.Stats.Total-c.Stats.KnitWithoutJumper != 3 {
		t.Errorf("kept count should equal total minus knit without jumper")
	}
}

func TestClassify_EmptyTextKeepsEverything(t *testing.T) {
	c := Classify([]string{"", "", ""}, []string{"", "", ""})

	for i, keep := range c.Keep {
		if !keep {
			t.Errorf("row %d dropped with empty text", i)
		}
	}
	if c.Stats.Knit != 0 || c.Stats.Jumper != 0 {
		t.Errorf("Stats = %+v, want no matches", c.Stats)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	knit := []string{"Knit Jumper", "knit scarf", "boots"}
	jumper := []string{"Knit Jumper", "knit scarf", "boots"}

	first := Classify(knit, jumper)

	var keptKnit, keptJumper []string
	for i, keep := range first.Keep {
		if keep {
			keptKnit = append(keptKnit, knit[i])
			keptJumper = append(keptJumper, jumper[i])
		}
	}

	second := Classify(keptKnit, keptJumper)
	for i, keep := range second.Keep {
		if !keep {
			t.Errorf("second pass dropped row %d (%q)", i, keptKnit[i])
		}
	}
}
