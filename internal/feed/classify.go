package feed

// classify.go decides which rows survive the knitwear filter.
//
// A row is knitwear when its knit text holds the whole word "knit" or
// "knitwear". It references a jumper when its jumper text holds the whole
// word "jumper" or "jumpers" not directly followed by "suit". Knitwear rows
// without a jumper reference are dropped; every other row is kept:
//
//	keep = !isKnit || hasJumper
//
// The jumper pattern uses a negative lookahead, so both patterns run on regexp2.

import (
	"github.com/dlclark/regexp2"
)

var (
	knitPattern              = regexp2.MustCompile(`\b(?:knit|knitwear)\b`, regexp2.IgnoreCase)
	jumperNotJumpsuitPattern = regexp2.MustCompile(`\b(?:jumper|jumpers)\b(?!suit)`, regexp2.IgnoreCase)
)

// IsKnit reports whether text names a knit product.
func IsKnit(text string) bool {
	return matches(knitPattern, text)
}

// HasJumper reports whether text references a jumper, excluding jumpsuits.
func HasJumper(text string) bool {
	return matches(jumperNotJumpsuitPattern, text)
}

// matches treats a match error as no match. The patterns carry no timeout,
// so regexp2 does not return one in practice.
func matches(re *regexp2.Regexp, text string) bool {
	ok, err := re.MatchString(text)
	return err == nil && ok
}

// Keep applies the retention rule to one row's predicates.
func Keep(isKnit, hasJumper bool) bool {
	return !isKnit || hasJumper
}

// ClassificationStats are the audit counts of a classification pass.
type ClassificationStats struct {
	Total             int `json:"total"`
	Knit              int `json:"knit"`
	Jumper            int `json:"jumper"`
	KnitWithJumper    int `json:"knit_with_jumper"`
	KnitWithoutJumper int `json:"knit_without_jumper"`
}

// Classification is the per-row outcome of Classify.
type Classification struct {
	IsKnit    []bool
	HasJumper []bool
	Keep      []bool
	Stats     ClassificationStats
}

// Classify evaluates both predicates for every row. knitText and jumperText
// must be aligned row for row.
func Classify(knitText, jumperText []string) Classification {
	n := len(knitText)
	c := Classification{
		IsKnit:    make([]bool, n),
		HasJumper: make([]bool, n),
		Keep:      make([]bool, n),
		Stats:     ClassificationStats{Total: n},
	}

	for i := 0; i < n; i++ {
		knit := IsKnit(knitText[i])
		jumper := i < len(jumperText) && HasJumper(jumperText[i])

		c.IsKnit[i] = knit
		c.HasJumper[i] = jumper
		c.Keep[i] = Keep(knit, jumper)

		if knit {
			c.Stats.Knit++
		}
		if jumper {
			c.Stats.Jumper++
		}
		switch {
		case knit && jumper:
			c.Stats.KnitWithJumper++
		case knit:
			c.Stats.KnitWithoutJumper++
		}
	}
	return c
}
