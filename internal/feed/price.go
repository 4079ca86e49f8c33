package feed

// price.go derives a numeric price column from a raw, user-supplied one.
//
// Coercion is total: any cell that is not a plain decimal number, including
// empty cells, becomes 0.0. Currency symbols and thousands separators are
// not stripped; "$5" and "1,299" are both 0.0.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// PriceSourceColumn is the raw price column required by the conversion pipeline.
	PriceSourceColumn = "search_price"

	// PriceColumn is the derived numeric price column.
	PriceColumn = "price_edited"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParsePrice converts a raw price cell to a float64.
// Surrounding whitespace is ignored. Anything that is not a finite decimal
// number yields 0.0.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// FormatPrice renders v the way the feed consumers expect doubles:
// integral values keep a trailing ".0", very large or very small magnitudes
// use exponent form, everything else uses the shortest exact decimal.
func FormatPrice(v float64) string {
	if v == 0 {
		return "0.0"
	}

	exp := decimalExponent(v)
	if exp < -4 || exp >= 16 {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// decimalExponent returns the base-10 exponent of v's shortest representation.
func decimalExponent(v float64) int {
	e := strconv.FormatFloat(v, 'e', -1, 64)
	i := strings.LastIndexByte(e, 'e')
	exp, _ := strconv.Atoi(e[i+1:])
	return exp
}

// NormalizePrice parses every cell of source and stores the result in target,
// appending target or overwriting it when it already exists. It returns the
// parsed values in row order.
//
// It fails with ErrSchema, leaving t untouched, when source is not a column of t.
func NormalizePrice(t *Table, source, target string) ([]float64, error) {
	if !t.HasColumn(source) {
		return nil, schemaError("normalize price", source,
			fmt.Errorf("missing required column %q", source))
	}

	raw := t.Values(source)
	prices := make([]float64, len(raw))
	cells := make([]string, len(raw))
	for i, r := range raw {
		prices[i] = ParsePrice(r)
		cells[i] = FormatPrice(prices[i])
	}

	if err := t.SetColumn(target, cells); err != nil {
		return nil, schemaError("normalize price", target, err)
	}
	return prices, nil
}
