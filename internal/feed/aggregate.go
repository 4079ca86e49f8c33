package feed

import "strings"

// KnitColumns are consulted when deciding whether a product is knitwear.
var KnitColumns = []string{
	"description",
	"product_name",
	"merchant_category",
	"merchant_product_category_path",
	"custom_5",
	"merchant_product_second_category",
	"merchant_product_third_category",
}

// JumperColumns are consulted when looking for a jumper reference.
// Descriptions are not consulted.
var JumperColumns = []string{
	"product_name",
	"custom_5",
	"merchant_product_category_path",
	"merchant_product_second_category",
	"merchant_product_third_category",
}

// PresentColumns returns the candidates that exist in t, in candidate order.
// Missing candidates are dropped silently since feed schemas vary.
func PresentColumns(t *Table, candidates []string) []string {
	present := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t.HasColumn(c) {
			present = append(present, c)
		}
	}
	return present
}

// AggregateText builds one search string per row by joining the values of
// the present candidate columns with a single space.
func AggregateText(t *Table, candidates []string) []string {
	columns := PresentColumns(t, candidates)

	out := make([]string, t.Len())
	parts := make([]string, len(columns))
	for i := range out {
		for j, c := range columns {
			parts[j], _ = t.Value(i, c)
		}
		out[i] = strings.Join(parts, " ")
	}
	return out
}
