package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/feedclean/internal/feed"
	"github.com/JonMunkholm/feedclean/internal/history"
	"github.com/a-h/templ"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;width:100%;font-size:.875rem}
th,td{border-bottom:1px solid #e5e7eb;padding:.4rem .6rem;text-align:left}
th{background:#f9fafb}
.failed{color:#b91c1c}
.succeeded{color:#047857}
.muted{color:#6b7280}`

// dashboardPage renders the recent runs and the limiter state.
func dashboardPage(runs []history.Run, status feed.RunLimiterStatus) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<title>Feed pipeline runs</title><style>`)
		b.WriteString(pageStyle)
		b.WriteString(`</style></head><body><h1>Feed pipeline runs</h1>`)
		fmt.Fprintf(&b, `<p class="muted">%d of %d run slots in use</p>`, status.Active, status.MaxConcurrent)

		if len(runs) == 0 {
			b.WriteString(`<p class="muted">No runs recorded yet.</p>`)
		} else {
			b.WriteString(`<table><thead><tr>`)
			for _, h := range []string{"Started", "Pipeline", "Input", "Status", "Rows", "Kept", "Removed", "Skipped", "Duration", "Error"} {
				b.WriteString(`<th>` + h + `</th>`)
			}
			b.WriteString(`</tr></thead><tbody>`)
			for _, run := range runs {
				writeRunRow(&b, run)
			}
			b.WriteString(`</tbody></table>`)
		}

		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeRunRow(b *strings.Builder, run history.Run) {
	errText := ""
	if run.Status == history.StatusFailed {
		errText = run.ErrorCode + " " + run.Error
	}

	b.WriteString(`<tr>`)
	cell(b, run.StartedAt.Format("2006-01-02 15:04:05"))
	cell(b, run.Pipeline)
	cell(b, run.Input)
	fmt.Fprintf(b, `<td class="%s">%s</td>`, templ.EscapeString(string(run.Status)), templ.EscapeString(string(run.Status)))
	cell(b, fmt.Sprint(run.Rows))
	cell(b, fmt.Sprint(run.Kept))
	cell(b, fmt.Sprint(run.Removed))
	cell(b, fmt.Sprint(run.Skipped))
	cell(b, run.Duration.String())
	cell(b, errText)
	b.WriteString(`</tr>`)
}

func cell(b *strings.Builder, s string) {
	b.WriteString(`<td>` + templ.EscapeString(s) + `</td>`)
}
