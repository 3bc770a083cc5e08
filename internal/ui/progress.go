package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/newsdex/newsdex/internal/ingest"
)

// ProgressPrinter renders a rebuild's progress stream as it arrives.
// It is the single consumer of the stream.
type ProgressPrinter struct {
	out    io.Writer
	styles Styles

	total int
	done  int
}

// NewProgressPrinter creates a printer writing to out. Styling is
// enabled only when out is a terminal.
func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	styles := PlainStyles()
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		styles = DefaultStyles()
	}
	return &ProgressPrinter{out: out, styles: styles}
}

// Run consumes events until the stream closes. Returns the final stats
// on success or the stream's error terminator.
func (p *ProgressPrinter) Run(events <-chan ingest.Progress) (*ingest.IndexStats, error) {
	for ev := range events {
		switch ev.Kind {
		case ingest.ProgressStarted:
			p.total = ev.Total
			fmt.Fprintf(p.out, "%s %d top-level items\n",
				p.styles.Header.Render("indexing"), ev.Total)

		case ingest.ProgressItemCompleted:
			p.done++
			fmt.Fprintf(p.out, "%s %d/%d\n",
				p.styles.Meta.Render("indexed"), p.done, p.total)

		case ingest.ProgressCompleted:
			fmt.Fprintf(p.out, "%s %d documents in %s\n",
				p.styles.Success.Render("done:"),
				ev.Stats.TotalDocuments,
				ev.Stats.BuildTime.Round(time.Millisecond))
			return ev.Stats, nil

		case ingest.ProgressFailed:
			fmt.Fprintf(p.out, "%s %v\n", p.styles.Error.Render("failed:"), ev.Err)
			return nil, ev.Err
		}
	}
	return nil, fmt.Errorf("progress stream closed without completion")
}
