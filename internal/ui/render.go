package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/newsdex/newsdex/internal/search"
)

// Renderer writes story and comment listings. Styling is enabled only
// when the writer is a terminal.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	styles := PlainStyles()
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		styles = DefaultStyles()
	}
	return &Renderer{out: out, styles: styles}
}

// StoryList renders a page of stories with the exact total count.
func (r *Renderer) StoryList(stories []search.Story, total uint64, offset int) {
	for i, s := range stories {
		r.storyLine(offset+i+1, s)
	}
	fmt.Fprintf(r.out, "%s\n", r.styles.Dim.Render(
		fmt.Sprintf("%d of %d total", len(stories), total)))
}

func (r *Renderer) storyLine(n int, s search.Story) {
	fmt.Fprintf(r.out, "%s %s\n",
		r.styles.Meta.Render(fmt.Sprintf("%3d.", n)),
		r.styles.Title.Render(s.Title))

	meta := fmt.Sprintf("     id %d | %d points by %s | %d comments | %s",
		s.ID, s.Score, s.By, s.Descendants, relativeTime(s.Time))
	fmt.Fprintf(r.out, "%s\n", r.styles.Meta.Render(meta))

	if s.URL != nil {
		fmt.Fprintf(r.out, "     %s\n", r.styles.Dim.Render(*s.URL))
	}
}

// StoryDetail renders a single story with its text body when present.
func (r *Renderer) StoryDetail(s *search.Story) {
	fmt.Fprintf(r.out, "%s\n", r.styles.Title.Render(s.Title))
	meta := fmt.Sprintf("id %d | %s by %s | %d points | %d comments | %s",
		s.ID, s.Type, s.By, s.Score, s.Descendants, relativeTime(s.Time))
	fmt.Fprintf(r.out, "%s\n", r.styles.Meta.Render(meta))
	if s.URL != nil {
		fmt.Fprintf(r.out, "%s\n", r.styles.Dim.Render(*s.URL))
	}
	if s.Body != nil {
		fmt.Fprintf(r.out, "\n%s\n", *s.Body)
	}
}

// CommentList renders a page of comments with the exact total count.
func (r *Renderer) CommentList(comments []search.Comment, total uint64) {
	for _, c := range comments {
		header := fmt.Sprintf("%s %s", c.By, relativeTime(c.Time))
		fmt.Fprintf(r.out, "%s %s\n",
			r.styles.Header.Render(header),
			r.styles.Dim.Render(fmt.Sprintf("(id %d)", c.ID)))
		fmt.Fprintf(r.out, "%s\n\n", indent(c.Body, "  "))
	}
	fmt.Fprintf(r.out, "%s\n", r.styles.Dim.Render(
		fmt.Sprintf("%d of %d total", len(comments), total)))
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// relativeTime renders a unix timestamp as a coarse age.
func relativeTime(unix uint64) string {
	t := time.Unix(int64(unix), 0)
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
