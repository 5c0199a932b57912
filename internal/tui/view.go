package tui

import (
	"fmt"
	"strings"

	"github.com/julianstephens/dayprompt/internal/cli"
	"github.com/julianstephens/dayprompt/internal/lifecycle"
	"github.com/julianstephens/dayprompt/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch {
	case !m.loaded:
		b.WriteString("Loading today's prompt...\n")
	case m.err != nil:
		fmt.Fprintf(&b, "Error: %v\n", m.err)
	case !m.hasEntry:
		b.WriteString("No prompt planned for today.\n")
	default:
		m.renderEntry(&b, m.entry)
	}

	b.WriteString("\n")
	b.WriteString(m.Help.View(m.Keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderEntry(b *strings.Builder, e models.DayEntry) {
	fmt.Fprintf(b, "%s  %s\n\n", cli.TitleStyle.Render(e.Day), cli.StatusLabel(e.Status))
	fmt.Fprintf(b, "  Window  %s\n", cli.FormatWindow(e, m.loc))
	fmt.Fprintf(b, "          %s\n\n", cli.DescribeWindow(e, m.now))
	fmt.Fprintf(b, "  %s\n", m.bar.ViewAs(elapsed(e, m.now)))

	if e.Status == models.EntryStatusAnswered && e.Text != nil {
		fmt.Fprintf(b, "\n  %s\n", cli.MutedStyle.Render(cli.Truncate(*e.Text, maxBarWidth)))
	}
	if e.Status == models.EntryStatusPending && lifecycle.IsAnswerable(e, m.now) {
		b.WriteString("\n  Answers are open.\n")
	}
}
