package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/resource"
	"lectopus/internal/saved"
)

type savedScreen struct {
	list   *resource.Resource[[]saved.Record]
	cursor int
}

func newSavedScreen(a *App) *savedScreen {
	return &savedScreen{
		list: resource.New(func(ctx context.Context) ([]saved.Record, error) {
			if a.deps.Saved == nil {
				return nil, nil
			}
			return a.deps.Saved.Load(ctx)
		},
			resource.WithContext(a.ctx),
			resource.WithName("saved"),
			resource.WithLogger(a.deps.Logger),
			resource.WithOnChange(a.notify),
		),
	}
}

func (s *savedScreen) kind() screenKind { return kindSaved }

func (s *savedScreen) records() []saved.Record {
	if d := s.list.Data(); d != nil {
		return *d
	}
	return nil
}

func (s *savedScreen) update(a *App, msg tea.KeyMsg) tea.Cmd {
	recs := s.records()
	switch msg.String() {
	case "up", "k":
		s.cursor = clamp(s.cursor-1, len(recs))
	case "down", "j":
		s.cursor = clamp(s.cursor+1, len(recs))
	case "enter":
		if len(recs) > 0 {
			a.openDetail(recs[clamp(s.cursor, len(recs))].ID)
		}
	case "d":
		if len(recs) == 0 || a.deps.Saved == nil {
			return nil
		}
		rec := recs[clamp(s.cursor, len(recs))]
		return s.mutate(a, fmt.Sprintf("Removed %q", rec.Title), func(ctx context.Context) error {
			return a.deps.Saved.Remove(ctx, rec.ID)
		})
	case "C":
		if len(recs) == 0 || a.deps.Saved == nil {
			return nil
		}
		return s.mutate(a, "Saved list cleared", a.deps.Saved.Clear)
	}
	return nil
}

// mutate runs fn and reloads the list from the store.
func (s *savedScreen) mutate(a *App, done string, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return errMsg{err}
		}
		_ = s.list.Invoke(ctx)
		return statusMsg(done)
	}
}

func (s *savedScreen) view(a *App) string {
	st := s.list.State()
	recs := s.records()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Saved Books (%d)", len(recs))))
	b.WriteString("\n")
	switch {
	case st.Loading && st.Data == nil:
		b.WriteString(dimStyle.Render("Loading..."))
	case st.Err != nil:
		b.WriteString(renderError(st.Err))
	case len(recs) == 0:
		b.WriteString(dimStyle.Render("Nothing saved yet. Press s on a book to save it."))
	default:
		cursor := clamp(s.cursor, len(recs))
		for i, r := range recs {
			line := r.Title
			if r.PublishedYear != "" {
				line += dimStyle.Render(" (" + r.PublishedYear + ")")
			}
			if i == cursor {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(help("↑/↓ move · enter details · d remove · C clear all · h home · p profile · q quit"))
	return strings.TrimRight(b.String(), "\n")
}

func (s *savedScreen) close() {
	s.list.Close()
}
