package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/book"
	"lectopus/internal/resource"
)

type detailScreen struct {
	id   string
	back screenKind
	book *resource.Resource[book.Book]
}

func newDetailScreen(a *App, id string, back screenKind) *detailScreen {
	return &detailScreen{
		id:   id,
		back: back,
		book: resource.New(func(ctx context.Context) (book.Book, error) {
			return a.deps.Catalog.Details(ctx, id, a.deps.Lang)
		},
			resource.WithContext(a.ctx),
			resource.WithName("detail"),
			resource.WithLogger(a.deps.Logger),
			resource.WithOnChange(a.notify),
		),
	}
}

func (s *detailScreen) kind() screenKind { return kindDetail }

func (s *detailScreen) update(a *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace", "b":
		a.openKind(s.back)
	case "q":
		a.Close()
		return tea.Quit
	case "s":
		b := s.book.Data()
		if b == nil || a.deps.Saved == nil {
			return nil
		}
		rec := b.SavedRecord()
		ctx, store := a.ctx, a.deps.Saved
		return func() tea.Msg {
			if err := store.Save(ctx, rec); err != nil {
				return errMsg{err}
			}
			return statusMsg(fmt.Sprintf("Saved %q", rec.Title))
		}
	}
	return nil
}

func (s *detailScreen) view(a *App) string {
	st := s.book.State()
	var b strings.Builder
	switch {
	case st.Loading:
		b.WriteString(dimStyle.Render("Loading book..."))
	case st.Err != nil:
		b.WriteString(renderError(st.Err))
	case st.Data != nil:
		bk := st.Data
		b.WriteString(titleStyle.Render(bk.Title))
		b.WriteString("\n")
		if len(bk.Authors) > 0 {
			b.WriteString(strings.Join(bk.Authors, ", ") + "\n")
		}
		var facts []string
		if bk.PublishedYear != "" {
			facts = append(facts, bk.PublishedYear)
		}
		if bk.Publisher != "" {
			facts = append(facts, bk.Publisher)
		}
		if bk.PageCount > 0 {
			facts = append(facts, fmt.Sprintf("%d pages", bk.PageCount))
		}
		if len(facts) > 0 {
			b.WriteString(dimStyle.Render(strings.Join(facts, " · ")) + "\n")
		}
		if len(bk.Categories) > 0 {
			b.WriteString(dimStyle.Render(strings.Join(bk.Categories, ", ")) + "\n")
		}
		if bk.Description != "" {
			b.WriteString("\n" + bk.Description + "\n")
		}
		if bk.PreviewLink != "" {
			b.WriteString("\n" + dimStyle.Render(bk.PreviewLink))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(help("s save · esc back · q quit"))
	return b.String()
}

func (s *detailScreen) close() {
	s.book.Close()
}
