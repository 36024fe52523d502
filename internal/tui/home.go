package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/book"
	"lectopus/internal/resource"
)

type homeScreen struct {
	trending *resource.Resource[[]book.Book]
	latest   *resource.Resource[[]book.Book]
	cursor   int
}

func newHomeScreen(a *App) *homeScreen {
	opts := func(name string) []resource.Option {
		return []resource.Option{
			resource.WithContext(a.ctx),
			resource.WithName(name),
			resource.WithLogger(a.deps.Logger),
			resource.WithOnChange(a.notify),
		}
	}
	return &homeScreen{
		trending: resource.New[[]book.Book](a.deps.Catalog.Trending, opts("home.trending")...),
		latest:   resource.New[[]book.Book](a.deps.Catalog.Latest, opts("home.latest")...),
	}
}

func (s *homeScreen) kind() screenKind { return kindHome }

func (s *homeScreen) books() []book.Book {
	var out []book.Book
	if d := s.trending.Data(); d != nil {
		out = append(out, *d...)
	}
	if d := s.latest.Data(); d != nil {
		out = append(out, *d...)
	}
	return out
}

func (s *homeScreen) update(a *App, msg tea.KeyMsg) tea.Cmd {
	books := s.books()
	switch msg.String() {
	case "up", "k":
		s.cursor = clamp(s.cursor-1, len(books))
	case "down", "j":
		s.cursor = clamp(s.cursor+1, len(books))
	case "r":
		ctx := a.ctx
		return tea.Batch(
			func() tea.Msg { _ = s.trending.Invoke(ctx); return nil },
			func() tea.Msg { _ = s.latest.Invoke(ctx); return nil },
		)
	case "enter":
		if len(books) > 0 {
			a.openDetail(books[clamp(s.cursor, len(books))].ID)
		}
	}
	return nil
}

func (s *homeScreen) view(a *App) string {
	trending, latest := s.trending.State(), s.latest.State()

	var b strings.Builder
	switch {
	case trending.Loading || latest.Loading:
		b.WriteString(dimStyle.Render("Loading books..."))
	case trending.Err != nil:
		b.WriteString(renderError(trending.Err))
	case latest.Err != nil:
		b.WriteString(renderError(latest.Err))
	default:
		var t, l []book.Book
		if trending.Data != nil {
			t = *trending.Data
		}
		if latest.Data != nil {
			l = *latest.Data
		}
		cursor := clamp(s.cursor, len(t)+len(l))
		b.WriteString(titleStyle.Render("Trending Books"))
		b.WriteString("\n")
		b.WriteString(renderBooks(t, cursor))
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render("Latest Books"))
		b.WriteString("\n")
		b.WriteString(renderBooks(l, cursor-len(t)))
	}
	b.WriteString("\n\n")
	b.WriteString(help("↑/↓ move · enter details · r reload · / search · v saved · p profile · q quit"))
	return b.String()
}

func (s *homeScreen) close() {
	s.trending.Close()
	s.latest.Close()
}
