package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/book"
	"lectopus/internal/catalog"
	"lectopus/internal/resource"
	"lectopus/internal/searchmetric"
)

// idleList is shown while the query is empty: the most searched terms, or
// classics when no metrics are available.
type idleList struct {
	Searches []searchmetric.Metric
	Classics []book.Book
}

type searchScreen struct {
	query string
	seq   int
	// submitted is the debounced query the results producer reads.
	submitted atomic.Value
	results   *resource.Resource[catalog.Page]
	idle      *resource.Resource[idleList]
	cursor    int
}

func newSearchScreen(a *App) *searchScreen {
	s := &searchScreen{}
	s.submitted.Store("")

	s.results = resource.New(func(ctx context.Context) (catalog.Page, error) {
		return a.deps.Catalog.Search(ctx, s.submitted.Load().(string), "")
	},
		resource.WithAutoInvoke(false),
		resource.WithLatestOnly(),
		resource.WithContext(a.ctx),
		resource.WithName("search.results"),
		resource.WithLogger(a.deps.Logger),
		resource.WithOnChange(a.notify),
	)

	s.idle = resource.New(func(ctx context.Context) (idleList, error) {
		if a.deps.Searches != nil {
			top, err := a.deps.Searches.Top(ctx)
			if err == nil && len(top) > 0 {
				return idleList{Searches: top}, nil
			}
			if err != nil {
				a.deps.Logger.Warn("trending searches unavailable", "error", err)
			}
		}
		classics, err := a.deps.Catalog.Classics(ctx)
		if err != nil {
			return idleList{}, err
		}
		return idleList{Classics: classics}, nil
	},
		resource.WithContext(a.ctx),
		resource.WithName("search.idle"),
		resource.WithLogger(a.deps.Logger),
		resource.WithOnChange(a.notify),
	)
	return s
}

func (s *searchScreen) kind() screenKind { return kindSearch }

func (s *searchScreen) update(a *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.openKind(kindHome)
		return nil
	case tea.KeyTab:
		a.openKind(kindSaved)
		return nil
	case tea.KeyRunes:
		s.query += string(msg.Runes)
		return s.schedule(a)
	case tea.KeySpace:
		s.query += " "
		return s.schedule(a)
	case tea.KeyBackspace:
		if r := []rune(s.query); len(r) > 0 {
			s.query = string(r[:len(r)-1])
		}
		return s.schedule(a)
	case tea.KeyUp:
		s.cursor = clamp(s.cursor-1, len(s.selectable()))
	case tea.KeyDown:
		s.cursor = clamp(s.cursor+1, len(s.selectable()))
	case tea.KeyEnter:
		if ids := s.selectable(); len(ids) > 0 {
			a.openDetail(ids[clamp(s.cursor, len(ids))])
		}
	}
	return nil
}

// schedule restarts the debounce timer; only the latest tick fires.
func (s *searchScreen) schedule(a *App) tea.Cmd {
	s.seq++
	s.cursor = 0
	seq := s.seq
	return tea.Tick(a.deps.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (s *searchScreen) fire(a *App, seq int) tea.Cmd {
	if seq != s.seq {
		return nil
	}
	q := strings.TrimSpace(s.query)
	if q == "" {
		s.submitted.Store("")
		s.results.Reset()
		return nil
	}
	s.submitted.Store(q)
	ctx := a.ctx
	return func() tea.Msg {
		_ = s.results.Invoke(ctx)
		return nil
	}
}

func (s *searchScreen) active() bool {
	return s.submitted.Load().(string) != ""
}

// selectable returns the book ids the cursor moves over.
func (s *searchScreen) selectable() []string {
	var ids []string
	if s.active() {
		if p := s.results.Data(); p != nil {
			for _, b := range p.Books {
				ids = append(ids, b.ID)
			}
		}
		return ids
	}
	if d := s.idle.Data(); d != nil {
		for _, m := range d.Searches {
			ids = append(ids, m.BookID)
		}
		for _, b := range d.Classics {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func (s *searchScreen) view(a *App) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n> " + s.query + "█\n\n")

	if s.active() {
		st := s.results.State()
		switch {
		case st.Loading:
			b.WriteString(dimStyle.Render("Searching..."))
		case st.Err != nil:
			b.WriteString(renderError(st.Err))
		case st.Data != nil && len(st.Data.Books) == 0:
			b.WriteString(dimStyle.Render(fmt.Sprintf("No results for %q", s.submitted.Load().(string))))
		case st.Data != nil:
			b.WriteString(fmt.Sprintf("Results for %q\n", s.submitted.Load().(string)))
			b.WriteString(renderBooks(st.Data.Books, clamp(s.cursor, len(st.Data.Books))))
		}
	} else {
		b.WriteString(s.idleView())
	}

	b.WriteString("\n\n")
	b.WriteString(help("type to search · ↑/↓ move · enter details · tab saved · esc home"))
	return b.String()
}

func (s *searchScreen) idleView() string {
	st := s.idle.State()
	switch {
	case st.Loading:
		return dimStyle.Render("Loading...")
	case st.Err != nil:
		return renderError(st.Err)
	case st.Data == nil:
		return ""
	}

	var b strings.Builder
	if len(st.Data.Searches) > 0 {
		b.WriteString(titleStyle.Render("Trending Searches"))
		b.WriteString("\n")
		cursor := clamp(s.cursor, len(st.Data.Searches))
		for i, m := range st.Data.Searches {
			line := fmt.Sprintf("%d. %s", i+1, m.Title) + dimStyle.Render(fmt.Sprintf(" · %q ×%d", m.SearchTerm, m.Count))
			if i == cursor {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString(titleStyle.Render("Classics"))
	b.WriteString("\n")
	b.WriteString(renderBooks(st.Data.Classics, clamp(s.cursor, len(st.Data.Classics))))
	return b.String()
}

func (s *searchScreen) close() {
	s.results.Close()
	s.idle.Close()
}
