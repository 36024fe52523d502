// Package tui is the terminal client. Every screen loads its data through
// resource.Resource and re-renders when a resource reports a change.
package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/book"
	"lectopus/internal/catalog"
	"lectopus/internal/saved"
	"lectopus/internal/searchmetric"
)

// Catalog is what the screens need from the book catalogue.
type Catalog interface {
	Trending(ctx context.Context) ([]book.Book, error)
	Latest(ctx context.Context) ([]book.Book, error)
	Classics(ctx context.Context) ([]book.Book, error)
	Search(ctx context.Context, query, cursor string) (catalog.Page, error)
	Details(ctx context.Context, id, lang string) (book.Book, error)
}

// TrendingSearches lists the most searched terms.
type TrendingSearches interface {
	Top(ctx context.Context) ([]searchmetric.Metric, error)
}

type Deps struct {
	Catalog Catalog
	// Searches may be nil when no metrics database is configured; the
	// search screen then shows classics.
	Searches TrendingSearches
	Saved    *saved.Store
	// Profile may be nil; the profile screen then only shows the count.
	Profile *saved.Profile
	// Lang is the language book descriptions are translated into.
	Lang     string
	Debounce time.Duration
	Logger   *slog.Logger
}

type screenKind string

const (
	kindHome    screenKind = "home"
	kindSearch  screenKind = "search"
	kindSaved   screenKind = "saved"
	kindDetail  screenKind = "detail"
	kindProfile screenKind = "profile"
)

// takesText reports whether printable keys go to the screen's input
// instead of the global shortcuts.
func (k screenKind) takesText() bool {
	return k == kindSearch || k == kindProfile
}

type screen interface {
	kind() screenKind
	update(a *App, msg tea.KeyMsg) tea.Cmd
	view(a *App) string
	close()
}

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	deps   Deps
	screen screen
	status string
	sender atomic.Pointer[func(tea.Msg)]
}

type changedMsg struct{}

type debounceMsg struct{ seq int }

type statusMsg string

type errMsg struct{ error }

func New(ctx context.Context, deps Deps) *App {
	if deps.Debounce <= 0 {
		deps.Debounce = 500 * time.Millisecond
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &App{ctx: ctx, deps: deps}
}

// SetSender routes resource change notifications into the running program,
// usually p.Send. Call it before the program starts.
func (a *App) SetSender(send func(tea.Msg)) {
	a.sender.Store(&send)
}

// notify may run on the event loop itself (a resource started or reset from
// Update), so the send must not block it.
func (a *App) notify() {
	if send := a.sender.Load(); send != nil {
		go (*send)(changedMsg{})
	}
}

func (a *App) Init() tea.Cmd {
	a.open(newHomeScreen(a))
	return nil
}

// Close releases the resources of the current screen.
func (a *App) Close() {
	if a.screen != nil {
		a.screen.close()
	}
}

func (a *App) open(s screen) {
	if a.screen != nil {
		a.screen.close()
	}
	a.screen = s
}

func (a *App) openKind(k screenKind) {
	switch k {
	case kindSearch:
		a.open(newSearchScreen(a))
	case kindSaved:
		a.open(newSavedScreen(a))
	case kindProfile:
		a.open(newProfileScreen(a))
	default:
		a.open(newHomeScreen(a))
	}
}

func (a *App) openDetail(id string) {
	back := kindHome
	if a.screen != nil {
		back = a.screen.kind()
	}
	a.open(newDetailScreen(a, id, back))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.screen == nil {
		a.open(newHomeScreen(a))
	}

	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			a.Close()
			return a, tea.Quit
		}
		if !a.screen.kind().takesText() && a.screen.kind() != kindDetail {
			switch m.String() {
			case "q":
				a.Close()
				return a, tea.Quit
			case "h":
				a.status = ""
				a.openKind(kindHome)
				return a, nil
			case "/":
				a.status = ""
				a.openKind(kindSearch)
				return a, nil
			case "v":
				a.status = ""
				a.openKind(kindSaved)
				return a, nil
			case "p":
				a.status = ""
				a.openKind(kindProfile)
				return a, nil
			}
		}
		return a, a.screen.update(a, m)
	case debounceMsg:
		if s, ok := a.screen.(*searchScreen); ok {
			return a, s.fire(a, m.seq)
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	case changedMsg:
	}
	return a, nil
}

func (a *App) View() string {
	if a.screen == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(renderTabs(a.screen.kind()))
	b.WriteString("\n\n")
	b.WriteString(a.screen.view(a))
	if a.status != "" {
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render(a.status))
	}
	return b.String()
}
