package tui

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lectopus/internal/book"
	"lectopus/internal/catalog"
	"lectopus/internal/saved"
	"lectopus/internal/searchmetric"
	"lectopus/internal/testutil"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Trending(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]book.Book), args.Error(1)
}

func (m *mockCatalog) Latest(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]book.Book), args.Error(1)
}

func (m *mockCatalog) Classics(ctx context.Context) ([]book.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]book.Book), args.Error(1)
}

func (m *mockCatalog) Search(ctx context.Context, query, cursor string) (catalog.Page, error) {
	args := m.Called(ctx, query, cursor)
	return args.Get(0).(catalog.Page), args.Error(1)
}

func (m *mockCatalog) Details(ctx context.Context, id, lang string) (book.Book, error) {
	args := m.Called(ctx, id, lang)
	return args.Get(0).(book.Book), args.Error(1)
}

type mockSearches struct {
	mock.Mock
}

func (m *mockSearches) Top(ctx context.Context) ([]searchmetric.Metric, error) {
	args := m.Called(ctx)
	return args.Get(0).([]searchmetric.Metric), args.Error(1)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp(t *testing.T, cat *mockCatalog, searches TrendingSearches) (*App, *saved.Store) {
	t.Helper()
	backend := saved.NewMemoryBackend()
	store := saved.NewStore(backend, slog.New(slog.DiscardHandler))
	app := New(context.Background(), Deps{
		Catalog:  cat,
		Searches: searches,
		Saved:    store,
		Profile:  saved.NewProfile(backend),
		Lang:     "tr",
		Debounce: time.Millisecond,
		Logger:   slog.New(slog.DiscardHandler),
	})
	t.Cleanup(app.Close)
	return app, store
}

// run executes a command and every command it batches.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(t, app, c)
		}
		return
	}
	if msg != nil {
		_, next := app.Update(msg)
		run(t, app, next)
	}
}

func homeOf(t *testing.T, app *App) *homeScreen {
	t.Helper()
	s, ok := app.screen.(*homeScreen)
	require.True(t, ok, "current screen is %s", app.screen.kind())
	s.trending.Wait()
	s.latest.Wait()
	return s
}

func TestApp_HomeLoadsTrendingAndLatest(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{{ID: "1", Title: "Dune", Authors: []string{"Frank Herbert"}}}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{{ID: "2", Title: "Piranesi"}}, nil)

	app, _ := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)

	view := app.View()
	assert.Contains(t, view, "Trending Books")
	assert.Contains(t, view, "Dune")
	assert.Contains(t, view, "Frank Herbert")
	assert.Contains(t, view, "Latest Books")
	assert.Contains(t, view, "Piranesi")
	cat.AssertExpectations(t)
}

func TestApp_HomeShowsError(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book(nil), errors.New("upstream down"))
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, _ := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)

	assert.Contains(t, app.View(), "Error: upstream down")
}

func TestApp_NotifiesSenderOnChange(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, _ := newTestApp(t, cat, nil)
	got := make(chan tea.Msg, 16)
	app.SetSender(func(m tea.Msg) { got <- m })
	app.Init()

	select {
	case m := <-got:
		assert.IsType(t, changedMsg{}, m)
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestApp_SearchDebouncesAndRunsLatestQuery(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Classics", mock.Anything).Return([]book.Book{{ID: "c1", Title: "Emma"}}, nil)
	cat.On("Search", mock.Anything, "du", "").Return(catalog.Page{Books: []book.Book{{ID: "d1", Title: "Dune"}}}, nil).Once()

	app, _ := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)

	app.Update(key("/"))
	s, ok := app.screen.(*searchScreen)
	require.True(t, ok)
	s.idle.Wait()
	assert.Contains(t, app.View(), "Classics")
	assert.Contains(t, app.View(), "Emma")

	_, first := app.Update(key("d"))
	_, second := app.Update(key("u"))
	require.NotNil(t, first)
	require.NotNil(t, second)

	// The first tick is stale by the time it fires.
	_, cmd := app.Update(first())
	assert.Nil(t, cmd)

	run(t, app, second)
	s.results.Wait()

	view := app.View()
	assert.Contains(t, view, `Results for "du"`)
	assert.Contains(t, view, "Dune")
	cat.AssertNumberOfCalls(t, "Search", 1)
}

func TestApp_SearchEmptyQueryResets(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Classics", mock.Anything).Return([]book.Book{{ID: "c1", Title: "Emma"}}, nil)
	cat.On("Search", mock.Anything, "x", "").Return(catalog.Page{}, nil)

	app, _ := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)
	app.Update(key("/"))
	s := app.screen.(*searchScreen)
	s.idle.Wait()

	_, cmd := app.Update(key("x"))
	run(t, app, cmd)
	s.results.Wait()
	assert.Contains(t, app.View(), `No results for "x"`)

	_, cmd = app.Update(key("backspace"))
	run(t, app, cmd)

	assert.Nil(t, s.results.Data())
	assert.False(t, s.results.Loading())
	assert.Contains(t, app.View(), "Emma")
}

func TestApp_SearchIdleShowsTrendingSearches(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)
	searches := new(mockSearches)
	searches.On("Top", mock.Anything).Return([]searchmetric.Metric{
		{SearchTerm: "dune", Count: 7, BookID: "d1", Title: "Dune"},
	}, nil)
	cat.On("Details", mock.Anything, "d1", "tr").Return(book.Book{ID: "d1", Title: "Dune"}, nil)

	app, _ := newTestApp(t, cat, searches)
	app.Init()
	homeOf(t, app)
	app.Update(key("/"))
	s := app.screen.(*searchScreen)
	s.idle.Wait()

	view := app.View()
	assert.Contains(t, view, "Trending Searches")
	assert.Contains(t, view, "Dune")
	cat.AssertNotCalled(t, "Classics", mock.Anything)

	app.Update(key("enter"))
	d, ok := app.screen.(*detailScreen)
	require.True(t, ok)
	d.book.Wait()
	assert.Equal(t, "d1", d.id)
}

func TestApp_DetailSavesBook(t *testing.T) {
	dune := testutil.TestBook
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{{ID: dune.ID, Title: dune.Title}}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Details", mock.Anything, dune.ID, "tr").Return(dune, nil)

	app, store := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)

	app.Update(key("enter"))
	d, ok := app.screen.(*detailScreen)
	require.True(t, ok)
	d.book.Wait()
	view := app.View()
	assert.Contains(t, view, dune.Description)
	assert.Contains(t, view, "896 pages")

	_, cmd := app.Update(key("s"))
	run(t, app, cmd)
	assert.Contains(t, app.View(), `Saved "Dune"`)

	recs, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, dune.SavedRecord(), recs[0])

	app.Update(key("esc"))
	_, ok = app.screen.(*homeScreen)
	assert.True(t, ok)
}

func TestApp_SavedRemoveAndClear(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, store := newTestApp(t, cat, nil)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, saved.Record{ID: "1", Title: "Dune"}))
	require.NoError(t, store.Save(ctx, saved.Record{ID: "2", Title: "Emma"}))
	require.NoError(t, store.Save(ctx, saved.Record{ID: "3", Title: "Ulysses"}))

	app.Init()
	homeOf(t, app)
	app.Update(key("v"))
	s, ok := app.screen.(*savedScreen)
	require.True(t, ok)
	s.list.Wait()
	assert.Contains(t, app.View(), "Saved Books (3)")

	app.Update(key("down"))
	_, cmd := app.Update(key("d"))
	run(t, app, cmd)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, app.View(), "Saved Books (2)")
	assert.Contains(t, app.View(), `Removed "Emma"`)

	_, cmd = app.Update(key("C"))
	run(t, app, cmd)
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, app.View(), "Nothing saved yet")
}

func TestApp_QuitClosesScreen(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, _ := newTestApp(t, cat, nil)
	app.Init()
	homeOf(t, app)

	_, cmd := app.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ProfileEditsNameAndShowsCount(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, store := newTestApp(t, cat, nil)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, saved.Record{ID: "1", Title: "Dune"}))
	require.NoError(t, store.Save(ctx, saved.Record{ID: "2", Title: "Emma"}))
	_, err := app.deps.Profile.SetName(ctx, "Ada")
	require.NoError(t, err)

	app.Init()
	homeOf(t, app)
	app.Update(key("p"))
	s, ok := app.screen.(*profileScreen)
	require.True(t, ok)
	s.name.Wait()
	s.count.Wait()

	view := app.View()
	assert.Contains(t, view, "> Ada█")
	assert.Contains(t, view, "Saved books: ")
	assert.Contains(t, view, "2")

	// shortcut letters are text here
	for _, k := range []string{" ", "q", "v", " ", " "} {
		app.Update(key(k))
	}
	_, ok = app.screen.(*profileScreen)
	require.True(t, ok)
	assert.Contains(t, app.View(), "> Ada qv  █")

	_, cmd := app.Update(key("enter"))
	run(t, app, cmd)
	assert.Contains(t, app.View(), "Name saved")

	name, err := app.deps.Profile.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada qv", name)

	app.Update(key("tab"))
	_, ok = app.screen.(*savedScreen)
	assert.True(t, ok)
}

func TestApp_ProfileClearsName(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("Trending", mock.Anything).Return([]book.Book{}, nil)
	cat.On("Latest", mock.Anything).Return([]book.Book{}, nil)

	app, _ := newTestApp(t, cat, nil)
	ctx := context.Background()
	_, err := app.deps.Profile.SetName(ctx, "Al")
	require.NoError(t, err)

	app.Init()
	homeOf(t, app)
	app.Update(key("p"))
	s := app.screen.(*profileScreen)
	s.name.Wait()
	s.count.Wait()

	app.Update(key("backspace"))
	app.Update(key("backspace"))
	_, cmd := app.Update(key("enter"))
	run(t, app, cmd)

	assert.Contains(t, app.View(), "Name cleared")
	name, err := app.deps.Profile.Name(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)
}
