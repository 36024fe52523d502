package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lectopus/internal/resource"
)

type profileScreen struct {
	name  *resource.Resource[string]
	count *resource.Resource[int]
	// input is nil until the user first edits the name.
	input *string
}

func newProfileScreen(a *App) *profileScreen {
	opts := func(name string) []resource.Option {
		return []resource.Option{
			resource.WithContext(a.ctx),
			resource.WithName(name),
			resource.WithLogger(a.deps.Logger),
			resource.WithOnChange(a.notify),
		}
	}
	return &profileScreen{
		name: resource.New(func(ctx context.Context) (string, error) {
			if a.deps.Profile == nil {
				return "", nil
			}
			return a.deps.Profile.Name(ctx)
		}, opts("profile.name")...),
		count: resource.New(func(ctx context.Context) (int, error) {
			if a.deps.Saved == nil {
				return 0, nil
			}
			return a.deps.Saved.Count(ctx)
		}, opts("profile.count")...),
	}
}

func (s *profileScreen) kind() screenKind { return kindProfile }

// text is the name shown in the input.
func (s *profileScreen) text() string {
	if s.input != nil {
		return *s.input
	}
	if n := s.name.Data(); n != nil {
		return *n
	}
	return ""
}

func (s *profileScreen) edit(fn func(string) string) {
	next := fn(s.text())
	s.input = &next
}

func (s *profileScreen) update(a *App, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		a.openKind(kindHome)
	case tea.KeyTab:
		a.openKind(kindSaved)
	case tea.KeyRunes:
		s.edit(func(t string) string { return t + string(msg.Runes) })
	case tea.KeySpace:
		s.edit(func(t string) string { return t + " " })
	case tea.KeyBackspace:
		s.edit(func(t string) string {
			if r := []rune(t); len(r) > 0 {
				return string(r[:len(r)-1])
			}
			return t
		})
	case tea.KeyEnter:
		if a.deps.Profile == nil {
			return nil
		}
		ctx, profile, name := a.ctx, a.deps.Profile, s.text()
		return func() tea.Msg {
			stored, err := profile.SetName(ctx, name)
			if err != nil {
				return errMsg{err}
			}
			_ = s.name.Invoke(ctx)
			if stored == "" {
				return statusMsg("Name cleared")
			}
			return statusMsg("Name saved")
		}
	}
	return nil
}

func (s *profileScreen) view(a *App) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Profile"))
	b.WriteString("\n\nName\n")

	if st := s.name.State(); st.Err != nil {
		b.WriteString(renderError(st.Err) + "\n")
	}
	b.WriteString("> " + s.text() + "█\n\n")

	b.WriteString("Saved books: ")
	count := s.count.State()
	switch {
	case count.Err != nil:
		b.WriteString(renderError(count.Err))
	case count.Data == nil:
		b.WriteString(dimStyle.Render("-"))
	default:
		b.WriteString(selectedStyle.Render(strconv.Itoa(*count.Data)))
	}

	b.WriteString("\n\n")
	b.WriteString(help("type your name · enter save · tab saved books · esc home"))
	return b.String()
}

func (s *profileScreen) close() {
	s.name.Close()
	s.count.Close()
}
