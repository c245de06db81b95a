// Package tui provides the interactive book search screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/lepinkainen/bookfinder/internal/errors"
	"github.com/lepinkainen/bookfinder/internal/saved"
	"github.com/lepinkainen/bookfinder/internal/search"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 20

	emptyHeader        = "Search for a book to begin"
	loginToSaveMessage = "Log in to save books."
	saveFailedMessage  = "Could not save this book. Please try again."
)

var runProgram = func(m tea.Model, bind func(send func(tea.Msg))) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	bind(p.Send)
	return p.Run()
}

// snapshotMsg carries a session snapshot into the update loop.
type snapshotMsg search.Snapshot

type savedMsg struct {
	bookID string
	err    error
}

// forwarder relays session snapshots to the running program. Sends happen
// on their own goroutine because the session may notify from inside Update.
type forwarder struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (f *forwarder) bind(send func(tea.Msg)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.send = send
}

func (f *forwarder) forward(s search.Snapshot) {
	f.mu.Lock()
	send := f.send
	f.mu.Unlock()
	if send != nil {
		go send(snapshotMsg(s))
	}
}

// Options configures the search screen.
type Options struct {
	Orchestrator      *search.Orchestrator
	Tracker           *saved.Tracker
	Debounce          time.Duration
	SurfaceSaveErrors bool
}

type model struct {
	ctx     context.Context
	session *search.Session
	tracker *saved.Tracker

	input   textinput.Model
	spinner spinner.Model
	list    list.Model

	snap              search.Snapshot
	surfaceSaveErrors bool
	interrupted       bool
}

func newModel(ctx context.Context, session *search.Session, tracker *saved.Tracker, surfaceSaveErrors bool) *model {
	input := textinput.New()
	input.Placeholder = "Search for a book"
	input.CharLimit = 256
	input.Width = defaultListWidth - 4
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	var saves saveState
	if tracker != nil {
		saves = tracker
	}
	l := list.New(nil, newDelegate(saves), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		ctx:               ctx,
		session:           session,
		tracker:           tracker,
		input:             input,
		spinner:           sp,
		list:              l,
		surfaceSaveErrors: surfaceSaveErrors,
	}
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.interrupted = true
			return m, tea.Quit
		case "esc":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		case "ctrl+s":
			return m, m.saveSelected()
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		return m, m.updateInput(msg)

	case snapshotMsg:
		return m, m.apply(search.Snapshot(msg))

	case savedMsg:
		return m, m.handleSaved(msg)

	case spinner.TickMsg:
		if !m.snap.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-8, 6)
		m.list.SetSize(width, height)
		m.input.Width = width - 4
		return m, nil
	}

	return m, m.updateInput(msg)
}

func (m *model) updateInput(msg tea.Msg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.session.SetInput(m.input.Value())
		return tea.Batch(cmd, m.apply(m.session.Snapshot()))
	}
	return cmd
}

func (m *model) submit() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		session.Submit(ctx)
		return snapshotMsg(session.Snapshot())
	}
}

// apply adopts s unless a newer snapshot was already shown.
func (m *model) apply(s search.Snapshot) tea.Cmd {
	if s.Version < m.snap.Version {
		return nil
	}
	wasLoading := m.snap.Loading
	m.snap = s

	items := make([]list.Item, len(s.Results))
	for i, rec := range s.Results {
		items[i] = bookItem{Record: rec}
	}
	cmd := m.list.SetItems(items)

	if s.Loading && !wasLoading {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *model) saveSelected() tea.Cmd {
	selected, ok := m.list.SelectedItem().(bookItem)
	if !ok || m.tracker == nil {
		return nil
	}
	if m.tracker.IsSaved(selected.BookID) {
		return nil
	}

	tracker, ctx, rec := m.tracker, m.ctx, selected.Record
	return func() tea.Msg {
		return savedMsg{bookID: rec.BookID, err: tracker.Save(ctx, rec)}
	}
}

// handleSaved shows save problems in the message area. Failures other than
// a missing login are only logged unless surfacing is enabled.
func (m *model) handleSaved(msg savedMsg) tea.Cmd {
	var text string
	switch {
	case msg.err == nil:
		return nil
	case errors.Is(msg.err, apperrors.ErrNotLoggedIn):
		text = loginToSaveMessage
	case m.surfaceSaveErrors:
		text = saveFailedMessage
	default:
		return nil
	}
	m.session.SetMessage(text)
	return m.apply(m.session.Snapshot())
}

func (m *model) header() string {
	if n := len(m.snap.Results); n > 0 {
		return fmt.Sprintf("Viewing %d results:", n)
	}
	return emptyHeader
}

func (m *model) View() string {
	title := titleStyle.Render("Search for Books!")
	input := m.input.View()

	status := ""
	if m.snap.Loading {
		status = m.spinner.View() + " Searching..."
	}

	parts := []string{title, input, status}
	if m.snap.Message != "" {
		parts = append(parts, messageStyle.Render(m.snap.Message))
	}
	parts = append(parts, headerStyle.Render(m.header()))
	if len(m.snap.Results) > 0 {
		parts = append(parts, m.list.View())
	}
	parts = append(parts, helpStyle.Render("Enter search | Up/Down navigate | Ctrl+S save | Esc quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("236")).
			Padding(0, 2).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginTop(1).
			MarginBottom(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Run shows the search screen until the user quits. The session is torn
// down on return; fetches still in flight finish but are not displayed.
// Quitting with ctrl+c returns a StopProcessingError.
func Run(ctx context.Context, opts Options) error {
	fwd := &forwarder{}
	session := search.NewSession(opts.Orchestrator,
		search.WithDebounce(opts.Debounce),
		search.WithContext(ctx),
		search.WithOnChange(fwd.forward),
	)
	defer session.Close()

	m := newModel(ctx, session, opts.Tracker, opts.SurfaceSaveErrors)
	final, err := runProgram(m, fwd.bind)
	if err != nil {
		return fmt.Errorf("search screen failed: %w", err)
	}
	if typed, ok := final.(*model); ok && typed.interrupted {
		return apperrors.NewStopProcessingError("search interrupted")
	}
	return nil
}
