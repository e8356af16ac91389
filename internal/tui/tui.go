// Package tui provides a Bubble Tea terminal user interface for quilt-installer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/quilt-installer/internal/install"
	"github.com/handiism/quilt-installer/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DC29DD")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// Catalogs lists available versions. *meta.Client implements it.
type Catalogs interface {
	FetchPlatformVersions(ctx context.Context) ([]model.PlatformVersion, error)
	FetchLoaderVersions(ctx context.Context) ([]model.LoaderVersion, error)
}

// Installer runs installs. *install.Installer implements it.
type Installer interface {
	Install(ctx context.Context, target model.InstallTarget, onProgress func(install.ProgressEvent)) error
}

// Message types
type (
	// eventMsg delivers a Reduce event through the Bubble Tea loop.
	eventMsg struct{ event Event }

	// installStream carries progress from a running install. It is
	// closed after the final InstallFinished event.
	installStream chan Event
)

// Model is the Bubble Tea model for the TUI. It owns the widgets and the
// side effects; every decision is made by Reduce.
type Model struct {
	state State

	catalogs  Catalogs
	installer Installer

	dirInput textinput.Model
	spinner  spinner.Model
	progress progress.Model

	cancel context.CancelFunc
	stream installStream

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(catalogs Catalogs, installer Installer, clientDir, serverDir string) Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(clientDir)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC29DD"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:     NewState(clientDir, serverDir),
		catalogs:  catalogs,
		installer: installer,
		dirInput:  ti,
		spinner:   sp,
		progress:  prog,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCatalogs())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if m.state.Phase == PhaseForm && m.state.Focus == FieldDir && !isNavigationKey(key) {
			var cmd tea.Cmd
			m.dirInput, cmd = m.dirInput.Update(msg)
			cmds = append(cmds, cmd, m.dispatch(DirEdited{Value: m.dirInput.Value()}))
			return m, tea.Batch(cmds...)
		}
		cmds = append(cmds, m.dispatch(KeyPressed{Key: key}))

	case eventMsg:
		cmds = append(cmds, m.dispatch(msg.event))
		if _, ok := msg.event.(Progressed); ok && m.stream != nil {
			cmds = append(cmds, m.progress.SetPercent(m.state.Progress), waitForEvent(m.stream))
		}
		if _, ok := msg.event.(InstallFinished); ok {
			m.stream = nil
			m.cancel = nil
			cmds = append(cmds, m.progress.SetPercent(m.state.Progress))
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// dispatch runs an event through Reduce and performs the resulting effects.
func (m *Model) dispatch(e Event) tea.Cmd {
	prev := m.state
	var effects []Effect
	m.state, effects = Reduce(m.state, e)
	m.syncDirInput(prev)

	var cmds []tea.Cmd
	for _, effect := range effects {
		switch effect := effect.(type) {
		case FetchCatalogs:
			cmds = append(cmds, m.fetchCatalogs(), m.spinner.Tick)
		case StartInstall:
			cmds = append(cmds, m.startInstall(effect.Target), m.progress.SetPercent(0))
		case CancelInstall:
			if m.cancel != nil {
				m.cancel()
			}
		case Quit:
			cmds = append(cmds, tea.Quit)
		}
	}
	return tea.Batch(cmds...)
}

// syncDirInput points the text input at the directory of the current mode.
func (m *Model) syncDirInput(prev State) {
	if m.state.Mode != prev.Mode || m.dirInput.Value() != m.state.Dir() {
		m.dirInput.SetValue(m.state.Dir())
		m.dirInput.CursorEnd()
	}
	if m.state.Phase == PhaseForm && m.state.Focus == FieldDir {
		m.dirInput.Focus()
	} else {
		m.dirInput.Blur()
	}
}

func (m Model) fetchCatalogs() tea.Cmd {
	catalogs := m.catalogs
	return func() tea.Msg {
		ctx := context.Background()
		games, err := catalogs.FetchPlatformVersions(ctx)
		if err != nil {
			return eventMsg{CatalogsLoaded{Err: err}}
		}
		loaders, err := catalogs.FetchLoaderVersions(ctx)
		if err != nil {
			return eventMsg{CatalogsLoaded{Err: err}}
		}
		return eventMsg{CatalogsLoaded{Games: games, Loaders: loaders}}
	}
}

// startInstall runs the install in the background and streams its events.
func (m *Model) startInstall(target model.InstallTarget) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	stream := make(installStream, 64)
	m.cancel = cancel
	m.stream = stream

	installer := m.installer
	go func() {
		defer cancel()
		err := installer.Install(ctx, target, func(e install.ProgressEvent) {
			select {
			case stream <- Progressed{Event: e}:
			case <-ctx.Done():
			}
		})
		stream <- InstallFinished{Err: err}
		close(stream)
	}()

	return waitForEvent(stream)
}

func waitForEvent(stream installStream) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-stream
		if !ok {
			return nil
		}
		return eventMsg{e}
	}
}

func isNavigationKey(key string) bool {
	switch key {
	case "tab", "shift+tab", "up", "down", "enter", "esc", "ctrl+c":
		return true
	}
	return false
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Quilt Installer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Install Quilt Loader for Minecraft clients and servers"))
	b.WriteString("\n\n")

	switch m.state.Phase {
	case PhaseLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Fetching versions..."))
		b.WriteString("\n")
	case PhaseForm:
		b.WriteString(m.viewForm())
	case PhaseInstalling:
		b.WriteString(m.viewInstalling())
	case PhaseDone:
		b.WriteString(m.viewComplete())
	case PhaseFailed:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewForm() string {
	var b strings.Builder
	s := m.state

	row := func(field Field, label, value string) {
		marker := "  "
		style := infoStyle
		if s.Focus == field {
			marker = "> "
			style = focusStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-16s", marker, label)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row(FieldMode, "Installation", fmt.Sprintf("‹ %s ›", s.Mode))

	game := "none"
	if g, ok := s.SelectedGame(); ok {
		game = g.ID
	}
	row(FieldGame, "Minecraft", fmt.Sprintf("‹ %s ›  %s", game, dimStyle.Render(fmt.Sprintf("%d/%d", s.GameIndex+1, len(s.VisibleGames())))))

	loader := "none"
	if l, ok := s.SelectedLoader(); ok {
		loader = l.Identifier()
	}
	row(FieldLoader, "Quilt Loader", fmt.Sprintf("‹ %s ›  %s", loader, dimStyle.Render(fmt.Sprintf("%d/%d", s.LoaderIndex+1, len(s.VisibleLoaders())))))

	row(FieldDir, "Directory", m.dirInput.View())
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Show snapshots (s)\n", check(s.ShowSnapshots)))
	b.WriteString(fmt.Sprintf("  %s Show betas (b)\n", check(s.ShowBetas)))
	if s.Mode == ModeClient {
		b.WriteString(fmt.Sprintf("  %s Generate launcher profile (p)\n", check(s.GenerateProfile)))
	} else {
		b.WriteString(fmt.Sprintf("  %s Download server jar (j)\n", check(s.DownloadServerJar)))
		b.WriteString(fmt.Sprintf("  %s Generate launch script (t)\n", check(s.GenerateScript)))
	}
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", check(s.Verbose)))

	if s.Notice != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("! " + s.Notice))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewInstalling() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Installing %s...", strings.ToLower(m.state.Mode.String()))))
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	game, _ := m.state.SelectedGame()
	loader, _ := m.state.SelectedLoader()

	return boxStyle.Render(fmt.Sprintf(
		"Installation Complete!\n\n"+
			"Type: %s\n"+
			"Minecraft: %s\n"+
			"Quilt Loader: %s\n"+
			"Directory: %s",
		m.state.Mode,
		game.ID,
		loader.Identifier(),
		m.state.Dir(),
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.state.Err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.state.Err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.state.Logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case install.LevelError:
			style = errorStyle
			prefix = "✗"
		case install.LevelWarning:
			style = warningStyle
			prefix = "!"
		case install.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case install.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state.Phase {
	case PhaseLoading:
		return "esc: quit"
	case PhaseForm:
		if m.state.Focus == FieldDir {
			return "enter: install • tab: next field • esc: quit"
		}
		return "enter: install • tab/↑↓: field • ←→: change • m: mode • esc: quit"
	case PhaseInstalling:
		return "esc: cancel"
	case PhaseDone, PhaseFailed:
		return "r: start over • q: quit"
	}
	return ""
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(catalogs Catalogs, installer Installer, clientDir, serverDir string) error {
	p := tea.NewProgram(NewModel(catalogs, installer, clientDir, serverDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
