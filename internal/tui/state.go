package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/quilt-installer/internal/install"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/selection"
)

// Phase is the screen the front end is on.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseForm
	PhaseInstalling
	PhaseDone
	PhaseFailed
)

// Mode is the installation type being configured.
type Mode int

const (
	ModeClient Mode = iota
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "Server"
	}
	return "Client"
}

// Field is a focusable form row.
type Field int

const (
	FieldMode Field = iota
	FieldGame
	FieldLoader
	FieldDir
	fieldCount
)

// ErrCancelled is shown when the user aborts an install.
var ErrCancelled = errors.New("cancelled by user")

// maxLogs is how many progress messages the install screen keeps.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   install.ProgressLevel
}

// State is everything the front end shows. Reduce never mutates a State
// in place; slices are copied before they change.
type State struct {
	Phase Phase
	Mode  Mode
	Focus Field

	Games   []model.PlatformVersion
	Loaders []model.LoaderVersion

	ShowSnapshots bool
	ShowBetas     bool
	GameIndex     int // into VisibleGames
	LoaderIndex   int // into VisibleLoaders

	ClientDir string
	ServerDir string

	GenerateProfile   bool
	DownloadServerJar bool
	GenerateScript    bool
	Verbose           bool

	Progress float64
	Logs     []LogEntry
	Notice   string
	Err      error
}

// NewState returns the initial state, waiting for catalogs.
func NewState(clientDir, serverDir string) State {
	return State{
		Phase:             PhaseLoading,
		ClientDir:         clientDir,
		ServerDir:         serverDir,
		GenerateProfile:   true,
		DownloadServerJar: true,
		GenerateScript:    true,
	}
}

// VisibleGames is the game catalog under the snapshot toggle.
func (s State) VisibleGames() []model.PlatformVersion {
	return selection.Filter(s.Games, s.ShowSnapshots)
}

// VisibleLoaders is the loader catalog under the beta toggle.
func (s State) VisibleLoaders() []model.LoaderVersion {
	return selection.Filter(s.Loaders, s.ShowBetas)
}

// SelectedGame returns the highlighted game version.
func (s State) SelectedGame() (model.PlatformVersion, bool) {
	games := s.VisibleGames()
	if s.GameIndex < 0 || s.GameIndex >= len(games) {
		return model.PlatformVersion{}, false
	}
	return games[s.GameIndex], true
}

// SelectedLoader returns the highlighted loader version.
func (s State) SelectedLoader() (model.LoaderVersion, bool) {
	loaders := s.VisibleLoaders()
	if s.LoaderIndex < 0 || s.LoaderIndex >= len(loaders) {
		return model.LoaderVersion{}, false
	}
	return loaders[s.LoaderIndex], true
}

// Dir returns the install directory for the current mode.
func (s State) Dir() string {
	if s.Mode == ModeServer {
		return s.ServerDir
	}
	return s.ClientDir
}

// Target builds the install target the form describes.
func (s State) Target() (model.InstallTarget, error) {
	game, ok := s.SelectedGame()
	if !ok {
		return nil, errors.New("no Minecraft version selected")
	}
	loader, ok := s.SelectedLoader()
	if !ok {
		return nil, errors.New("no Quilt Loader version selected")
	}
	dir := strings.TrimSpace(s.Dir())
	if dir == "" {
		return nil, errors.New("install directory is empty")
	}

	if s.Mode == ModeServer {
		return model.ServerTarget{
			Platform:             game,
			Loader:               loader,
			InstallDir:           dir,
			DownloadServerJar:    s.DownloadServerJar,
			GenerateLaunchScript: s.GenerateScript,
		}, nil
	}
	return model.ClientTarget{
		Platform:        game,
		Loader:          loader,
		InstallDir:      dir,
		GenerateProfile: s.GenerateProfile,
	}, nil
}

// Event is an input to Reduce.
type Event interface{ isEvent() }

// CatalogsLoaded carries the fetched catalogs.
type CatalogsLoaded struct {
	Games   []model.PlatformVersion
	Loaders []model.LoaderVersion
	Err     error
}

// KeyPressed is a key in bubbletea's naming ("enter", "shift+tab", "s").
type KeyPressed struct{ Key string }

// DirEdited carries the install directory input's new value.
type DirEdited struct{ Value string }

// Progressed wraps an install progress event.
type Progressed struct{ Event install.ProgressEvent }

// InstallFinished ends an install run.
type InstallFinished struct{ Err error }

func (CatalogsLoaded) isEvent()  {}
func (KeyPressed) isEvent()      {}
func (DirEdited) isEvent()       {}
func (Progressed) isEvent()      {}
func (InstallFinished) isEvent() {}

// Effect is work Reduce asks the runtime to perform.
type Effect interface{ isEffect() }

// FetchCatalogs loads both catalogs and reports CatalogsLoaded.
type FetchCatalogs struct{}

// StartInstall runs an install, reporting Progressed and InstallFinished.
type StartInstall struct{ Target model.InstallTarget }

// CancelInstall aborts the running install.
type CancelInstall struct{}

// Quit exits the program.
type Quit struct{}

func (FetchCatalogs) isEffect() {}
func (StartInstall) isEffect()  {}
func (CancelInstall) isEffect() {}
func (Quit) isEffect()          {}

// Reduce is the front end's state transition function.
func Reduce(s State, e Event) (State, []Effect) {
	switch e := e.(type) {
	case CatalogsLoaded:
		if s.Phase != PhaseLoading {
			return s, nil
		}
		if e.Err != nil {
			s.Phase = PhaseFailed
			s.Err = fmt.Errorf("loading versions: %w", e.Err)
			return s, nil
		}
		s.Games, s.Loaders = e.Games, e.Loaders
		s.GameIndex, s.LoaderIndex = 0, 0
		s.Phase = PhaseForm
		s.Err = nil
		return s, nil

	case DirEdited:
		if s.Phase != PhaseForm {
			return s, nil
		}
		if s.Mode == ModeServer {
			s.ServerDir = e.Value
		} else {
			s.ClientDir = e.Value
		}
		s.Notice = ""
		return s, nil

	case Progressed:
		if s.Phase != PhaseInstalling {
			return s, nil
		}
		if e.Event.Fraction > s.Progress {
			s.Progress = e.Event.Fraction
		}
		if e.Event.Level == install.LevelVerbose && !s.Verbose {
			return s, nil
		}
		s.Logs = appendLog(s.Logs, LogEntry{Message: e.Event.Message, Level: e.Event.Level})
		return s, nil

	case InstallFinished:
		if s.Phase != PhaseInstalling {
			return s, nil
		}
		switch {
		case e.Err == nil:
			s.Phase = PhaseDone
			s.Progress = 1
		case errors.Is(e.Err, context.Canceled):
			s.Phase = PhaseFailed
			s.Err = ErrCancelled
		default:
			s.Phase = PhaseFailed
			s.Err = e.Err
		}
		return s, nil

	case KeyPressed:
		return reduceKey(s, e.Key)
	}
	return s, nil
}

func reduceKey(s State, key string) (State, []Effect) {
	if key == "ctrl+c" {
		if s.Phase == PhaseInstalling {
			return s, []Effect{CancelInstall{}, Quit{}}
		}
		return s, []Effect{Quit{}}
	}

	switch s.Phase {
	case PhaseLoading:
		if key == "esc" || key == "q" {
			return s, []Effect{Quit{}}
		}

	case PhaseInstalling:
		if key == "esc" {
			return s, []Effect{CancelInstall{}}
		}

	case PhaseDone, PhaseFailed:
		switch key {
		case "q", "esc":
			return s, []Effect{Quit{}}
		case "r":
			s.Err = nil
			s.Logs = nil
			s.Progress = 0
			if s.Games == nil || s.Loaders == nil {
				s.Phase = PhaseLoading
				return s, []Effect{FetchCatalogs{}}
			}
			s.Phase = PhaseForm
		}

	case PhaseForm:
		return reduceFormKey(s, key)
	}
	return s, nil
}

func reduceFormKey(s State, key string) (State, []Effect) {
	s.Notice = ""

	switch key {
	case "esc":
		return s, []Effect{Quit{}}
	case "tab", "down":
		s.Focus = (s.Focus + 1) % fieldCount
		return s, nil
	case "shift+tab", "up":
		s.Focus = (s.Focus + fieldCount - 1) % fieldCount
		return s, nil
	case "left", "right":
		step := 1
		if key == "left" {
			step = -1
		}
		switch s.Focus {
		case FieldMode:
			s.Mode = 1 - s.Mode
		case FieldGame:
			s.GameIndex = clamp(s.GameIndex+step, len(s.VisibleGames()))
		case FieldLoader:
			s.LoaderIndex = clamp(s.LoaderIndex+step, len(s.VisibleLoaders()))
		}
		return s, nil
	case "enter":
		target, err := s.Target()
		if err != nil {
			s.Notice = err.Error()
			return s, nil
		}
		s.Phase = PhaseInstalling
		s.Progress = 0
		s.Logs = nil
		s.Err = nil
		return s, []Effect{StartInstall{Target: target}}
	}

	// letter shortcuts belong to the text input while it has focus
	if s.Focus == FieldDir {
		return s, nil
	}

	switch key {
	case "s":
		s.ShowSnapshots = !s.ShowSnapshots
		s.GameIndex = 0
	case "b":
		s.ShowBetas = !s.ShowBetas
		s.LoaderIndex = 0
	case "m":
		s.Mode = 1 - s.Mode
	case "v":
		s.Verbose = !s.Verbose
	case "p":
		if s.Mode == ModeClient {
			s.GenerateProfile = !s.GenerateProfile
		}
	case "j":
		if s.Mode == ModeServer {
			s.DownloadServerJar = !s.DownloadServerJar
		}
	case "t":
		if s.Mode == ModeServer {
			s.GenerateScript = !s.GenerateScript
		}
	case "q":
		return s, []Effect{Quit{}}
	}
	return s, nil
}

func appendLog(logs []LogEntry, entry LogEntry) []LogEntry {
	out := make([]LogEntry, 0, maxLogs)
	start := 0
	if len(logs) >= maxLogs {
		start = len(logs) - maxLogs + 1
	}
	out = append(out, logs[start:]...)
	return append(out, entry)
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
