package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"github.com/sandeepkv93/coachd/internal/coach"
	"github.com/sandeepkv93/coachd/internal/model"
	"github.com/sandeepkv93/coachd/internal/ports"
)

// Coach is the slice of the presenter the TUI drives.
type Coach interface {
	State() coach.State
	SelectDay(ctx context.Context, day time.Time) (bool, error)
	BackToToday(ctx context.Context) error
	Reload(ctx context.Context) error
	Retry(ctx context.Context) (coach.Result, error)
	SkipTip(ctx context.Context, id string) error
	ToggleSave(ctx context.Context, id string) (bool, error)
	KeepGoing(ctx context.Context, lockedTipID string) error
	CallItADay(ctx context.Context) error
	OpenTip(id string)
	OpenDailyTip(ctx context.Context) error
	OpenChat()
	OpenExplore()
	DismissExploreNote()
	FinishAnimation(ctx context.Context)
}

// Completer marks a tip as done. Completions reach the presenter through
// the repository's completion stream, not through the TUI.
type Completer interface {
	CompleteTip(ctx context.Context, id string) (model.DailyTipSet, error)
}

type Screen string

const (
	ScreenCoach   Screen = "coach"
	ScreenTip     Screen = "tip"
	ScreenExplore Screen = "explore"
	ScreenChat    Screen = "chat"
)

type Target string

const (
	TargetTip     Target = "tip"
	TargetExplore Target = "explore"
	TargetChat    Target = "chat"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today   string
	Palette string
	Help    string
	Quit    string
}

type PaletteState struct {
	Active bool
	Input  string
}

// TipDetail is the open tip preview.
type TipDetail struct {
	ID       string
	Headline string
	Body     string
	Topics   []string
	Saved    bool
	Done     bool
	Source   ports.TipSource
}

type Deps struct {
	Coach     Coach
	Completer Completer
	Bridge    *Bridge
	Clock     ports.Clock
	Logger    *zap.Logger
	// AnimationDelay is how long a completion animation plays before the
	// list settles.
	AnimationDelay time.Duration
	Markdown       bool
}

type Model struct {
	Screen      Screen
	State       coach.State
	Cursor      int
	Detail      *TipDetail
	Palette     PaletteState
	HelpVisible bool
	Animating   string
	Farewell    string
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error
	Width       int
	Height      int

	coach     Coach
	completer Completer
	bridge    *Bridge
	clock     ports.Clock
	logger    *zap.Logger
	ctx       context.Context
	animDelay time.Duration
	markdown  bool

	offsets      []int
	viewport     viewport.Model
	commandInput textinput.Model
	loadSpinner  spinner.Model
	helpModel    help.Model
}

type StateMsg struct {
	State coach.State
}

type NavigateMsg struct {
	Target Target
	TipID  string
	Source ports.TipSource
}

// OpDoneMsg reports the outcome of a presenter call made off the UI loop.
type OpDoneMsg struct {
	Op      string
	Message string
	Err     error
}

type CompletedMsg struct {
	TipID string
	Err   error
}

type AnimationDoneMsg struct {
	TipID string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

func NewModel(ctx context.Context, deps Deps) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.AnimationDelay <= 0 {
		deps.AnimationDelay = 700 * time.Millisecond
	}
	m := Model{
		Screen: ScreenCoach,
		Cursor: -1,
		Keys: GlobalKeyMap{
			Today:   "t",
			Palette: "/",
			Help:    "?",
			Quit:    "q",
		},
		Width:     80,
		Height:    30,
		coach:     deps.Coach,
		completer: deps.Completer,
		bridge:    deps.Bridge,
		clock:     deps.Clock,
		logger:    deps.Logger.Named("tui"),
		ctx:       ctx,
		animDelay: deps.AnimationDelay,
		markdown:  deps.Markdown,
	}
	if deps.Coach != nil {
		m.State = deps.Coach.State()
	}
	m.initBubbleComponents()
	m.syncViewport()
	return m
}

func (m *Model) initBubbleComponents() {
	m.viewport = viewport.New(m.Width, m.bodyHeight())

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 128
	m.commandInput.Width = 48

	m.loadSpinner = spinner.New()
	m.loadSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m Model) bodyHeight() int {
	h := m.Height - 8
	if h < 5 {
		h = 5
	}
	return h
}
