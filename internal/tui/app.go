// Package tui is the terminal front end: the login form, the invitation
// list with its QR modal and removal confirmation, and the toast surface.
// All lifecycle decisions live in internal/invitations; this package only
// renders affordances and forwards key presses.
package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/porteria/visitas-app/internal/api"
	"github.com/porteria/visitas-app/internal/config"
	"github.com/porteria/visitas-app/internal/invitations"
	"github.com/porteria/visitas-app/internal/notify"
	"github.com/porteria/visitas-app/internal/session"
)

type screen int

const (
	screenLogin screen = iota
	screenPassword
	screenList
)

const toastDuration = 2 * time.Second

type toastMsg struct {
	message  string
	severity notify.Severity
}

type toastExpiredMsg struct{ seq int }

type loginDoneMsg struct {
	session *session.Session
	err     error
}

type refreshDoneMsg struct{}

type actionDoneMsg struct{}

type codeResolvedMsg struct {
	code     invitations.RenderableCode
	terminal string
}

type codeSavedMsg struct {
	path string
	err  error
}

// App is the root model. Remote work runs in tea commands; their outcomes
// come back as messages, so model state is only ever touched in Update.
type App struct {
	cfg        *config.Config
	log        *slog.Logger
	client     *api.Client
	controller *invitations.Controller
	session    *session.Session

	active screen
	login  loginForm
	list   listState

	toastCh  chan toastMsg
	toast    *toastMsg
	toastSeq int

	width  int
	height int
}

// NewApp wires the controller to a channel-backed notifier so notifications
// raised inside commands surface as toast messages in the update loop.
func NewApp(cfg *config.Config, log *slog.Logger, client *api.Client) *App {
	toastCh := make(chan toastMsg, 8)
	notifier := notify.Func(func(message string, severity notify.Severity) {
		select {
		case toastCh <- toastMsg{message: message, severity: severity}:
		default:
			// Fire and forget: a full queue drops the toast, never blocks.
		}
	})

	return &App{
		cfg:        cfg,
		log:        log,
		client:     client,
		controller: invitations.NewController(client, notifier, log),
		active:     screenLogin,
		login:      newLoginForm(),
		list:       newListState(),
		toastCh:    toastCh,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.login.init(), a.listenForToasts())
}

func (a *App) listenForToasts() tea.Cmd {
	return func() tea.Msg {
		return <-a.toastCh
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case toastMsg:
		a.toast = &msg
		a.toastSeq++
		seq := a.toastSeq
		expire := tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})
		return a, tea.Batch(expire, a.listenForToasts())

	case toastExpiredMsg:
		// A newer toast supersedes the expiry of an older one.
		if msg.seq == a.toastSeq {
			a.toast = nil
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			// The user may dismiss the current toast early.
			if a.toast != nil {
				a.toast = nil
				return a, nil
			}
		}
	}

	switch a.active {
	case screenLogin:
		return a.updateLogin(msg)
	case screenPassword:
		return a.updatePassword(msg)
	default:
		return a.updateList(msg)
	}
}

func (a *App) View() string {
	var body string
	switch a.active {
	case screenLogin:
		body = a.viewLogin()
	case screenPassword:
		body = a.viewPassword()
	default:
		body = a.viewList()
	}
	return a.renderToast() + body
}

func (a *App) renderToast() string {
	if a.toast == nil {
		return "\n"
	}
	return toastStyle(a.toast.severity).Render(a.toast.message) + "\n"
}
