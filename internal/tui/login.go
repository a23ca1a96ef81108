package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/porteria/visitas-app/internal/api"
	"github.com/porteria/visitas-app/internal/notify"
	"github.com/porteria/visitas-app/internal/session"
	"github.com/porteria/visitas-app/internal/validation"
)

// loginForm is the RUT + full-name form. The "password" field carries the
// user's full name; that is the service's passwordless login contract.
type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
	busy     bool
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "RUT"
	username.CharLimit = 12
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Full name"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{username: username, password: password}
}

func (f loginForm) init() tea.Cmd {
	return textinput.Blink
}

func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		a.login.busy = false
		if msg.err != nil {
			a.log.Warn("login failed", "error", msg.err)
			return a, a.notifyCmd(loginFailureMessage(msg.err), notify.SeverityDanger)
		}
		a.session = msg.session
		if a.session.TempPassword {
			a.active = screenPassword
			return a, a.notifyCmd("Login successful, please update your password", notify.SeveritySuccess)
		}
		a.active = screenList
		return a, tea.Batch(
			a.notifyCmd("Login successful", notify.SeveritySuccess),
			a.refreshCmd(),
			a.list.spin.Tick,
		)

	case tea.KeyMsg:
		if a.login.busy {
			return a, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			a.login.focus = (a.login.focus + 1) % 2
			if a.login.focus == 0 {
				a.login.password.Blur()
				return a, a.login.username.Focus()
			}
			a.login.username.Blur()
			return a, a.login.password.Focus()

		case "enter":
			rut := a.login.username.Value()
			name := a.login.password.Value()
			if err := validation.ValidateRUT(rut); err != nil {
				return a, a.notifyCmd("Enter a valid RUT", notify.SeverityWarning)
			}
			if name == "" {
				return a, a.notifyCmd("Enter your full name", notify.SeverityWarning)
			}
			a.login.busy = true
			return a, a.loginCmd(rut, name)

		case "ctrl+p":
			// "Forgot your password?" destination of the mobile app.
			a.active = screenPassword
			return a, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.login.username, cmd = a.login.username.Update(msg)
	cmds = append(cmds, cmd)
	a.login.password, cmd = a.login.password.Update(msg)
	cmds = append(cmds, cmd)

	// Live-format the RUT while the user types, like the mobile form does.
	if formatted := session.FormatRUT(a.login.username.Value()); formatted != a.login.username.Value() {
		a.login.username.SetValue(formatted)
		a.login.username.CursorEnd()
	}
	return a, tea.Batch(cmds...)
}

func (a *App) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.client.Login(a.cmdContext(), username, password)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{session: session.New(username, resp)}
	}
}

// notifyCmd routes a toast through the same channel the controller uses, so
// ordering stays consistent.
func (a *App) notifyCmd(message string, severity notify.Severity) tea.Cmd {
	return func() tea.Msg {
		return toastMsg{message: message, severity: severity}
	}
}

func loginFailureMessage(err error) string {
	if msg := api.RemoteMessage(err); msg != "" {
		return msg
	}
	return "Error logging in"
}

func (a *App) viewLogin() string {
	s := "\n" + titleStyle.Render("Hello!") + "\n"
	s += subtitleStyle.Render("Enter your details to sign in") + "\n\n"
	s += a.login.username.View() + "\n"
	s += a.login.password.View() + "\n\n"
	if a.login.busy {
		s += subtitleStyle.Render("Signing in...") + "\n"
	}
	s += helpStyle.Render("tab: switch field · enter: sign in · ctrl+p: forgot password · ctrl+c: quit")
	return s
}

func (a *App) viewPassword() string {
	s := "\n" + titleStyle.Render("Passwordless access") + "\n\n"
	s += "Access uses only your RUT and your full name.\n"
	s += "No password is stored for your account.\n\n"
	s += helpStyle.Render("enter: continue · ctrl+c: quit")
	return s
}

func (a *App) updatePassword(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc":
			if a.session != nil {
				a.active = screenList
				return a, a.refreshCmd()
			}
			a.active = screenLogin
			return a, nil
		}
	}
	return a, nil
}
