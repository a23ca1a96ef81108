package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/porteria/visitas-app/internal/invitations"
	"github.com/porteria/visitas-app/internal/logger"
	"github.com/porteria/visitas-app/internal/models"
	"github.com/porteria/visitas-app/internal/notify"
)

type listKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	ShowQR  key.Binding
	Cancel  key.Binding
	Remove  key.Binding
	New     key.Binding
	Save    key.Binding
	Close   key.Binding
	Quit    key.Binding
}

var listKeys = listKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Refresh: key.NewBinding(key.WithKeys("r")),
	ShowQR:  key.NewBinding(key.WithKeys("enter", "v")),
	Cancel:  key.NewBinding(key.WithKeys("c")),
	Remove:  key.NewBinding(key.WithKeys("d", "x")),
	New:     key.NewBinding(key.WithKeys("n")),
	Save:    key.NewBinding(key.WithKeys("s")),
	Close:   key.NewBinding(key.WithKeys("esc", "q")),
	Quit:    key.NewBinding(key.WithKeys("q")),
}

// createDestinationMessage points at the external surface where invitations
// are created; creation itself is not part of this client.
const createDestinationMessage = "Create invitations from the resident portal"

type listState struct {
	cursor       int
	showQR       bool
	code         invitations.RenderableCode
	codeTerminal string
	spin         spinner.Model
}

func newListState() listState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return listState{spin: s}
}

func (a *App) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.list.spin, cmd = a.list.spin.Update(msg)
		if a.controller.Loading() {
			return a, cmd
		}
		return a, nil

	case refreshDoneMsg, actionDoneMsg:
		a.clampCursor()
		return a, nil

	case codeResolvedMsg:
		a.list.showQR = true
		a.list.code = msg.code
		a.list.codeTerminal = msg.terminal
		return a, nil

	case codeSavedMsg:
		if msg.err != nil {
			a.log.Error("saving code image", "error", msg.err)
			return a, a.notifyCmd("Error saving QR image", notify.SeverityDanger)
		}
		return a, a.notifyCmd("QR image saved to "+msg.path, notify.SeveritySuccess)

	case tea.KeyMsg:
		if a.controller.PendingRemoval() != nil {
			return a.updateConfirm(msg)
		}
		if a.list.showQR {
			return a.updateQRModal(msg)
		}
		return a.updateListKeys(msg)
	}
	return a, nil
}

func (a *App) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.controller.Invitations()
	switch {
	case key.Matches(msg, listKeys.Up):
		if a.list.cursor > 0 {
			a.list.cursor--
		}
	case key.Matches(msg, listKeys.Down):
		if a.list.cursor < len(items)-1 {
			a.list.cursor++
		}
	case key.Matches(msg, listKeys.Refresh):
		return a, tea.Batch(a.refreshCmd(), a.list.spin.Tick)
	case key.Matches(msg, listKeys.ShowQR):
		if inv, ok := a.current(items); ok && invitations.Policy(inv.Status).CanShowQR {
			return a, tea.Batch(a.showCodeCmd(inv), a.list.spin.Tick)
		}
	case key.Matches(msg, listKeys.Cancel):
		if inv, ok := a.current(items); ok && invitations.Policy(inv.Status).CanCancel {
			return a, tea.Batch(a.cancelCmd(inv), a.list.spin.Tick)
		}
	case key.Matches(msg, listKeys.Remove):
		if inv, ok := a.current(items); ok && invitations.CanRemove(inv.Status) {
			a.controller.RequestRemoval(inv)
		}
	case key.Matches(msg, listKeys.New):
		// Creation lives in the resident portal; this client only points
		// the way there.
		return a, a.notifyCmd(createDestinationMessage, notify.SeverityWarning)
	case key.Matches(msg, listKeys.Quit):
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		return a, tea.Batch(a.confirmRemovalCmd(), a.list.spin.Tick)
	case "esc", "n":
		a.controller.CancelConfirmation()
	}
	return a, nil
}

func (a *App) updateQRModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, listKeys.Save):
		return a, a.saveCodeCmd(a.list.code)
	case key.Matches(msg, listKeys.Close):
		a.list.showQR = false
		a.list.codeTerminal = ""
		a.controller.ClearSelection()
	}
	return a, nil
}

func (a *App) current(items []models.Invitation) (models.Invitation, bool) {
	if len(items) == 0 || a.list.cursor < 0 || a.list.cursor >= len(items) {
		return models.Invitation{}, false
	}
	return items[a.list.cursor], true
}

func (a *App) clampCursor() {
	if n := len(a.controller.Invitations()); a.list.cursor >= n {
		a.list.cursor = n - 1
	}
	if a.list.cursor < 0 {
		a.list.cursor = 0
	}
}

// cmdContext is the context every remote command runs with: background
// lifetime plus the app logger, so request records carry operation scope.
func (a *App) cmdContext() context.Context {
	return logger.WithContext(context.Background(), a.log)
}

func (a *App) refreshCmd() tea.Cmd {
	user := a.session.UserID
	return func() tea.Msg {
		_ = a.controller.Load(a.cmdContext(), user)
		return refreshDoneMsg{}
	}
}

func (a *App) cancelCmd(inv models.Invitation) tea.Cmd {
	user := a.session.UserID
	return func() tea.Msg {
		_ = a.controller.Cancel(a.cmdContext(), inv, user)
		return actionDoneMsg{}
	}
}

func (a *App) confirmRemovalCmd() tea.Cmd {
	user := a.session.UserID
	return func() tea.Msg {
		_ = a.controller.ConfirmRemoval(a.cmdContext(), user)
		return actionDoneMsg{}
	}
}

func (a *App) showCodeCmd(inv models.Invitation) tea.Cmd {
	return func() tea.Msg {
		code := a.controller.ShowCode(a.cmdContext(), inv)
		var terminal string
		if code.Kind == invitations.CodeGenerated {
			if s, err := invitations.CodeTerminal(code.Payload); err == nil {
				terminal = s
			}
		}
		return codeResolvedMsg{code: code, terminal: terminal}
	}
}

func (a *App) saveCodeCmd(code invitations.RenderableCode) tea.Cmd {
	return func() tea.Msg {
		data, err := invitations.CodeImage(code)
		if err != nil {
			return codeSavedMsg{err: err}
		}
		path := fmt.Sprintf("invitation-qr-%s.png", time.Now().Format("20060102-150405"))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return codeSavedMsg{err: err}
		}
		return codeSavedMsg{path: path}
	}
}

func (a *App) viewList() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("My Invitations") + "\n")
	b.WriteString(subtitleStyle.Render("Manage your access invitations") + "\n")
	if a.controller.Loading() {
		b.WriteString(a.list.spin.View() + subtitleStyle.Render(" loading...") + "\n")
	}
	b.WriteString("\n")

	items := a.controller.Invitations()
	if len(items) == 0 {
		b.WriteString(emptyStyle.Render("You have no invitations yet") + "\n\n")
		b.WriteString("n: create invitation (opens in the resident portal)\n")
		b.WriteString(helpStyle.Render("r: refresh · q: quit") + "\n")
		return b.String()
	}

	for i, inv := range items {
		b.WriteString(a.renderCard(inv, i == a.list.cursor) + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓: move · enter: QR · c: cancel · d: remove · n: create · r: refresh · q: quit"))

	if a.controller.PendingRemoval() != nil {
		return b.String() + "\n\n" + a.viewConfirm()
	}
	if a.list.showQR {
		return b.String() + "\n\n" + a.viewQRModal()
	}
	return b.String()
}

func (a *App) renderCard(inv models.Invitation, selected bool) string {
	aff := invitations.Policy(inv.Status)
	badge := badgeStyle(aff.Style).Render(statusGlyph(aff.Icon) + " " + aff.Label)

	name := inv.GuestName
	if name == "" {
		name = "(unnamed guest)"
	}

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(name)+"  "+badge)
	if inv.GuestTaxID != "" {
		rows = append(rows, labelStyle.Render("RUT: ")+inv.GuestTaxID)
	}
	rows = append(rows, labelStyle.Render("Valid: ")+dateRange(inv.ValidFrom, inv.ValidTo))
	if inv.RoomLabel != "" {
		rows = append(rows, labelStyle.Render("Location: ")+inv.RoomLabel)
	}
	if inv.Reason != "" {
		rows = append(rows, labelStyle.Render("Reason: ")+inv.Reason)
	}
	rows = append(rows, labelStyle.Render("Uses: ")+fmt.Sprintf("%d / %d", inv.UsedCount, inv.UsageLimit))

	var actions []string
	if aff.CanShowQR {
		actions = append(actions, "enter: QR")
	}
	if aff.CanCancel {
		actions = append(actions, "c: cancel")
	}
	if !aff.CanShowQR {
		actions = append(actions, "QR not available")
	}
	actions = append(actions, "d: remove")
	rows = append(rows, helpStyle.Render(strings.Join(actions, " · ")))

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(strings.Join(rows, "\n"))
}

func (a *App) viewConfirm() string {
	staged := a.controller.PendingRemoval()
	if staged == nil {
		return ""
	}
	name := staged.GuestName
	if name == "" {
		name = "this guest"
	}
	body := lipgloss.NewStyle().Bold(true).Render("Remove invitation") + "\n\n" +
		fmt.Sprintf("Remove the invitation for %s?\n", name) +
		dangerTextStyle.Render("This action cannot be undone.") + "\n\n" +
		helpStyle.Render("enter: remove · esc: keep")
	return modalStyle.Render(body)
}

func (a *App) viewQRModal() string {
	selected := a.controller.Selected()
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("QR code") + "\n\n")

	switch a.list.code.Kind {
	case invitations.CodeGenerated:
		b.WriteString(a.list.codeTerminal + "\n")
		b.WriteString(subtitleStyle.Render("code: "+a.list.code.Payload) + "\n")
	case invitations.CodeServerImage:
		b.WriteString("The service supplied a rendered image.\n")
		b.WriteString(subtitleStyle.Render("press s to save it as PNG") + "\n")
	default:
		b.WriteString(dangerTextStyle.Render("QR code not available") + "\n")
	}

	if selected != nil {
		b.WriteString("\n" + selected.GuestName + "\n")
		if until := formatDate(selected.ValidTo); until != "" {
			b.WriteString(subtitleStyle.Render("Valid until: "+until) + "\n")
		}
	}
	b.WriteString("\n" + helpStyle.Render("s: save PNG · esc: close"))
	return modalStyle.Render(b.String())
}

func dateRange(from, to string) string {
	f, t := formatDate(from), formatDate(to)
	if f == "" {
		f = "—"
	}
	if t == "" {
		t = "—"
	}
	return f + " – " + t
}

// formatDate renders an ISO-8601 timestamp as dd-mm-yyyy hh:mm. Empty input
// stays empty; anything unparseable passes through raw rather than hiding
// the value.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Local().Format("02-01-2006 15:04")
}
