// Package notify is the notification surface: a fire-and-forget channel for
// surfacing operation outcomes to whoever is presenting them (a toast in the
// TUI, a log line in headless use). Presentation is the caller's business.
package notify

// Severity mirrors the toast colors of the mobile app.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Notifier surfaces a message to the user. Implementations must not block.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts an ordinary function to the Notifier interface.
type Func func(message string, severity Severity)

func (f Func) Notify(message string, severity Severity) { f(message, severity) }

// Discard drops every notification. Used in tests and headless wiring.
var Discard Notifier = Func(func(string, Severity) {})
