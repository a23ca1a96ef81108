package api

import "errors"

// RemoteError is a server-reported logical failure: the request completed,
// but the service flagged it unsuccessful. Message, when set, is the
// service's human-readable explanation and is preferred over generic text.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "request rejected by service"
	}
	return e.Message
}

// RemoteMessage extracts the server-supplied failure message from err, or ""
// when err is a transport-level failure or carries no message.
func RemoteMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
