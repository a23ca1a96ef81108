package models

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle stage of an invitation. It is assigned by the
// service and is the only field that drives which actions the client offers.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
	StatusUsed      Status = "USED"
)

// Known reports whether s is one of the enumerated lifecycle stages. Unknown
// values are displayed raw, never rejected.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusPending, StatusExpired, StatusCancelled, StatusUsed:
		return true
	}
	return false
}

// ID is an invitation identifier. The service emits it as either a JSON
// string or a number depending on the endpoint; both decode to string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invitation id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invitation id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// Invitation is a time-boxed visitor access grant owned by the remote
// service. The client never constructs or mutates one locally; records enter
// only through list or detail responses and are replaced wholesale.
//
// Wire names are the service's own (Spanish) field names. Timestamp fields
// stay strings: the service mixes nulls, empty strings and ISO-8601 values,
// and the client only ever formats them for display.
type Invitation struct {
	ID          ID              `json:"id"`
	AccessID    string          `json:"idAcceso"`
	GuestName   string          `json:"nombreInvitado"`
	GuestTaxID  string          `json:"rutInvitado"`
	GuestEmail  string          `json:"correoInvitado"`
	GuestPhone  string          `json:"telefonoInvitado"`
	Reason      string          `json:"motivo"`
	ValidFrom   string          `json:"fechaInicio"`
	ValidTo     string          `json:"fechaFin"`
	RoomID      *int            `json:"idSala"`
	RoomLabel   string          `json:"sala"`
	Status      Status          `json:"status"`
	UsageLimit  int             `json:"usageLimit"`
	UsedCount   int             `json:"usedCount"`
	QRCode      string          `json:"qrCode"`
	CreatedAt   string          `json:"fechaCreacion"`
	CancelledAt json.RawMessage `json:"cancelledAt,omitempty"`
}
