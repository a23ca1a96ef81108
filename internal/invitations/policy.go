package invitations

import "github.com/porteria/visitas-app/internal/models"

// Affordances is what the view may show and offer for one invitation. Style
// and Icon are presentation tokens only; they carry no behavioral meaning
// and must not be used to gate actions.
type Affordances struct {
	Label     string
	Style     string
	Icon      string
	CanShowQR bool
	CanCancel bool
}

// Policy maps a status to its affordances. Total over the five lifecycle
// stages; anything unrecognized degrades to the raw value with a neutral
// icon and no QR or cancel action.
func Policy(status models.Status) Affordances {
	switch status {
	case models.StatusActive:
		return Affordances{
			Label:     "Active",
			Style:     "status-active",
			Icon:      "checkmark-circle",
			CanShowQR: true,
			CanCancel: true,
		}
	case models.StatusPending:
		return Affordances{
			Label:     "Pending",
			Style:     "status-pending",
			Icon:      "time-outline",
			CanShowQR: true,
			CanCancel: true,
		}
	case models.StatusExpired:
		return Affordances{
			Label: "Expired",
			Style: "status-expired",
			Icon:  "time-outline",
		}
	case models.StatusCancelled:
		return Affordances{
			Label: "Cancelled",
			Style: "status-cancelled",
			Icon:  "ban-outline",
		}
	case models.StatusUsed:
		return Affordances{
			Label: "Used",
			Style: "status-used",
			Icon:  "checkmark-circle",
		}
	default:
		return Affordances{
			Label: string(status),
			Style: "status-unknown",
			Icon:  "time-outline",
		}
	}
}

// CanRemove reports whether the remove action is offered. Removal is a
// list-membership action, available in every lifecycle state, so this is
// unconditionally true; it exists so the view asks policy questions in one
// place.
func CanRemove(models.Status) bool { return true }
