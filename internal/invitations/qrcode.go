package invitations

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/porteria/visitas-app/internal/models"
)

// CodeKind classifies the outcome of code resolution.
type CodeKind int

const (
	// CodeUnavailable means no identifier exists to encode; the view must
	// show an explicit "no code" state, never a blank image.
	CodeUnavailable CodeKind = iota
	// CodeServerImage is a pre-rendered payload supplied by the service,
	// displayed verbatim.
	CodeServerImage
	// CodeGenerated is a client-side code encoding an identifier payload.
	CodeGenerated
)

// RenderableCode is the resolved scannable access code for one invitation.
type RenderableCode struct {
	Kind    CodeKind
	Image   string // server-supplied payload, set for CodeServerImage
	Payload string // encoded identifier, set for CodeGenerated
}

// codeSize matches the rendering size the mobile app uses.
const codeSize = 200

// ShowCode resolves the scannable code for inv and marks it as the selected
// invitation. When the list entry carries no server code, one detail fetch
// by id is attempted and its record, if any, replaces the list entry
// entirely (the detail response is the more authoritative of the two). A
// failed detail fetch is deliberately swallowed: a client-generated fallback
// exists whenever any identifier does, so surfacing the error would only be
// noise.
func (c *Controller) ShowCode(ctx context.Context, inv models.Invitation) RenderableCode {
	if inv.QRCode == "" && !inv.ID.IsZero() {
		detail, err := c.svc.GetInvitation(ctx, inv.ID)
		if err != nil {
			c.log.Debug("detail fetch failed, generating code locally",
				"id", inv.ID.String(), "error", err)
		} else if detail != nil {
			inv = *detail
		}
	}

	c.mu.Lock()
	selected := inv
	c.selected = &selected
	c.mu.Unlock()

	return ResolveCode(inv)
}

// ResolveCode derives the renderable code for an invitation without any
// network access: the server code verbatim when present, else a generated
// code from id then accessId, else unavailable.
func ResolveCode(inv models.Invitation) RenderableCode {
	if inv.QRCode != "" {
		return RenderableCode{Kind: CodeServerImage, Image: inv.QRCode}
	}
	payload := inv.ID.String()
	if payload == "" {
		payload = inv.AccessID
	}
	if payload == "" {
		return RenderableCode{Kind: CodeUnavailable}
	}
	return RenderableCode{Kind: CodeGenerated, Payload: payload}
}

// CodePNG renders a payload as a PNG QR image. Medium error correction,
// same as the codes the service renders itself.
func CodePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, codeSize)
}

// CodeTerminal renders a payload as a half-block QR string suitable for
// direct terminal display.
func CodeTerminal(payload string) (string, error) {
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding %q: %w", payload, err)
	}
	return qr.ToSmallString(false), nil
}

// CodeImage returns the resolved code as PNG bytes: the server image is
// decoded (data-URI or bare base64), a generated code is rendered locally.
func CodeImage(code RenderableCode) ([]byte, error) {
	switch code.Kind {
	case CodeServerImage:
		payload := code.Image
		if i := strings.Index(payload, "base64,"); i >= 0 {
			payload = payload[i+len("base64,"):]
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding server code: %w", err)
		}
		return data, nil
	case CodeGenerated:
		return CodePNG(code.Payload)
	default:
		return nil, errors.New("no code available")
	}
}
