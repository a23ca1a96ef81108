package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porteria/visitas-app/internal/config"
	"github.com/porteria/visitas-app/internal/logger"
	"github.com/porteria/visitas-app/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{APIBaseURL: srv.URL, HTTPTimeout: 5 * time.Second}
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestListInvitationsDecodesList(t *testing.T) {
	var gotPath, gotQuery, gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("userId")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"success":true,"data":[
			{"id":1,"nombreInvitado":"Ana","status":"ACTIVE","idSala":null,"qrCode":null},
			{"id":"b-2","nombreInvitado":"Luis","status":"USED"}
		]}`))
	}))

	list, err := client.ListInvitations(context.Background(), "12345678")
	require.NoError(t, err)

	assert.Equal(t, "/invitations", gotPath)
	assert.Equal(t, "12345678", gotQuery)
	assert.NotEmpty(t, gotRequestID)
	require.Len(t, list, 2)
	assert.Equal(t, models.ID("1"), list[0].ID)
	assert.Equal(t, models.StatusActive, list[0].Status)
	assert.Equal(t, models.ID("b-2"), list[1].ID)
}

func TestListInvitationsServerFailureFlag(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"user not found"}`))
	}))

	_, err := client.ListInvitations(context.Background(), "u")
	require.Error(t, err)
	assert.Equal(t, "user not found", RemoteMessage(err))
}

func TestListInvitationsMalformedSuccessIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"data missing", `{"success":true}`},
		{"data null", `{"success":true,"data":null}`},
		{"data is an object", `{"success":true,"data":{"oops":1}}`},
		{"no flag, no data", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			list, err := client.ListInvitations(context.Background(), "u")
			require.NoError(t, err, "malformed success degrades to empty, not to an error")
			assert.Empty(t, list)
			assert.NotNil(t, list)
		})
	}
}

func TestListInvitationsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on
	cfg := &config.Config{APIBaseURL: srv.URL, HTTPTimeout: time.Second}
	client := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.ListInvitations(context.Background(), "u")
	require.Error(t, err)
	assert.Empty(t, RemoteMessage(err))
}

func TestGetInvitationReturnsDetailRecord(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invitations/42", r.URL.Path)
		w.Write([]byte(`{"success":true,"data":{"id":42,"nombreInvitado":"Ana","status":"ACTIVE","qrCode":"data:image/png;base64,AAAA"}}`))
	}))

	inv, err := client.GetInvitation(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), inv.ID)
	assert.Equal(t, "data:image/png;base64,AAAA", inv.QRCode)
}

func TestGetInvitationFailureFlag(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))

	_, err := client.GetInvitation(context.Background(), "42")
	assert.Error(t, err)
}

func TestCancelInvitationSendsActor(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invitations/7/cancel", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"success":true}`))
	}))

	require.NoError(t, client.CancelInvitation(context.Background(), "7", "12345678"))
	assert.Equal(t, "12345678", gotBody["cancelledBy"])
}

func TestCancelInvitationServerRejection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"already used"}`))
	}))

	err := client.CancelInvitation(context.Background(), "7", "u")
	require.Error(t, err)
	assert.Equal(t, "already used", RemoteMessage(err))
}

func TestDeleteInvitation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/invitations/9", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	}))

	assert.NoError(t, client.DeleteInvitation(context.Background(), "9"))
}

func TestLoginStoresBearerToken(t *testing.T) {
	var sawAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mobile/auth/login":
			w.Write([]byte(`{"username":"Ana Rojas","userrol":"resident","passTemp":0,"token":"tok-123"}`))
		default:
			sawAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"success":true,"data":[]}`))
		}
	}))

	resp, err := client.Login(context.Background(), "12.345.678-5", "Ana Rojas")
	require.NoError(t, err)
	assert.Equal(t, "Ana Rojas", resp.Username)

	_, err = client.ListInvitations(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", sawAuth)
}

func TestRequestLogsThroughContextLogger(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	var buf bytes.Buffer
	ctxLogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logger.WithContext(context.Background(), ctxLogger)

	_, err := client.ListInvitations(ctx, "u")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "/invitations")
}

func TestLoginForbiddenCarriesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"credentials do not match"}`))
	}))

	_, err := client.Login(context.Background(), "u", "p")
	require.Error(t, err)
	assert.Equal(t, "credentials do not match", RemoteMessage(err))
}
