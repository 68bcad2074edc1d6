package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPSender_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer k3y", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewHTTP(srv.URL, "k3y", "noreply@example.com")
	err := s.Send(context.Background(), Message{To: "ana@example.com", Subject: "hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.Equal(t, "noreply@example.com", got["from"])
	require.Equal(t, []any{"ana@example.com"}, got["to"])
}

func TestHTTPSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewHTTP(srv.URL, "wrong", "x@example.com").Send(context.Background(), Message{To: "a@b.c"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestBagAvailable_EscapesInput(t *testing.T) {
	m, err := BagAvailable("ana@example.com", "<b>Ana</b>", "Kelly 28")
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", m.To)
	require.Contains(t, m.Subject, "Kelly 28")
	require.Contains(t, m.HTML, "&lt;b&gt;Ana&lt;/b&gt;")
}

func TestLogSender(t *testing.T) {
	require.NoError(t, NewLog(zap.NewNop()).Send(context.Background(), Message{To: "a@b.c"}))
}
