// Package adminapi exposes the admin HTTP surface: settings read/write and
// a live alert stream for connected admin clients.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sipeed/chatwarden/pkg/hooks"
	"github.com/sipeed/chatwarden/pkg/logger"
	"github.com/sipeed/chatwarden/pkg/notify"
	"github.com/sipeed/chatwarden/pkg/settings"
	"github.com/sipeed/chatwarden/pkg/store"
)

// Server serves the admin settings API and the hook invocation surface.
type Server struct {
	store      store.Store
	resolver   *settings.Resolver
	feed       *notify.Feed
	dispatcher *hooks.Dispatcher

	server *http.Server
	addr   string
}

func NewServer(addr string, st store.Store, resolver *settings.Resolver, feed *notify.Feed, dispatcher *hooks.Dispatcher) *Server {
	return &Server{
		store:      st,
		resolver:   resolver,
		feed:       feed,
		dispatcher: dispatcher,
		addr:       addr,
	}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/hooks/", s.handleHook)
	mux.HandleFunc("/alerts/stream", s.handleAlertStream)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start runs the HTTP server until Stop.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	logger.InfoCF("adminapi", "Starting admin HTTP server", map[string]any{"addr": s.addr})
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.resolver.Resolve())
	case http.MethodPut:
		s.putSettings(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

// putSettings accepts a partial settings mapping, string-encodes it for the
// store, persists it, and refreshes the resolver snapshot.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("decode settings body: %w", err))
		return
	}

	encoded, err := encodePartial(partial)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.Set(settings.Namespace, encoded); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("persist settings: %w", err))
		return
	}

	s.resolver.Refresh()
	logger.InfoCF("adminapi", "Settings saved", map[string]any{"keys": len(encoded)})
	writeJSON(w, http.StatusOK, s.resolver.Resolve())
}

// encodePartial converts a JSON settings body into the string-valued store
// form: arrays as JSON text, booleans as "true"/"false", numbers in
// decimal.
func encodePartial(partial map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(partial))
	for key, val := range partial {
		switch v := val.(type) {
		case string:
			out[key] = v
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = strconv.FormatInt(int64(v), 10)
		case nil:
			out[key] = ""
		case []any:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode setting %s: %w", key, err)
			}
			out[key] = string(b)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode setting %s: %w", key, err)
			}
			out[key] = string(b)
		}
	}
	return out, nil
}

// handleHook dispatches one hook invocation from the host. Permission
// rejections come back as 403 with the configured message; infrastructure
// errors as 500.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	kind := hooks.Kind(strings.TrimPrefix(r.URL.Path, "/hooks/"))
	if !hooks.IsKnownKind(kind) {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown hook kind %q", kind))
		return
	}

	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("decode hook body: %w", err))
		return
	}

	result := s.dispatcher.Dispatch(r.Context(), kind, raw)
	switch result.Status {
	case hooks.StatusOK:
		writeJSON(w, http.StatusOK, map[string]any{
			"data":     result.Data,
			"metadata": result.Metadata,
		})
	case hooks.StatusRejected:
		writeJSON(w, http.StatusForbidden, map[string]string{"error": result.Message})
	default:
		writeError(w, http.StatusInternalServerError, result.Err)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The admin surface is bound to loopback or fronted by the host's
	// auth layer; origin checks belong there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleAlertStream upgrades to a WebSocket and forwards dispatched alerts
// until the client disconnects.
func (s *Server) handleAlertStream(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("alert feed not configured"))
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF("adminapi", "Alert stream upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	alertCh, cancel := s.feed.Subscribe()
	defer cancel()
	defer conn.Close()

	// Reader goroutine: the client sends nothing meaningful, but reading
	// is what surfaces a disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case alert, ok := <-alertCh:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(alert); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger.ErrorCF("adminapi", "Request failed", map[string]any{"error": err.Error()})
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
