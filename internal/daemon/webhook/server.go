// Package webhook implements the authenticated localhost HTTP listener
// the external notifier posts reminders to.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/daylit-io/daylit-tray/internal/daemon/lockfile"
	"github.com/daylit-io/daylit-tray/internal/daemon/state"
	"github.com/daylit-io/daylit-tray/internal/models"
)

// SecretHeader carries the shared secret on every webhook request.
const SecretHeader = "X-Daylit-Secret"

// maxBodyBytes bounds the request body read. The payload text itself is
// capped at 4 KiB; this leaves generous room for JSON framing.
const maxBodyBytes = 64 * 1024

// Presenter receives accepted payloads for display. Satisfied by
// ui.Presenter; tests substitute a fake.
type Presenter interface {
	Present(payload models.WebhookPayload) error
}

// Server is the webhook listener. It binds 127.0.0.1 on an
// OS-chosen port and serves requests one at a time in arrival order.
type Server struct {
	listener  net.Listener
	httpSrv   *http.Server
	port      int
	state     *state.AppState
	presenter Presenter

	// Serializes request processing so the last-payload slot and the UI
	// hand-off observe requests in arrival order.
	mu sync.Mutex
}

// New binds the listener, generates the per-run secret, publishes the
// rendezvous lockfile, and fills the shared state slots. Any failure
// leaves nothing running: the caller logs it and the rest of the process
// continues without a webhook endpoint.
func New(st *state.AppState, presenter Presenter) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind webhook listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	secret, err := NewSecret()
	if err != nil {
		listener.Close()
		return nil, err
	}
	st.SetSecret(secret)

	dir, err := lockfile.Dir(st.Settings())
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to resolve lockfile directory: %w", err)
	}
	path, err := lockfile.Write(dir, models.NewLockInfo(port, os.Getpid(), secret))
	if err != nil {
		listener.Close()
		return nil, err
	}
	st.SetLockfilePath(path)

	s := &Server{
		listener:  listener,
		port:      port,
		state:     st,
		presenter: presenter,
	}
	s.httpSrv = &http.Server{Handler: http.HandlerFunc(s.handle)}
	return s, nil
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// Serve blocks serving requests until Close is called.
func (s *Server) Serve() error {
	err := s.httpSrv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the listener immediately. In-flight requests are abandoned;
// inputs are local-only so nothing is owed to them at shutdown.
func (s *Server) Close() error {
	return s.httpSrv.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The path is ignored; only the method and headers matter.
	if r.Method != http.MethodPost {
		respond(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if !secretEqual(r.Header.Get(SecretHeader), s.state.Secret()) {
		log.Printf("Unauthorized webhook request: missing or invalid %s header", SecretHeader)
		respond(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Printf("Failed to read webhook request body: %v", err)
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Failed to parse webhook payload: %v", err)
		respond(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := payload.Validate(); err != nil {
		log.Printf("Rejected webhook payload: %v", err)
		respond(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	s.state.SetPayload(payload)

	// A hand-off failure does not fail the request; the accept step
	// already succeeded.
	if err := s.presenter.Present(payload); err != nil {
		log.Printf("Failed to submit notification to UI: %v", err)
	}

	respond(w, http.StatusOK, "Notification triggered")
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		log.Printf("Failed to write webhook response: %v", err)
	}
}
