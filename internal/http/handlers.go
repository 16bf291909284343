package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"castella/internal/auth"
	"castella/internal/backoffice"
	"castella/internal/gateway"
	"castella/internal/navigation"
	"castella/internal/session"
)

const maxBodyBytes = 1 << 20

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if storeFrom(r).Snapshot().Authenticated() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "fields": []string{"email", "password"}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := readLoginForm(w, r, &form); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	store := storeFrom(r)
	svc, ok := s.viewsFor(w, store)
	if !ok {
		return
	}
	user, err := svc.Login(r.Context(), store, backoffice.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"user": user,
		"menu": navigation.VisibleMenu(navigation.DefaultManifest(), user),
	})
}

// readLoginForm accepts a JSON body or a regular form post.
func readLoginForm(w http.ResponseWriter, r *http.Request, form *loginForm) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeBody(r, form)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse login form: %w", err)
	}
	form.Email = r.PostFormValue("email")
	form.Password = r.PostFormValue("password")
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := storeFrom(r).Logout(r.Context()); err != nil {
		s.log.Error("logout could not clear storage",
			zap.String("client_id", auth.ClientIDFromContext(r.Context())),
			zap.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, errors.New("logout could not clear stored session"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out", "redirect": auth.LoginPath})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := storeFrom(r).Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": snap.Authenticated(),
		"user":          snap.User,
	})
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	menu := navigation.VisibleMenu(navigation.DefaultManifest(), storeFrom(r).CurrentUser())
	s.writeJSON(w, http.StatusOK, map[string]any{"items": menu})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.latest(w, r, "dashboard", func(ctx context.Context, svc *backoffice.Service) (any, error) {
		overview, err := svc.Overview(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"overview": overview, "cards": backoffice.DashboardCards(overview)}, nil
	})
}

// viewsFor builds the resource views for the request's session.
func (s *Server) viewsFor(w http.ResponseWriter, store *session.Store) (*backoffice.Service, bool) {
	svc, err := s.services(store)
	if err != nil {
		s.log.Error("build backend client", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, errors.New("backend client unavailable"))
		return nil, false
	}
	return svc, true
}

// latest runs a read view under the client's in-flight slot for that view. A newer request
// for the same view from the same client cancels this one, which then answers 409.
func (s *Server) latest(w http.ResponseWriter, r *http.Request, view string, fetch func(context.Context, *backoffice.Service) (any, error)) {
	svc, ok := s.viewsFor(w, storeFrom(r))
	if !ok {
		return
	}

	key := auth.ClientIDFromContext(r.Context()) + ":" + view
	ctx, ticket := s.inflight.Begin(r.Context(), key)
	defer ticket.Done()

	result, err := fetch(ctx, svc)
	if !ticket.Current() {
		s.writeError(w, http.StatusConflict, gateway.ErrSuperseded)
		return
	}
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// run executes a view call that is not subject to supersession.
func (s *Server) run(w http.ResponseWriter, r *http.Request, status int, call func(context.Context, *backoffice.Service) (any, error)) {
	svc, ok := s.viewsFor(w, storeFrom(r))
	if !ok {
		return
	}
	result, err := call(r.Context(), svc)
	if err != nil {
		s.writeViewError(w, r, err)
		return
	}
	s.writeJSON(w, status, result)
}

var (
	errInvalidSchedule = fmt.Errorf("%w: fechaProgramada must be RFC 3339 or YYYY-MM-DDTHH:MM", backoffice.ErrInvalidInput)
	errInvalidDate     = fmt.Errorf("%w: fecha must be YYYY-MM-DD", backoffice.ErrInvalidInput)
)

func decodeBody(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", backoffice.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed request body: %v", backoffice.ErrInvalidInput, err)
	}
	return nil
}

// queryInt reads an optional integer query parameter; anything unparsable reads as zero.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
