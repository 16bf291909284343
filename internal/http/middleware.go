package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"castella/internal/auth"
	"castella/internal/session"
	"castella/internal/storage"
)

// clientMiddleware identifies the client context from the console cookie, issuing a new
// client id when the cookie is missing, expired or forged.
func (s *Server) clientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientID := s.clientFromRequest(r)
		if clientID == "" {
			clientID = uuid.NewString()
			token, claims, err := s.jwt.Sign(time.Now(), clientID)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err)
				return
			}
			s.setConsoleCookie(w, token, claims.ExpiresAt.Time)
			ctx = auth.WithNewClient(ctx)
		}
		next.ServeHTTP(w, r.WithContext(auth.WithClientID(ctx, clientID)))
	})
}

func (s *Server) clientFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(s.cfg.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	claims, err := s.jwt.Parse(cookie.Value)
	if err != nil {
		return ""
	}
	return claims.ClientID
}

func (s *Server) rateLimitMiddleware() func(http.Handler) http.Handler {
	if s.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := "ip:" + clientIPAddress(r.RemoteAddr)
			if id := s.clientFromRequest(r); id != "" {
				key = "client:" + id
			}

			if !s.limiter.Allow(key, time.Now()) {
				s.writeError(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// sessionMiddleware hydrates a session store over the client's storage. Each request is a
// fresh page load, so nothing is shared between requests except storage. A client id issued
// by this request gets deferred storage, opened only if the request logs in.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := auth.ClientIDFromContext(r.Context())
		var st storage.Storage
		if auth.IsNewClient(r.Context()) {
			st = storage.NewDeferred(s.storage, clientID)
		} else {
			st = s.storage.Open(clientID)
		}
		store := session.NewStore(st, s.log.With(zap.String("client_id", clientID)))
		if err := store.Initialize(r.Context()); err != nil {
			s.log.Error("session storage unavailable", zap.String("client_id", clientID), zap.Error(err))
			s.writeError(w, http.StatusServiceUnavailable, errors.New("session storage unavailable"))
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithStore(r.Context(), store)))
	})
}

func (s *Server) guardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := auth.StoreFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, s.guard.LoginPath(), http.StatusFound)
			return
		}
		if decision := s.guard.Check(store, r.URL.Path); !decision.Allow {
			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// setConsoleCookie writes the console cookie. Over HTTPS the cookie is cross-site capable
// and partitioned.
func (s *Server) setConsoleCookie(w http.ResponseWriter, value string, expires time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.secureCookie {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:        s.cfg.SessionCookieName,
		Value:       value,
		Path:        "/",
		HttpOnly:    true,
		Secure:      s.secureCookie,
		SameSite:    sameSite,
		Expires:     expires,
		Partitioned: s.secureCookie,
	})
}

func storeFrom(r *http.Request) *session.Store {
	store, _ := auth.StoreFromContext(r.Context())
	return store
}
