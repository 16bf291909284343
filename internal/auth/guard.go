package auth

import "castella/internal/session"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// Decision is the outcome of evaluating the guard for one navigation.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// SessionReader exposes a consistent view of the current session.
type SessionReader interface {
	Snapshot() session.Session
}

// Guard lets visitors holding a token through and redirects everyone else to the login
// path. It keeps no state of its own; the requested path is not remembered.
type Guard struct {
	loginPath string
	public    map[string]struct{}
}

// NewGuard builds a guard redirecting to loginPath. loginPath and any extra public paths
// are reachable without a token.
func NewGuard(loginPath string, public ...string) Guard {
	if loginPath == "" {
		loginPath = LoginPath
	}
	g := Guard{loginPath: loginPath, public: map[string]struct{}{loginPath: {}}}
	for _, p := range public {
		g.public[p] = struct{}{}
	}
	return g
}

// LoginPath returns the redirect target.
func (g Guard) LoginPath() string {
	return g.loginPath
}

// Evaluate decides whether path may be rendered for sess.
func (g Guard) Evaluate(sess session.Session, path string) Decision {
	if _, ok := g.public[path]; ok {
		return Decision{Allow: true}
	}
	if sess.Authenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: g.loginPath}
}

// Check evaluates the guard against the reader's current snapshot.
func (g Guard) Check(r SessionReader, path string) Decision {
	return g.Evaluate(r.Snapshot(), path)
}
