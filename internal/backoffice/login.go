package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"castella/internal/gateway"
	"castella/internal/session"
)

// ErrAuthentication matches every failed credential exchange.
var ErrAuthentication = errors.New("authentication failed")

// AuthenticationError carries the message to show next to the login form.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	if e.Message != "" {
		return "authentication failed: " + e.Message
	}
	return ErrAuthentication.Error()
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

func (e *AuthenticationError) Unwrap() error { return e.Cause }

func authFailure(cause error, fallback string) error {
	msg := gateway.Message(cause)
	if msg == "" {
		msg = fallback
	}
	return &AuthenticationError{Message: msg, Cause: cause}
}

// Credentials are what the operator types on the login form.
type Credentials struct {
	Email    string
	Password string
}

// SessionWriter records a successful login.
type SessionWriter interface {
	Login(ctx context.Context, user *session.UserProfile, token string) error
}

type loginRequest struct {
	Email    string `json:"correoPrincipal"`
	Password string `json:"contrasenia"`
	GetHash  bool   `json:"gethash,omitempty"`
}

// Authenticate runs the credential exchange. The backend hands out the token and the user
// profile from the same endpoint depending on the gethash flag, so it takes two calls.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (string, *session.UserProfile, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return "", nil, &AuthenticationError{Message: "email and password are required"}
	}

	tokenResp, err := s.api.Post(ctx, "/login", loginRequest{Email: email, Password: creds.Password, GetHash: true})
	if err != nil {
		return "", nil, authFailure(err, "")
	}
	token := extractToken(tokenResp)
	if token == "" {
		return "", nil, &AuthenticationError{Message: "token not found in response"}
	}

	userResp, err := s.api.Post(ctx, "/login", loginRequest{Email: email, Password: creds.Password})
	if err != nil {
		return "", nil, authFailure(err, "")
	}
	user, ok := extractUser(userResp)
	if !ok {
		return "", nil, &AuthenticationError{Message: "user profile not found in response"}
	}

	return token, user, nil
}

// Login authenticates and, only when both token and profile were obtained, records them.
// A failed exchange leaves the session untouched.
func (s *Service) Login(ctx context.Context, store SessionWriter, creds Credentials) (*session.UserProfile, error) {
	token, user, err := s.Authenticate(ctx, creds)
	if err != nil {
		s.log.Info("login rejected", zap.String("email", strings.TrimSpace(creds.Email)), zap.Error(err))
		return nil, err
	}
	if err := store.Login(ctx, user, token); err != nil {
		return nil, err
	}
	s.log.Info("login succeeded", zap.String("user_id", user.ID), zap.String("role", user.Role.Name))
	return user, nil
}

// extractToken accepts a bare string body, a string under data, or a string under token.
func extractToken(raw json.RawMessage) string {
	var bare string
	if json.Unmarshal(raw, &bare) == nil {
		return strings.TrimSpace(bare)
	}
	obj, ok := asObject(raw)
	if !ok {
		return ""
	}
	for _, key := range []string{"data", "token"} {
		if s, ok := stringField(obj, key); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// extractUser accepts the profile under data, under usuario, or as the body itself.
func extractUser(raw json.RawMessage) (*session.UserProfile, bool) {
	user, ok := decodeRecord[session.UserProfile](raw, "data", "usuario")
	if !ok {
		return nil, false
	}
	return &user, true
}
