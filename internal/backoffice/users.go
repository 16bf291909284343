package backoffice

import (
	"context"
	"strings"

	"castella/internal/session"
)

func (s *Service) ListUsers(ctx context.Context, page int) (Page[session.UserProfile], error) {
	raw, err := s.api.Get(ctx, "/usuarios/"+pageNumber(page))
	if err != nil {
		return emptyPage[session.UserProfile](), err
	}
	return decodeList[session.UserProfile](raw, []string{"usuarios"}, nil), nil
}

// CreateUser registers a user and returns the refreshed page. New users need a password.
func (s *Service) CreateUser(ctx context.Context, in UserInput, page int) (Page[session.UserProfile], error) {
	if err := validateUser(in); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	if in.Password == "" {
		return emptyPage[session.UserProfile](), invalid("password is required")
	}
	if _, err := s.api.Post(ctx, "/registrar", in); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	return s.ListUsers(ctx, page)
}

// UpdateUser edits a user; an empty password keeps the current one.
func (s *Service) UpdateUser(ctx context.Context, id string, in UserInput, page int) (Page[session.UserProfile], error) {
	if err := requireID("user", id); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	if err := validateUser(in); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	if _, err := s.api.Put(ctx, "/usuario/"+seg(id), in); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	return s.ListUsers(ctx, page)
}

func (s *Service) DeleteUser(ctx context.Context, id string, page int) (Page[session.UserProfile], error) {
	if err := requireID("user", id); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	if _, err := s.api.Delete(ctx, "/usuario/"+seg(id)); err != nil {
		return emptyPage[session.UserProfile](), err
	}
	return s.ListUsers(ctx, page)
}

func validateUser(in UserInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return invalid("name and email are required")
	}
	return requireID("role", in.RoleID)
}
