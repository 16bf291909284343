package backoffice

import (
	"context"

	"castella/internal/navigation"
	"castella/internal/session"
)

// ListTechnicians returns the users holding the technician role.
func (s *Service) ListTechnicians(ctx context.Context) ([]Person, error) {
	raw, err := s.api.Get(ctx, "/usuarios-rol/"+seg(navigation.RoleTechnician))
	if err != nil {
		return []Person{}, err
	}
	return decodeList[Person](raw, []string{"usuarios"}, nil).Items, nil
}

// ListRoles returns the roles a user can be given.
func (s *Service) ListRoles(ctx context.Context) ([]session.Role, error) {
	raw, err := s.api.Get(ctx, "/rols/")
	if err != nil {
		return []session.Role{}, err
	}
	return decodeList[session.Role](raw, []string{"roles"}, nil).Items, nil
}
