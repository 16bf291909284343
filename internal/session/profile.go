package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Role is the label the backend attaches to a user. Name drives menu visibility.
type Role struct {
	ID   string `json:"_id"`
	Name string `json:"nombre"`
}

// UserProfile is the authenticated user as the backend describes it. Fields the console
// does not interpret are kept in Extra and written back untouched.
type UserProfile struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role
	Extra       map[string]any
}

const (
	fieldID    = "_id"
	fieldName  = "nombre"
	fieldEmail = "correoPrincipal"
	fieldRole  = "rol"
)

// HasRole reports whether the profile carries exactly the given role name.
func (u *UserProfile) HasRole(name string) bool {
	return u != nil && u.Role.Name != "" && u.Role.Name == name
}

// Clone returns a copy that shares nothing mutable at the top level with u.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = maps.Clone(u.Extra)
	}
	return &c
}

func (u UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		out[k] = v
	}
	out[fieldID] = u.ID
	out[fieldName] = u.DisplayName
	out[fieldEmail] = u.Email
	out[fieldRole] = u.Role
	return json.Marshal(out)
}

func (u *UserProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user profile: expected object")
	}

	var p UserProfile
	for key, value := range raw {
		var err error
		switch key {
		case fieldID:
			err = decodeString(value, &p.ID)
		case fieldName:
			err = decodeString(value, &p.DisplayName)
		case fieldEmail:
			err = decodeString(value, &p.Email)
		case fieldRole:
			p.Role, err = decodeRole(value)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			if err == nil {
				if p.Extra == nil {
					p.Extra = make(map[string]any)
				}
				p.Extra[key] = v
			}
		}
		if err != nil {
			return fmt.Errorf("user profile %s: %w", key, err)
		}
	}

	*u = p
	return nil
}

func decodeString(value json.RawMessage, dst *string) error {
	if isNull(value) {
		*dst = ""
		return nil
	}
	return json.Unmarshal(value, dst)
}

// decodeRole accepts a populated role object or a bare role id.
func decodeRole(value json.RawMessage) (Role, error) {
	var role Role
	if isNull(value) {
		return role, nil
	}
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		err := json.Unmarshal(trimmed, &role.ID)
		return role, err
	}
	err := json.Unmarshal(trimmed, &role)
	return role, err
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
