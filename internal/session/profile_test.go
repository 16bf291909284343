package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    UserProfile
		wantErr bool
	}{
		{
			name:  "populated role",
			input: `{"_id":"1","nombre":"Ana","correoPrincipal":"ana@x.test","rol":{"_id":"r","nombre":"ADMINISTRADOR"}}`,
			want:  UserProfile{ID: "1", DisplayName: "Ana", Email: "ana@x.test", Role: Role{ID: "r", Name: "ADMINISTRADOR"}},
		},
		{
			name:  "role as bare id",
			input: `{"_id":"1","rol":"r-9"}`,
			want:  UserProfile{ID: "1", Role: Role{ID: "r-9"}},
		},
		{
			name:  "null role",
			input: `{"_id":"1","rol":null}`,
			want:  UserProfile{ID: "1"},
		},
		{
			name:  "unknown fields kept",
			input: `{"_id":"1","celular":"099","estado":{"activo":true}}`,
			want: UserProfile{ID: "1", Extra: map[string]any{
				"celular": "099",
				"estado":  map[string]any{"activo": true},
			}},
		},
		{
			name:    "array is not a profile",
			input:   `[1,2]`,
			wantErr: true,
		},
		{
			name:    "null is not a profile",
			input:   `null`,
			wantErr: true,
		},
		{
			name:    "wrong id type",
			input:   `{"_id":42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got UserProfile
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserProfileMarshalKeepsExtra(t *testing.T) {
	u := UserProfile{ID: "1", DisplayName: "Ana", Role: Role{Name: "SUPERVISOR"}, Extra: map[string]any{"celular": "099"}}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, "099", generic["celular"])
	assert.Equal(t, "Ana", generic["nombre"])
	assert.Equal(t, map[string]any{"_id": "", "nombre": "SUPERVISOR"}, generic["rol"])
}

func TestHasRole(t *testing.T) {
	var nilUser *UserProfile
	assert.False(t, nilUser.HasRole("ADMINISTRADOR"))

	u := &UserProfile{Role: Role{Name: "SUPERVISOR"}}
	assert.True(t, u.HasRole("SUPERVISOR"))
	assert.False(t, u.HasRole("supervisor"))
	assert.False(t, (&UserProfile{}).HasRole(""))
}
