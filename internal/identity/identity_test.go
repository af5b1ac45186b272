package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_GrantsAdmin(t *testing.T) {
	tests := []struct {
		name  string
		ident Identity
		want  bool
	}{
		{
			name: "no metadata",
			want: false,
		},
		{
			name:  "app metadata is_admin",
			ident: Identity{AppMetadata: map[string]interface{}{"is_admin": true}},
			want:  true,
		},
		{
			name:  "user metadata isAdmin",
			ident: Identity{UserMetadata: map[string]interface{}{"isAdmin": true}},
			want:  true,
		},
		{
			name:  "role admin",
			ident: Identity{AppMetadata: map[string]interface{}{"role": "admin"}},
			want:  true,
		},
		{
			name:  "role user",
			ident: Identity{AppMetadata: map[string]interface{}{"role": "user"}},
			want:  false,
		},
		{
			name:  "is_admin false",
			ident: Identity{AppMetadata: map[string]interface{}{"is_admin": false}},
			want:  false,
		},
		{
			name:  "is_admin wrong type",
			ident: Identity{AppMetadata: map[string]interface{}{"is_admin": "true"}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ident.GrantsAdmin())
		})
	}
}
