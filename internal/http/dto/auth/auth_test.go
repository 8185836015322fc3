package auth

import (
	"encoding/json"
	"testing"

	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

func TestRoleInput(t *testing.T) {
	cases := map[string]types.Role{
		`{"role":3}`:        types.RoleEditor,
		`{"role":"admin"}`:  types.RoleAdmin,
		`{"role":"4"}`:      types.RoleAdmin,
		`{"role":"wizard"}`: 0,
		`{}`:                0,
	}
	for in, want := range cases {
		var req CreateUserRequest
		if err := json.Unmarshal([]byte(in), &req); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if types.Role(req.Role) != want {
			t.Fatalf("%s: got %d want %d", in, req.Role, want)
		}
	}

	var req CreateUserRequest
	if err := json.Unmarshal([]byte(`{"role":true}`), &req); err == nil {
		t.Fatalf("expected error for boolean role")
	}
}
