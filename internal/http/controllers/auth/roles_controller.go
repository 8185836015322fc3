package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/efedauth/internal/domain/types"
	dto "github.com/dropDatabas3/efedauth/internal/http/dto/auth"
	"github.com/dropDatabas3/efedauth/internal/http/helpers"
)

// RolesController publica el catálogo de roles (cacheable).
type RolesController struct {
	body      []byte
	updatedAt time.Time
}

func NewRolesController(startedAt time.Time) *RolesController {
	resp := dto.RolesResponse{}
	for _, r := range types.AllRoles() {
		resp.Roles = append(resp.Roles, dto.RoleItem{ID: r, Name: r.Name()})
	}
	b, _ := json.Marshal(resp)
	return &RolesController{body: b, updatedAt: startedAt.UTC().Truncate(time.Second)}
}

// List maneja GET /api/roles.
func (c *RolesController) List(w http.ResponseWriter, r *http.Request) {
	helpers.WriteCached(w, r, "application/json; charset=utf-8", c.body, c.updatedAt, helpers.DefaultMaxAge)
}
