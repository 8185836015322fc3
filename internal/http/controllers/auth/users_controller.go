package auth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/efedauth/internal/domain/types"
	dto "github.com/dropDatabas3/efedauth/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/efedauth/internal/http/errors"
	"github.com/dropDatabas3/efedauth/internal/http/helpers"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

type UsersController struct {
	service Service
}

func NewUsersController(s Service) *UsersController {
	return &UsersController{service: s}
}

// Create maneja POST /api/auth/users. El techo de roles lo aplica el core.
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.users.create"))
	sess := requestSession(w, r)
	if sess == nil {
		return
	}

	var req dto.CreateUserRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.Role == 0 {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email, password and a valid role are required"))
		return
	}

	u, err := c.service.CreateUser(ctx, sess, req.Email, req.Password, types.Role(req.Role))
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusCreated, dto.UserResponse{User: u})
}

// Seed maneja POST /api/auth/seed: crea el owner inicial si no existe.
func (c *UsersController) Seed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.seed"))

	var req dto.SeedRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email and password are required"))
		return
	}

	u, err := c.service.SeedOwner(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, log)
		return
	}
	helpers.WriteNoStore(w, http.StatusCreated, dto.UserResponse{User: u})
}
