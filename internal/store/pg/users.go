package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

const uniqueViolation = "23505"

// UserRepo implementa repository.UserStore.
type UserRepo struct {
	db DBTX
}

var _ repository.UserStore = (*UserRepo)(nil)

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, role, twofa_secret, created_at`

func scanUser(row interface{ Scan(...any) error }) (*repository.User, error) {
	var (
		u      repository.User
		role   int
		secret sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &secret, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	if secret.Valid {
		s := secret.String
		u.TwoFASecret = &s
	}
	return &u, nil
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (*repository.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// FindByEmail compara sin distinguir mayúsculas; el índice único
// users_email_lower_key cubre lower(email).
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return r.findOne(ctx, `lower(email) = lower($1)`, email)
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *UserRepo) Insert(ctx context.Context, in repository.CreateUserInput) (int64, error) {
	query :=
		`INSERT INTO users (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query, in.Email, in.PasswordHash, int(in.Role)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *UserRepo) UpdateFields(ctx context.Context, id int64, f repository.UserFields) (int64, error) {
	if f.IsEmpty() {
		return 0, nil
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.PasswordHash != nil {
		add("password_hash", *f.PasswordHash)
	}
	if f.Role != nil {
		add("role", int(*f.Role))
	}
	switch {
	case f.ClearTwoFASecret:
		sets = append(sets, "twofa_secret = NULL")
	case f.TwoFASecret != nil:
		add("twofa_secret", *f.TwoFASecret)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *UserRepo) ExistsWhere(ctx context.Context, p repository.UserPredicate) (bool, error) {
	var (
		conds []string
		args  []any
	)
	if p.Email != "" {
		args = append(args, p.Email)
		conds = append(conds, fmt.Sprintf("lower(email) = lower($%d)", len(args)))
	}
	if p.Role != 0 {
		args = append(args, int(p.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	query := `SELECT EXISTS (SELECT 1 FROM users`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += `)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
