package bootstrap

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/store/memory"
)

func newDeps(t *testing.T) (*memory.UserStore, *auth.Manager) {
	t.Helper()
	clk := clock.NewManual(time.Unix(1_700_000_010, 0))
	users := memory.NewUserStore(clk)
	m := auth.NewManager(auth.Deps{
		Users:  users,
		Hasher: &password.Hasher{Algorithm: password.Bcrypt, BcryptCost: 4},
		Clock:  clk,
	})
	return users, m
}

// passwords devuelve un ReadPassword que entrega las respuestas en orden.
func passwords(answers ...string) func() ([]byte, error) {
	i := 0
	return func() ([]byte, error) {
		s := answers[i]
		i++
		return []byte(s), nil
	}
}

func TestCheckAndCreateOwner_Interactive(t *testing.T) {
	users, m := newDeps(t)
	var out bytes.Buffer

	u, err := CheckAndCreateOwner(context.Background(), OwnerBootstrapConfig{
		Users:        users,
		Seeder:       m,
		In:           strings.NewReader("owner@example.com\n"),
		Out:          &out,
		ReadPassword: passwords("correct-horse-battery", "correct-horse-battery"),
	})
	require.NoError(t, err)
	require.Equal(t, "owner", u.RoleName)
	require.Contains(t, out.String(), "Owner created with ID 1")

	// segunda corrida: ya hay owner
	out.Reset()
	u, err = CheckAndCreateOwner(context.Background(), OwnerBootstrapConfig{Users: users, Seeder: m, Out: &out})
	require.NoError(t, err)
	require.Nil(t, u)
	require.Contains(t, out.String(), "Skipping bootstrap")
}

func TestCheckAndCreateOwner_PromptErrors(t *testing.T) {
	users, m := newDeps(t)
	base := OwnerBootstrapConfig{Users: users, Seeder: m, Out: &bytes.Buffer{}}

	cfg := base
	cfg.In = strings.NewReader("owner@example.com\n")
	cfg.ReadPassword = passwords("correct-horse-battery", "something-else")
	_, err := CheckAndCreateOwner(context.Background(), cfg)
	require.ErrorContains(t, err, "passwords do not match")

	cfg = base
	cfg.In = strings.NewReader("owner@example.com\n")
	cfg.ReadPassword = passwords("short")
	_, err = CheckAndCreateOwner(context.Background(), cfg)
	require.ErrorIs(t, err, auth.ErrValidation)

	cfg = base
	cfg.In = strings.NewReader("\n")
	cfg.ReadPassword = passwords()
	_, err = CheckAndCreateOwner(context.Background(), cfg)
	require.ErrorContains(t, err, "email cannot be empty")

	exists, err := ShouldSkip(context.Background(), users)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCheckAndCreateOwner_SkipPrompt(t *testing.T) {
	users, m := newDeps(t)

	_, err := CheckAndCreateOwner(context.Background(), OwnerBootstrapConfig{Users: users, Seeder: m, SkipPrompt: true, Out: &bytes.Buffer{}})
	require.Error(t, err)

	u, err := CheckAndCreateOwner(context.Background(), OwnerBootstrapConfig{
		Users:         users,
		Seeder:        m,
		SkipPrompt:    true,
		OwnerEmail:    "owner@example.com",
		OwnerPassword: "correct-horse-battery",
		Out:           &bytes.Buffer{},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
}
