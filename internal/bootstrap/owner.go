// Package bootstrap crea el owner inicial cuando la base está vacía.
package bootstrap

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
)

// Seeder es la parte del core que usa el bootstrap. *auth.Manager lo implementa.
type Seeder interface {
	SeedOwner(ctx context.Context, email, plain string) (*auth.UserView, error)
	ValidatePassword(plain string) error
}

// OwnerBootstrapConfig configura CheckAndCreateOwner.
type OwnerBootstrapConfig struct {
	Users  repository.UserStore
	Seeder Seeder

	SkipPrompt    bool   // no interactivo: requiere OwnerEmail y OwnerPassword
	OwnerEmail    string // opcional, precarga el prompt
	OwnerPassword string

	In  io.Reader // default os.Stdin
	Out io.Writer // default os.Stdout
	// ReadPassword lee sin eco. Default: term.ReadPassword sobre stdin.
	ReadPassword func() ([]byte, error)
}

// ErrNoTerminal se devuelve cuando hace falta el prompt y stdin no es una TTY.
var ErrNoTerminal = errors.New("bootstrap: stdin is not a terminal")

// CheckAndCreateOwner crea el owner si no existe ninguno. Devuelve (nil, nil)
// si ya había uno.
func CheckAndCreateOwner(ctx context.Context, cfg OwnerBootstrapConfig) (*auth.UserView, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	exists, err := ShouldSkip(ctx, cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing owner: %w", err)
	}
	if exists {
		fmt.Fprintln(out, "Owner user detected. Skipping bootstrap.")
		return nil, nil
	}

	email, password := strings.TrimSpace(cfg.OwnerEmail), cfg.OwnerPassword
	if cfg.SkipPrompt {
		if email == "" || password == "" {
			return nil, errors.New("SkipPrompt=true requires OwnerEmail and OwnerPassword")
		}
	} else {
		fmt.Fprintln(out, "No owner user found. Let's create the first one.")
		if email, password, err = promptOwnerCredentials(cfg, out); err != nil {
			return nil, fmt.Errorf("failed to prompt owner credentials: %w", err)
		}
	}

	u, err := cfg.Seeder.SeedOwner(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	fmt.Fprintf(out, "Owner created with ID %d (%s)\n", u.ID, u.Email)
	return u, nil
}

// ShouldSkip reporta si ya existe un owner.
func ShouldSkip(ctx context.Context, users repository.UserStore) (bool, error) {
	return users.ExistsWhere(ctx, repository.UserPredicate{Role: types.RoleOwner})
}

func promptOwnerCredentials(cfg OwnerBootstrapConfig, out io.Writer) (email, password string, err error) {
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	readPassword := cfg.ReadPassword
	if readPassword == nil {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", "", ErrNoTerminal
		}
		readPassword = func() ([]byte, error) { return term.ReadPassword(fd) }
	}

	email = strings.TrimSpace(cfg.OwnerEmail)
	if email == "" {
		fmt.Fprint(out, "Owner Email: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", errors.New("email cannot be empty")
	}

	fmt.Fprint(out, "Owner Password: ")
	pw, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return "", "", err
	}
	if err := cfg.Seeder.ValidatePassword(string(pw)); err != nil {
		return "", "", err
	}

	fmt.Fprint(out, "Confirm Password: ")
	confirm, err := readPassword()
	fmt.Fprintln(out)
	if err != nil {
		return "", "", err
	}
	if string(pw) != string(confirm) {
		return "", "", errors.New("passwords do not match")
	}
	return email, string(pw), nil
}
