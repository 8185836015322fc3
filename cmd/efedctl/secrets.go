package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/util/envfile"
)

// readSecret lee sin eco si stdin es una TTY; si no, la primera línea de in.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newHashPasswordCmd() *cobra.Command {
	var algo string
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hashear un password (lee de stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			h := password.NewHasher()
			h.Algorithm = password.Algorithm(algo)
			if cost > 0 {
				h.BcryptCost = cost
			}
			hash, err := h.Hash(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&algo, "algo", string(password.Argon2id), "argon2id|bcrypt")
	cmd.Flags().IntVar(&cost, "bcrypt-cost", 0, "costo bcrypt (default 12)")
	return cmd
}

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "key", Short: "Gestión de APP_KEY"}

	var write string
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generar un APP_KEY de 32 bytes",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := make([]byte, 32)
			if _, err := io.ReadFull(rand.Reader, raw); err != nil {
				return err
			}
			key := "base64:" + base64.StdEncoding.EncodeToString(raw)
			if write == "" {
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			}
			prev, err := envfile.Set(write, "APP_KEY", key)
			if err != nil {
				return err
			}
			if prev != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "APP_KEY replaced in %s (active sessions lose their csrf tokens)\n", write)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "APP_KEY written to %s\n", write)
			}
			return nil
		},
	}
	genCmd.Flags().StringVar(&write, "write", "", "archivo .env donde guardar la clave (opcional)")

	cmd.AddCommand(genCmd)
	return cmd
}
