package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/security/totp"
)

func newTOTPCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "totp", Short: "Utilidades TOTP"}

	var length int
	var account, issuer string
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Generar un secreto base32",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := totp.NewEngine(clock.System{}, nil)
			secret, err := eng.GenerateSecret(length)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "secret:     %s\n", secret)
			fmt.Fprintf(out, "manual key: %s\n", totp.ManualEntryKey(secret))
			if account != "" {
				fmt.Fprintf(out, "otpauth:    %s\n", totp.OTPAuthURL(issuer, account, secret))
			}
			return nil
		},
	}
	secretCmd.Flags().IntVar(&length, "length", totp.DefaultSecretLength, "largo del secreto en caracteres base32")
	secretCmd.Flags().StringVar(&account, "account", "", "cuenta para el otpauth:// (opcional)")
	secretCmd.Flags().StringVar(&issuer, "issuer", "Efed CMS", "issuer para el otpauth://")

	var at int64
	codeCmd := &cobra.Command{
		Use:   "code <secret>",
		Short: "Calcular el código vigente de un secreto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := time.Now()
			if at > 0 {
				t = time.Unix(at, 0)
			}
			secret := strings.TrimSpace(args[0])
			if len(totp.DecodeBase32(secret)) == 0 {
				return fmt.Errorf("invalid base32 secret")
			}
			fmt.Fprintln(cmd.OutOrStdout(), totp.GenerateToken(secret, t))
			return nil
		},
	}
	codeCmd.Flags().Int64Var(&at, "at", 0, "unix time a usar en vez de ahora")

	var count int
	backupCmd := &cobra.Command{
		Use:   "backup-codes",
		Short: "Generar códigos de respaldo",
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := totp.NewEngine(clock.System{}, nil).GenerateBackupCodes(count)
			if err != nil {
				return err
			}
			for _, c := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
	backupCmd.Flags().IntVar(&count, "count", 10, "cantidad de códigos")

	cmd.AddCommand(secretCmd, codeCmd, backupCmd)
	return cmd
}
