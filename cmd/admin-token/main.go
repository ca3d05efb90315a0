package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/service"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin-token",
		Short:        "Mint and inspect bearer tokens for the delivery gateway admin API",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to config.yaml (env DDG_* overrides apply)")

	root.AddCommand(mintCmd())
	root.AddCommand(verifyCmd())
	return root
}

func mintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokenService(cmd)
			if err != nil {
				return err
			}

			subject, _ := cmd.Flags().GetString("subject")
			if subject == "" {
				return errors.New("--subject is required")
			}
			if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
				tokens = tokens.WithExpiry(ttl)
			}

			token, expiresAt, err := tokens.Generate(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringP("subject", "s", "", "Operator name recorded in the token")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (default admin.expiry)")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token]",
		Short: "Check a token against the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := loadTokenService(cmd)
			if err != nil {
				return err
			}
			claims, err := tokens.Validate(args[0])
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subject=%s scope=%s\n", claims.Subject, claims.Scope)
			return nil
		},
	}
}

func loadTokenService(cmd *cobra.Command) (*service.JWTTokenService, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Admin.JWTSecret == "" {
		return nil, errors.New("admin.jwt_secret is not configured (set DDG_ADMIN_JWT_SECRET)")
	}
	return service.NewJWTTokenService(cfg.Admin.JWTSecret, cfg.Admin.Expiry, cfg.Admin.Issuer), nil
}
