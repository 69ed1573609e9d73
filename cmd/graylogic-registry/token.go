package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-registry/internal/auth"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Long: `Issue a bearer token signed with the configured JWT secret.

Roles:
  reader  get and export
  writer  get, export, set, commit, load and save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}
			if err := cfg.ValidateSecurity(); err != nil {
				return fmt.Errorf("invalid security config: %w", err)
			}
			r, err := auth.ParseRole(role)
			if err != nil {
				return fmt.Errorf("%w: %q (want reader or writer)", err, role)
			}
			if ttl == 0 {
				ttl = cfg.GetAccessTokenTTL()
			}
			token, err := auth.GenerateToken(subject, r, cfg.Security.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", string(auth.RoleReader), "token role: reader or writer")
	cmd.Flags().StringVarP(&subject, "subject", "s", "cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from security.jwt.access_token_ttl)")
	return cmd
}
