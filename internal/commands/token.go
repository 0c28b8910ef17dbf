package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/config"
	"github.com/beesaferoot/boardinghouse/internal/server"
)

func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perms, _ := cmd.Flags().GetStringSlice("perm")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := server.IssueToken(cfg.JWTSecret, args[0], perms, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringSlice("perm", server.AllPermissions, "Permissions granted to the token")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
