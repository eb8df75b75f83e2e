package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/devrelay"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

// token <user>: mint a bearer token for the dev relay.
func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:         "token <user>",
		Short:       "Issue a dev relay token signed with RELAY_JWT_SECRET",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipWire: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("RELAY_JWT_SECRET")
			if secret == "" {
				return errors.New("RELAY_JWT_SECRET is not set")
			}
			tok, err := devrelay.IssueToken(secret, domain.UserID(args[0]), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
