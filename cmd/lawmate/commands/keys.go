package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/crypto"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate, store and publish your key pair",
		Long: "Generate a key pair, store the private key on this device and publish\n" +
			"the public key. An existing private key is kept.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := wire.Identity.Initialize(cmd.Context(), wire.Config.User)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Keys ready for %s.\nFingerprint: %s\n", st.UserID, st.Fingerprint)
			return nil
		},
	}
}

func regenerateCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Replace your key pair",
		Long:  "Replace your key pair. Messages sealed for the old key can no longer be read.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("regenerating makes older messages unreadable; pass --yes to continue")
			}
			st, err := wire.Identity.Regenerate(cmd.Context(), wire.Config.User)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New keys published.\nFingerprint: %s\n", st.Fingerprint)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm regeneration")
	return cmd
}

func revokeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Withdraw your public key and erase your private key",
		Long: "Remove your public key from the directory and erase the private key on\n" +
			"this device. Nobody can message you until you run init again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("revoking makes all your messages unreadable; pass --yes to continue")
			}
			if err := wire.Identity.Revoke(cmd.Context(), wire.Config.User); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Keys revoked.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm revocation")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local key status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := wire.Identity.Status(cmd.Context(), wire.Config.User)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:        %s\n", st.UserID)
			fmt.Fprintf(out, "Private key: %t\n", st.HasPrivateKey)
			fmt.Fprintf(out, "Initialized: %t\n", st.Initialized)
			if st.Initialized {
				fmt.Fprintf(out, "Fingerprint: %s\n", st.Fingerprint)
				if err := wire.Identity.Validate(cmd.Context(), st.UserID); err != nil {
					return fmt.Errorf("key self-test failed: %w", err)
				}
			}
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print your public key fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := wire.Identity.PublicKey(cmd.Context(), wire.Config.User)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\nPublic key:  %s\n", crypto.Fingerprint(pub), crypto.EncodeKey(pub))
			return nil
		},
	}
}

func peerCmd() *cobra.Command {
	var (
		refresh bool
		expect  string
	)
	cmd := &cobra.Command{
		Use:   "peer <user>...",
		Short: "Fetch peers' public keys and print their fingerprints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want domain.PublicKey
			if expect != "" {
				if len(args) != 1 {
					return fmt.Errorf("--expect takes exactly one peer")
				}
				k, err := domain.ParsePublicKey(expect)
				if err != nil {
					return fmt.Errorf("--expect: %w", err)
				}
				want = k
			}
			if refresh {
				if err := wire.Directory.ClearCache(cmd.Context()); err != nil {
					return err
				}
			}
			ids := make([]domain.UserID, len(args))
			for i, a := range args {
				ids[i] = domain.UserID(a)
			}
			recs, err := wire.Directory.FetchMany(cmd.Context(), ids)
			if err != nil {
				return err
			}
			for _, id := range ids {
				rec, ok := recs[id]
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s (no key published)\n", id)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", id, crypto.Fingerprint(rec.PublicKey))
				if !want.IsZero() && rec.PublicKey != want {
					return fmt.Errorf("key of %s does not match the expected key (directory %s, expected %s)",
						id, crypto.Fingerprint(rec.PublicKey), crypto.Fingerprint(want))
				}
			}
			if !want.IsZero() {
				if _, ok := recs[ids[0]]; !ok {
					return &domain.KeyAbsentError{UserID: ids[0], Peer: true}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "key matches")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "drop cached keys before fetching")
	cmd.Flags().StringVar(&expect, "expect", "", "base64 public key received out of band; fail unless the directory key matches")
	return cmd
}
