package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/app"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/logger"
)

// skipWire marks commands that run without an app.Wire.
const skipWire = "skip-wire"

var (
	home       string
	relayURL   string
	token      string
	user       string
	passphrase string
	backend    string
	timeout    time.Duration
	logLevel   string

	wire *app.Wire
)

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRoot()
	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "lawmate",
		Short:         "End-to-end encrypted lawyer/client chat CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipWire] != "" {
				return nil
			}
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg)

			log := logger.Must(cfg.Log)
			w, err := app.NewWire(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil || cmd.Annotations[skipWire] != "" {
				return nil
			}
			_ = wire.Log.Sync()
			return wire.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "config dir (default ~/.lawmate, env LAWMATE_HOME)")
	pf.StringVar(&relayURL, "relay", "", "relay base URL (env LAWMATE_RELAY_URL)")
	pf.StringVar(&token, "token", "", "relay bearer token (env LAWMATE_TOKEN)")
	pf.StringVarP(&user, "user", "u", "", "your user id (env LAWMATE_USER)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase to protect keys (env LAWMATE_PASSPHRASE)")
	pf.StringVar(&backend, "store", "", "key storage: file, memory or redis (env LAWMATE_STORE)")
	pf.DurationVar(&timeout, "timeout", 0, "relay request timeout (env LAWMATE_TIMEOUT)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")

	root.AddCommand(
		initCmd(), regenerateCmd(), revokeCmd(), statusCmd(), fingerprintCmd(), peerCmd(),
		sendCmd(), openCmd(), chatsCmd(), readCmd(), deleteCmd(), unreadCmd(),
		tokenCmd(),
	)
	return root
}

// applyFlags overrides cfg with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	if f.Changed("home") {
		cfg.Home = home
	}
	if f.Changed("relay") {
		cfg.RelayURL = relayURL
	}
	if f.Changed("token") {
		cfg.Token = token
	}
	if f.Changed("user") {
		cfg.User = domain.UserID(user)
	}
	if f.Changed("passphrase") {
		cfg.Passphrase = passphrase
	}
	if f.Changed("store") {
		cfg.Store = backend
	}
	if f.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if f.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var keyErr *domain.KeyAbsentError
	switch {
	case errors.As(err, &keyErr) && keyErr.Peer:
		fmt.Fprintf(w, "%s has not set up encryption keys yet.\n", keyErr.UserID)
	case errors.Is(err, domain.ErrKeyAbsent):
		fmt.Fprintln(w, "No usable private key on this device. Run `lawmate init` first.")
	case domain.IsRetryable(err):
		fmt.Fprintln(w, "The relay could not be reached. Check the connection and try again.")
	}
	if wire != nil {
		wire.Log.Debug("command failed", zap.Error(err))
	}
}
