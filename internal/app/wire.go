package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/relay"
	identitysvc "github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/identity"
	keydirsvc "github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/keydirectory"
	messagesvc "github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/message"
	sessionsvc "github.com/PatelShiv10/sgp-7-sem-sub001/internal/services/session"
	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config    Config
	Keys      *store.KeyStore
	Identity  *identitysvc.Service
	Directory *keydirsvc.Service
	Sessions  *sessionsvc.Model
	Messages  *messagesvc.Service
	Relay     *relay.HTTP
	HTTP      *http.Client
	Log       *zap.Logger

	redis *redis.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(ctx context.Context, cfg Config, log *zap.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Wire{Config: cfg, Log: log}

	// Backing stores: private key slot and peer key cache
	var keyBackend, cache domain.KeyValueStore
	switch cfg.Store {
	case StoreFile:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home: %w", err)
		}
		keyBackend = store.NewFileStore(cfg.Home)
		cache = store.NewMemoryStore(log)
	case StoreMemory:
		keyBackend = store.NewMemoryStore(log)
		cache = store.NewMemoryStore(log)
	case StoreRedis:
		client, err := store.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		w.redis = client
		rs := store.NewRedisStore(client, store.DefaultRedisPrefix+":"+cfg.User.String())
		keyBackend, cache = rs, rs
	}

	keyOpts := []store.KeyStoreOption{store.WithLogger(log)}
	if cfg.Passphrase != "" {
		keyOpts = append(keyOpts, store.WithPassphrase(cfg.Passphrase))
	}
	w.Keys = store.NewKeyStore(keyBackend, keyOpts...)

	// Ensure an HTTP client is available for outbound calls
	w.HTTP = cfg.HTTP
	if w.HTTP == nil {
		w.HTTP = &http.Client{Timeout: cfg.Timeout}
	}
	w.Relay = relay.NewHTTP(cfg.RelayURL, cfg.Token,
		relay.WithHTTPClient(w.HTTP),
		relay.WithLogger(log.Named("relay")),
	)

	// High-level services
	w.Directory = keydirsvc.New(w.Relay, cache, log.Named("keydirectory"))
	w.Sessions = sessionsvc.New(cfg.User, w.Relay, log.Named("session"))
	w.Identity = identitysvc.New(w.Keys, w.Directory, log.Named("identity"))
	w.Messages = messagesvc.New(messagesvc.Config{
		Me:        cfg.User,
		Keys:      w.Keys,
		Directory: w.Directory,
		Sessions:  w.Sessions,
		Transport: w.Relay,
		Sent:      store.NewMemoryStore(log),
		Logger:    log.Named("message"),
	})
	return w, nil
}

// Close releases connections held by the wire.
func (w *Wire) Close() error {
	if w.redis != nil {
		return w.redis.Close()
	}
	return nil
}
