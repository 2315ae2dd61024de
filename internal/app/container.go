package app

import (
	"context"
	"fmt"

	"github.com/doeshing/ytgenius/internal/application/doctor"
	"github.com/doeshing/ytgenius/internal/application/generate"
	historyapp "github.com/doeshing/ytgenius/internal/application/history"
	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/infrastructure/api"
	"github.com/doeshing/ytgenius/internal/infrastructure/auth"
	"github.com/doeshing/ytgenius/internal/infrastructure/config"
	"github.com/doeshing/ytgenius/internal/infrastructure/history"
	"github.com/doeshing/ytgenius/internal/pkg/logger"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Options tune how the container is built.
type Options struct {
	Verbose    bool
	Ephemeral  bool
	ConfigPath string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger

	Dispatcher *generate.Service
	// DispatchErr explains why Dispatcher is nil, typically a bad service.base_url.
	DispatchErr error

	History        *historyapp.Cache
	HistoryStorage ports.HistoryStorage
	HistoryTarget  string
	Sessions       *auth.Store
	DoctorService  *doctor.Service

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	config.LoadDotEnv()

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewStd(opts.Verbose)

	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
	}

	storage, target, closer := openHistoryStorage(cfg, opts.Ephemeral, log)
	if closer != nil {
		c.OnClose(closer)
	}
	c.HistoryStorage = storage
	c.HistoryTarget = target
	c.History = historyapp.NewCache(storage, log)

	c.Sessions = auth.NewStore(cfg.Auth.SessionFile, cfg.GetTokenEnvVar(), log)

	client, err := api.NewClient(cfg)
	if err != nil {
		c.DispatchErr = err
		log.Warn("generation client unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		c.Dispatcher = &generate.Service{
			Credentials: c.Sessions,
			Client:      client,
			Logger:      log,
		}
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Credentials:    c.Sessions,
		History:        storage,
		HistoryTarget:  target,
	}

	return c, nil
}

// OnClose registers fn to run when the container is closed.
func (c *Container) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close releases resources held by adapters.
func (c *Container) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// openHistoryStorage picks the configured backend. A sqlite database that
// cannot be opened falls back to the JSON file so history keeps working.
func openHistoryStorage(cfg domain.Config, ephemeral bool, log ports.Logger) (ports.HistoryStorage, string, func() error) {
	if ephemeral {
		return history.NewMemoryStore(), "memory", nil
	}

	switch cfg.GetHistoryBackend() {
	case domain.HistoryBackendMemory:
		return history.NewMemoryStore(), "memory", nil
	case domain.HistoryBackendSQLite:
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err == nil {
			return store, store.Path(), store.Close
		}
		log.Warn("sqlite history unavailable, falling back to file", map[string]interface{}{"error": err.Error()})
		file := history.NewFileStore("")
		return file, file.Path(), nil
	case domain.HistoryBackendFile:
		file := history.NewFileStore(cfg.History.Path)
		return file, file.Path(), nil
	default:
		log.Warn("unknown history backend, using file", map[string]interface{}{"backend": cfg.History.Backend})
		file := history.NewFileStore(cfg.History.Path)
		return file, file.Path(), nil
	}
}
