package root

import (
	"context"
	"time"

	"mandaact/internal/config"
	"mandaact/internal/engine"
	"mandaact/internal/logging"
	"mandaact/internal/storage"
)

// session bundles what every command needs: config, the service bound to
// the configured store and the event log.
type session struct {
	cfg *config.Config
	svc *engine.Service
	log *logging.Logger
}

func (s *session) now() time.Time { return s.cfg.Now() }

func (s *session) user() string { return s.cfg.UserID }

func openSession(ctx context.Context) (*session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		_ = logger.Close()
		return nil, nil, err
	}
	svc := engine.NewService(store).WithLogger(logger)
	cleanup := func() {
		_ = store.Close()
		_ = logger.Close()
	}
	return &session{cfg: cfg, svc: svc, log: logger}, cleanup, nil
}
