package main

import (
	"context"

	"github.com/critiquest/critiquest/internal/bootstrap"
	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/progression"
)

// engine is the subset of the server wiring the CLI needs
type engine struct {
	service   progression.Service
	publisher *event.ResilientPublisher
	repos     *bootstrap.Repositories
	closers   []func() error
}

// openEngine builds the progression service against the configured store.
// Events flow through the same handlers as the server so notifications are not lost.
func openEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	c, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	bus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return nil, err
	}
	broker, err := bootstrap.RegisterEventHandlers(ctx, bootstrap.EventHandlerDependencies{EventBus: bus, Config: cfg})
	if err != nil {
		_ = publisher.Shutdown(ctx)
		return nil, err
	}

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		_ = publisher.Shutdown(ctx)
		_ = broker.Close()
		return nil, err
	}

	svc, err := bootstrap.InitializeProgressionService(cfg, repos, c, publisher)
	if err != nil {
		_ = publisher.Shutdown(ctx)
		_ = broker.Close()
		repos.Close()
		return nil, err
	}

	return &engine{
		service:   svc,
		publisher: publisher,
		repos:     repos,
		closers:   []func() error{broker.Close},
	}, nil
}

func (e *engine) Close(ctx context.Context) {
	_ = e.service.Shutdown(ctx)
	_ = e.publisher.Shutdown(ctx)
	for _, c := range e.closers {
		_ = c()
	}
	e.repos.Close()
}
