package main

import (
	"fmt"
	"log"

	"chaibuddies/internal/calllog"
	"chaibuddies/internal/config"
	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/hooks"
	"chaibuddies/internal/models"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/prompt"
	"chaibuddies/internal/scheduler"
	"chaibuddies/internal/session"
)

// app holds everything shared by the front-ends
type app struct {
	cfg        *config.Config
	registry   *personas.Registry
	backend    models.Model
	calls      *calllog.Store
	hooks      *hooks.Client
	dispatcher *dispatcher.Dispatcher
	scheduler  *scheduler.Scheduler
	dataDir    string
	logger     *log.Logger
}

func build(cfgPath string, logger *log.Logger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	list := personas.Builtin()
	if cfg.Personas.File != "" {
		list, err = personas.LoadFile(cfg.Personas.File)
		if err != nil {
			return nil, err
		}
	}
	registry, err := personas.NewRegistry(list)
	if err != nil {
		return nil, err
	}

	backend, err := models.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	a := &app{
		cfg:       cfg,
		registry:  registry,
		backend:   backend,
		scheduler: scheduler.New(),
		dataDir:   dataDir,
		logger:    logger,
	}

	var recorders dispatcher.Recorders
	if cfg.CallLog.Path != "" {
		a.calls, err = calllog.Open(cfg.CallLog.Path)
		if err != nil {
			return nil, fmt.Errorf("open call log: %w", err)
		}
		recorders = append(recorders, a.calls)
	}
	if cfg.Hooks.URL != "" {
		a.hooks = hooks.NewClient(cfg.Hooks.URL, hooks.WithLogger(logger))
		recorders = append(recorders, a.hooks)
	}
	a.dispatcher = dispatcher.New(backend, registry,
		dispatcher.WithRecorder(recorders),
		dispatcher.WithMaxOutputTokens(cfg.Generation.MaxOutputTokens),
		dispatcher.WithTimeout(cfg.ProviderTimeout()),
	)

	logger.Printf("provider %s model %s, %d personas", cfg.Provider.Name, backend.Info().ID, registry.Count())
	return a, nil
}

// newSession builds a session with the configured defaults
func (a *app) newSession(opts ...session.Option) *session.Session {
	p := a.cfg.Presentation
	base := []session.Option{
		session.WithSettings(dispatcher.Settings{
			Temperature: a.cfg.Temperature(),
			Tone:        prompt.Tone(a.cfg.Generation.Tone),
		}),
		session.WithFlows(
			scheduler.FlowFromMillis(p.GreetingBaseMs, p.GreetingSpreadMs),
			scheduler.FlowFromMillis(p.SendBaseMs, p.SendSpreadMs),
		),
		session.WithLogger(a.logger),
	}
	return session.New(a.registry, a.dispatcher, a.scheduler, append(base, opts...)...)
}

func (a *app) Close() {
	if a.hooks != nil {
		a.hooks.Wait()
	}
	if a.calls != nil {
		if err := a.calls.Close(); err != nil {
			a.logger.Printf("close call log: %v", err)
		}
	}
}
