package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/saransh482003/healthassist/internal/chat"
	"github.com/saransh482003/healthassist/internal/crawl"
	"github.com/saransh482003/healthassist/internal/extract"
	"github.com/saransh482003/healthassist/internal/finder"
	"github.com/saransh482003/healthassist/internal/llm"
	"github.com/saransh482003/healthassist/internal/render"
	"github.com/saransh482003/healthassist/internal/store"
	anthropicpkg "github.com/saransh482003/healthassist/pkg/anthropic"
	"github.com/saransh482003/healthassist/pkg/geoip"
	"github.com/saransh482003/healthassist/pkg/groq"
	"github.com/saransh482003/healthassist/pkg/places"
)

// serviceEnv holds the initialized store, clients, and pipeline needed
// by the serve and find commands.
type serviceEnv struct {
	Store     store.Store
	Places    places.Client
	Finder    *finder.Finder
	Assistant *chat.Assistant
	Geo       geoip.Client
	Renderer  render.Renderer
}

// Close releases resources held by the service environment.
func (se *serviceEnv) Close() {
	if se.Renderer != nil {
		se.Renderer.Close()
	}
	if se.Store != nil {
		_ = se.Store.Close()
	}
}

// initService validates config for mode, opens the store, and builds the
// discovery pipeline and chat assistant. Callers should defer env.Close().
func initService(ctx context.Context, mode string) (*serviceEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	model, err := initModel()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	placesClient := places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))

	renderer := render.NewChromeRenderer(
		render.WithPageTimeout(time.Duration(cfg.Render.PageTimeoutSecs) * time.Second),
	)

	extractor := extract.New(renderer, model,
		extract.WithRenderConcurrency(cfg.Render.MaxConcurrent),
		extract.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Extract.ModelRPS), 1)),
	)

	f := finder.New(placesClient, st, crawl.New(), extractor,
		finder.WithWorkers(cfg.Finder.Workers),
		finder.WithCrawlBudget(cfg.Crawl.MaxPages),
		finder.WithPagesPerPlace(cfg.Crawl.PagesPerPlace),
		finder.WithCrawlTimeout(time.Duration(cfg.Crawl.TimeoutSecs)*time.Second),
	)

	return &serviceEnv{
		Store:     st,
		Places:    placesClient,
		Finder:    f,
		Assistant: chat.NewAssistant(model),
		Geo:       geoip.NewClient(),
		Renderer:  renderer,
	}, nil
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		zap.L().Info("using postgres store")
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		zap.L().Info("using sqlite store", zap.String("path", cfg.Store.DatabaseURL))
		return store.NewSQLite(cfg.Store.DatabaseURL)
	}
}

// initModel builds the chat-completion model for the configured provider.
func initModel() (llm.Model, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicModel(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, 0), nil
	case "groq", "":
		opts := []groq.Option{groq.WithModel(cfg.Groq.Model)}
		if cfg.Groq.BaseURL != "" {
			opts = append(opts, groq.WithBaseURL(cfg.Groq.BaseURL))
		}
		return llm.NewGroqModel(groq.NewClient(cfg.Groq.Key, opts...), cfg.Groq.Model), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
