package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trailnote/organizer"
	"github.com/trailnote/organizer/agents"
	"github.com/trailnote/organizer/internal/config"
	"github.com/trailnote/organizer/observer"
	"github.com/trailnote/organizer/provider/openaicompat"
	pgstore "github.com/trailnote/organizer/store/postgres"
	sqlitestore "github.com/trailnote/organizer/store/sqlite"
	"github.com/trailnote/organizer/tools/citynorm"
	"github.com/trailnote/organizer/tools/fake"
	"github.com/trailnote/organizer/tools/housing"
	"github.com/trailnote/organizer/tools/openmeteo"
	"github.com/trailnote/organizer/tools/ticketmaster"
	"github.com/trailnote/organizer/tools/webpage"
)

// app holds everything the REPL needs for one session.
type app struct {
	orch     *organizer.Orchestrator
	history  *organizer.HistoryLogger
	logsDir  string
	shutdown func(context.Context) error
}

// buildApp wires tools, agents, stores and the orchestrator from config.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{logsDir: cfg.Logs.Dir}

	// Tool selection: deterministic fakes by default, real APIs on request.
	var (
		weatherTool organizer.Tool
		eventsTool  organizer.Tool
		housingTool organizer.Tool
		detailTool  organizer.Tool
	)
	if cfg.Tools.UseRealAPIs {
		client := toolHTTPClient(cfg.Tools)
		weatherTool = openmeteo.NewWeather(
			openmeteo.WithForecastURL(cfg.Tools.ForecastURL),
			openmeteo.WithWeatherClient(client),
			openmeteo.WithGeocoding(openmeteo.NewGeocoding(
				openmeteo.WithGeocodingURL(cfg.Tools.GeocodingURL),
				openmeteo.WithGeocodingClient(client),
			)),
		)
		eventsTool = ticketmaster.New(
			ticketmaster.WithBaseURL(cfg.Tools.TicketmasterURL),
			ticketmaster.WithAPIKey(cfg.Tools.TicketmasterKey),
			ticketmaster.WithHTTPClient(client),
		)
		housingTool = housing.New()
		detailTool = webpage.New(webpage.WithHTTPClient(client))
	} else {
		weatherTool = fake.NewWeather()
		eventsTool = fake.NewEvents()
		housingTool = fake.NewHousing()
	}

	// Optional OTEL instrumentation.
	var tracer organizer.Tracer
	if cfg.Observer.Enabled {
		inst, shutdown, err := observer.Init(ctx)
		if err != nil {
			return nil, fmt.Errorf("init observer: %w", err)
		}
		a.shutdown = shutdown
		tracer = observer.NewTracer()
		weatherTool = observer.WrapTool(weatherTool, inst)
		eventsTool = observer.WrapTool(eventsTool, inst)
		housingTool = observer.WrapTool(housingTool, inst)
		if detailTool != nil {
			detailTool = observer.WrapTool(detailTool, inst)
		}
	}

	// Optional LLM helpers.
	var (
		llm        *openaicompat.Client
		normalizer organizer.Tool
	)
	if cfg.LLM.APIKey != "" {
		llm = openaicompat.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
		normalizer = citynorm.New(llm.CompleteJSON)
	}

	recoveryOpts := []organizer.RecoveryOption{organizer.WithRecoveryLogger(logger)}
	if llm != nil {
		recoveryOpts = append(recoveryOpts, organizer.WithFixSuggester(
			agents.NewLLMFixSuggester(llm.CompleteJSON)))
	}
	recovery := organizer.NewRecoveryAgent(recoveryOpts...)

	prefs, err := loadPreferences(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Agents.
	registry := organizer.NewRegistry()
	if llm != nil {
		if err := registry.Register(agents.NewLLMCoordinator(llm.CompleteJSON,
			agents.WithLLMCoordinatorLogger(logger))); err != nil {
			return nil, err
		}
	} else {
		if err := registry.Register(agents.NewCoordinator()); err != nil {
			return nil, err
		}
	}
	weatherOpts := []agents.WeatherOption{
		agents.WithWeatherRecovery(recovery),
		agents.WithWeatherRetryPolicy(retryPolicy(cfg.Retry)),
		agents.WithWeatherLogger(logger),
	}
	if normalizer != nil {
		weatherOpts = append(weatherOpts, agents.WithWeatherCityNormalizer(normalizer))
	}
	if cfg.Tools.UseRealAPIs {
		// The fakes double as recovery fallbacks for the real providers.
		weatherOpts = append(weatherOpts, agents.WithWeatherFallback(fake.NewWeather()))
	}
	if err := registry.Register(agents.NewWeather(weatherTool, weatherOpts...)); err != nil {
		return nil, err
	}
	staysOpts := []agents.StaysOption{agents.WithStaysLogger(logger)}
	plannerOpts := []agents.PlannerOption{
		agents.WithPlannerPreferences(prefs),
		agents.WithPlannerLogger(logger),
	}
	if normalizer != nil {
		staysOpts = append(staysOpts, agents.WithStaysCityNormalizer(normalizer))
		plannerOpts = append(plannerOpts, agents.WithPlannerCityNormalizer(normalizer))
	}
	if detailTool != nil {
		plannerOpts = append(plannerOpts, agents.WithPlannerDetailTool(detailTool))
	}
	if err := registry.Register(agents.NewStays(housingTool, staysOpts...)); err != nil {
		return nil, err
	}
	if err := registry.Register(agents.NewPlanner(weatherTool, eventsTool, plannerOpts...)); err != nil {
		return nil, err
	}

	orchOpts := []organizer.OrchestratorOption{
		organizer.WithLogger(logger),
		organizer.WithRules(
			organizer.RoutingRule{Keyword: "pogoda", AgentName: "weather"},
			organizer.RoutingRule{Keyword: "nocleg", AgentName: "stays"},
			organizer.RoutingRule{Keyword: "plan", AgentName: "planner"},
			organizer.RoutingRule{Keyword: "zaplanuj", AgentName: "planner"},
		),
		organizer.WithMemorySummarizeEvery(cfg.Memory.SummarizeEvery),
		organizer.WithMemoryKeepRecent(cfg.Memory.KeepRecent),
		organizer.WithMemoryKeepScratchpad(cfg.Memory.KeepScratchpad),
	}
	if tracer != nil {
		orchOpts = append(orchOpts, organizer.WithTracer(tracer))
	}
	a.orch = organizer.NewOrchestrator(registry, orchOpts...)

	a.history, err = organizer.NewHistoryLogger(cfg.Logs.Dir)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// retryPolicy builds the tool retry policy from config, keeping the
// defaults for anything unset.
func retryPolicy(cfg config.RetryConfig) organizer.RetryPolicy {
	p := organizer.DefaultRetryPolicy()
	if cfg.MaxAttempts >= 1 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BackoffSec > 0 {
		p.Backoff = time.Duration(cfg.BackoffSec * float64(time.Second))
	}
	if len(cfg.RetryStatuses) > 0 {
		statuses := make([]string, len(cfg.RetryStatuses))
		for i, s := range cfg.RetryStatuses {
			statuses[i] = strconv.Itoa(s)
		}
		p.RetryableStatuses = statuses
	}
	return p
}

// toolHTTPClient builds the shared HTTP client for the real API tools.
func toolHTTPClient(cfg config.ToolsConfig) *http.Client {
	timeout := 10 * time.Second
	if cfg.RequestTimeoutSec > 0 {
		timeout = time.Duration(cfg.RequestTimeoutSec) * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// loadPreferences reads the session owner's planning preferences from the
// configured store.
func loadPreferences(ctx context.Context, cfg config.Config) (organizer.Preferences, error) {
	const userID = "default"

	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return organizer.Preferences{}, fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		store := pgstore.New(pool)
		if err := store.Init(ctx); err != nil {
			return organizer.Preferences{}, fmt.Errorf("init preferences store: %w", err)
		}
		return store.Get(ctx, userID)
	case "sqlite", "":
		store := sqlitestore.New(cfg.Database.Path)
		if err := store.Init(ctx); err != nil {
			return organizer.Preferences{}, fmt.Errorf("init preferences store: %w", err)
		}
		return store.Get(ctx, userID)
	}
	return organizer.Preferences{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
