package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/assign"
	"mailsplit-backend/internal/companies"
	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/llm/anthropic"
	"mailsplit-backend/internal/llm/openai"
	"mailsplit-backend/internal/parsedoc"
	"mailsplit-backend/internal/queue"
	"mailsplit-backend/internal/search"
	"mailsplit-backend/internal/services/health"
	"mailsplit-backend/internal/shared/config"
	"mailsplit-backend/internal/shared/server"
	"mailsplit-backend/internal/shared/storage/db"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/teamextract"
	"mailsplit-backend/internal/teams"
	"mailsplit-backend/internal/workerproc"
)

// App holds shared dependencies for the api and worker binaries.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Completers []llm.Completer

	Queue queue.Client
	SQS   *queue.SQSClient
	NATS  *queue.NATSClient
	Dedup *workerproc.RedisDedup

	Parser          *teamextract.Parser
	ParseDocService *parsedoc.Service
	CompanyService  *companies.Service
	TeamService     *teams.Service
	EmailService    *emails.Service
	AssignService   *assign.Service
	SearchService   *search.Service
	Syncer          *search.Syncer
	Health          *health.Service
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.SetLevel(cfg.LogLevel)

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	completers, err := buildCompleters(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Completers = completers

	if err := buildQueue(ctx, app); err != nil {
		app.Close()
		return nil, err
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		dedup, err := workerproc.NewRedisDedup(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.Dedup = dedup
	}

	if err := buildServices(app); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Health:          app.Health,
		CompanyService:  app.CompanyService,
		CompanyHandler:  companies.NewHandler(app.CompanyService, cfg.Env == "production"),
		TeamHandler:     teams.NewHandler(app.TeamService),
		EmailHandler:    emails.NewHandler(app.EmailService),
		SearchHandler:   search.NewHandler(app.SearchService),
		ParseDocHandler: parsedoc.NewHandler(app.ParseDocService),
	})

	return app, nil
}

// Close releases connections. Safe to call on a partially built App.
func (a *App) Close() {
	if a.NATS != nil {
		a.NATS.Close()
	}
	if a.Dedup != nil {
		_ = a.Dedup.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// buildCompleters returns the configured providers in priority order, each behind
// its own circuit breaker.
func buildCompleters(cfg config.Config) ([]llm.Completer, error) {
	creds := cfg.Credentials()
	var out []llm.Completer
	if creds.OpenAIKey != "" {
		c, err := openai.NewClient(creds.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		out = append(out, llm.WithBreaker(c, llm.DefaultBreakerConfig()))
	}
	if creds.AnthropicKey != "" {
		c, err := anthropic.NewClient(creds.AnthropicKey, cfg.AnthropicModel)
		if err != nil {
			return nil, fmt.Errorf("anthropic client: %w", err)
		}
		out = append(out, llm.WithBreaker(c, llm.DefaultBreakerConfig()))
	}
	if !creds.Any() {
		telemetry.Warn("bootstrap.llm.none", map[string]any{"fallback": "heuristic"})
	}
	return out, nil
}

// buildQueue prefers SQS, then NATS. Without either, emails are only assigned on demand.
func buildQueue(ctx context.Context, app *App) error {
	cfg := app.Config
	switch {
	case strings.TrimSpace(cfg.SQSQueueURL) != "":
		client, err := queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
		if err != nil {
			return err
		}
		app.SQS = client
		app.Queue = client
	case strings.TrimSpace(cfg.NATSURL) != "":
		client, err := queue.NewNATSClient(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return err
		}
		app.NATS = client
		app.Queue = client
	}
	return nil
}

func buildServices(app *App) error {
	cfg := app.Config

	var (
		companyRepo companies.CompaniesRepo
		teamRepo    teams.TeamsRepo
		emailRepo   emails.EmailsRepo
	)
	if app.DB != nil {
		companyRepo = &companies.PGRepo{DB: app.DB}
		teamRepo = &teams.PGRepo{DB: app.DB}
		emailRepo = &emails.PGRepo{DB: app.DB}
	} else {
		companyRepo = companies.NewMemoryRepo()
		teamRepo = teams.NewMemoryRepo()
		emailRepo = emails.NewMemoryRepo()
	}

	var backend search.Backend
	if strings.TrimSpace(cfg.MeiliHost) != "" {
		mb, err := search.NewMeiliBackend(cfg.MeiliHost, cfg.MeiliAPIKey, cfg.MeiliEmailsIndex, cfg.MeiliTeamsIndex)
		if err != nil {
			return err
		}
		backend = mb
	}
	syncer := search.NewSyncer(backend, search.DefaultSyncerOptions())

	providers := make([]teamextract.Provider, 0, len(app.Completers))
	names := make([]string, 0, len(app.Completers))
	for _, c := range app.Completers {
		providers = append(providers, teamextract.NewProvider(c, cfg.LLMTimeout))
		names = append(names, c.Name())
	}
	app.Parser = teamextract.NewParser(providers...)
	app.ParseDocService = parsedoc.NewService(app.Parser)

	app.CompanyService = &companies.Service{Repo: companyRepo}
	app.TeamService = teams.NewService(teamRepo, syncer)
	app.EmailService = emails.NewService(emailRepo, syncer, app.Queue, cfg.SeedMockData)
	app.AssignService = assign.NewService(app.EmailService, app.TeamService, cfg.LLMTimeout, app.Completers...)
	app.EmailService.Assigner = app.AssignService
	app.Syncer = syncer
	app.SearchService = &search.Service{Backend: backend, Emails: app.EmailService, Teams: app.TeamService}

	app.Health = health.NewService(names)
	if app.DB != nil {
		app.Health.Register("database", app.DB.PingContext)
	}
	if app.Dedup != nil {
		app.Health.Register("redis", app.Dedup.Ping)
	}
	if app.NATS != nil {
		app.Health.Register("nats", app.NATS.Healthy)
	}

	if app.EmailService == nil || app.AssignService == nil {
		return errors.New("failed to initialize services")
	}
	return nil
}
