package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		gin.SetMode(cfg.GinMode)

		if err := database.Migrate(); err != nil {
			return err
		}

		store, err := newSessionStore(cfg)
		if err != nil {
			return err
		}

		router := handlers.NewRouter(newRouterConfig(cfg, store))
		return serve(c.Context(), &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		})
	},
}

func newRouterConfig(cfg *config.Config, store sessions.Store) handlers.RouterConfig {
	db := database.GetDB()

	companyRepo := repository.NewCompanyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Keyword suggestions stay disabled without an API key
	var suggester services.KeywordSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	}

	return handlers.RouterConfig{
		AuthService:        services.NewAuthService(userRepo),
		CompanyService:     services.NewCompanyService(companyRepo),
		ProjectService:     services.NewProjectService(projectRepo, companyRepo),
		InteractionService: services.NewInteractionService(interactionRepo, projectRepo, companyRepo),
		KeywordService:     services.NewKeywordService(keywordRepo, interactionRepo, suggester),
		FilterOptions:      services.NewFilterOptionsQuery(keywordRepo, interactionRepo),
		SessionStore:       store,
		CORSOrigins:        cfg.CORSOrigins,
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	errg.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return errg.Wait()
}
