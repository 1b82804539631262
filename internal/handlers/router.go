package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/permissions"
	"github.com/yukikurage/crm-api/internal/services"
)

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	AuthService        *services.AuthService
	CompanyService     *services.CompanyService
	ProjectService     *services.ProjectService
	InteractionService *services.InteractionService
	KeywordService     *services.KeywordService
	FilterOptions      services.FilterOptionsQuery

	SessionStore sessions.Store
	CORSOrigins  []string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	authHandler := NewAuthHandler(cfg.AuthService)
	companyHandler := NewCompanyHandler(cfg.CompanyService)
	projectHandler := NewProjectHandler(cfg.ProjectService)
	interactionHandler := NewInteractionHandler(cfg.InteractionService, cfg.FilterOptions)
	keywordHandler := NewKeywordHandler(cfg.KeywordService)

	can := func(caps ...permissions.Capability) gin.HandlerFunc {
		return middleware.RequirePermission(cfg.AuthService, caps...)
	}
	owner := middleware.RequireInteractionOwner(cfg.InteractionService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CRM API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
	}

	app := r.Group("/")
	app.Use(middleware.RequireAuth())
	{
		// Companies
		app.GET("/", companyHandler.ListCompanies)
		app.GET("/:id", companyHandler.GetCompany)
		app.GET("/create", can(permissions.AddCompany), companyHandler.NewCompanyForm)
		app.POST("/create", can(permissions.AddCompany), companyHandler.CreateCompany)
		app.GET("/:id/update", can(permissions.ChangeCompany), companyHandler.EditCompanyForm)
		app.POST("/:id/update", can(permissions.ChangeCompany), companyHandler.UpdateCompany)
		app.GET("/:id/delete", can(permissions.ChangeCompany), companyHandler.ConfirmDeleteCompany)
		app.POST("/:id/delete", can(permissions.ChangeCompany), companyHandler.DeleteCompany)

		// Projects
		app.GET("/projects", projectHandler.ListProjects)
		app.GET("/project/:id", projectHandler.GetProject)
		app.GET("/project/create", can(permissions.AddProject), projectHandler.NewProjectForm)
		app.POST("/project/create", can(permissions.AddProject), projectHandler.CreateProject)
		app.GET("/project/:id/update", can(permissions.ChangeProject), projectHandler.EditProjectForm)
		app.POST("/project/:id/update", can(permissions.ChangeProject), projectHandler.UpdateProject)
		app.GET("/project/:id/delete", can(permissions.DeleteProject), projectHandler.ConfirmDeleteProject)
		app.POST("/project/:id/delete", can(permissions.DeleteProject), projectHandler.DeleteProject)

		// Interactions
		app.GET("/:id/company_interactions", can(permissions.ViewInteraction), interactionHandler.CompanyInteractions)
		app.GET("/:id/project_interactions", can(permissions.ViewInteraction), interactionHandler.ProjectInteractions)
		app.GET("/interaction_list/", can(permissions.ViewInteraction), interactionHandler.ListInteractions)
		app.GET("/interaction/:id/", can(permissions.ViewInteraction), interactionHandler.GetInteraction)
		app.POST("/interaction/create", can(permissions.AddInteraction), interactionHandler.CreateInteraction)
		app.GET("/interaction/:id/update", can(permissions.ChangeInteraction), owner, interactionHandler.EditInteractionForm)
		app.POST("/interaction/:id/update", can(permissions.ChangeInteraction), owner, interactionHandler.UpdateInteraction)
		app.GET("/interaction/:id/delete", can(permissions.DeleteInteraction), owner, interactionHandler.ConfirmDeleteInteraction)
		app.POST("/interaction/:id/delete", can(permissions.DeleteInteraction), owner, interactionHandler.DeleteInteraction)

		// Keywords
		app.POST("/new_keyword", can(permissions.ViewInteraction), keywordHandler.CreateKeyword)
		app.POST("/new_keyword/suggest", can(permissions.ViewInteraction), keywordHandler.SuggestKeywords)

		// Manager profile
		app.GET("/manager/list_by_manager", can(permissions.ViewInteraction), interactionHandler.ListByManager)
		app.GET("/manager/detail/", can(permissions.ViewInteraction), authHandler.ManagerDetail)
		app.POST("/manager/update", can(permissions.ViewInteraction), authHandler.ManagerUpdate)
	}

	return r
}
