package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/auth"
	"github.com/choosepower/plan-finder/internal/config"
	"github.com/choosepower/plan-finder/internal/filter"
	"github.com/choosepower/plan-finder/internal/ingest"
	"github.com/choosepower/plan-finder/internal/plandata"
	"github.com/choosepower/plan-finder/internal/ziprouter"
)

// Options wires the server's collaborators. Auth and Pipeline are
// optional; their routes are only registered when present.
type Options struct {
	Config   *config.Config
	Source   plandata.Source
	Zip      *ziprouter.Router
	Auth     *auth.Service
	Pipeline *ingest.Pipeline
	Log      *zap.Logger
}

type Server struct {
	Echo *echo.Echo

	cfg      *config.Config
	source   plandata.Source
	engine   *filter.Engine
	zip      *ziprouter.Router
	authSvc  *auth.Service
	pipeline *ingest.Pipeline
	cache    *plandata.ResultCache
	log      *zap.Logger

	adminOnce   sync.Once
	adminSecret string
	adminErr    error
}

func NewServer(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.Config.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Secret"},
	}))

	limiter := newVisitorLimiter(opts.Config.Rate.RequestsPerSecond, opts.Config.Rate.Burst)
	e.Use(limiter.middleware)

	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		Echo:     e,
		cfg:      opts.Config,
		source:   opts.Source,
		engine:   filter.NewEngine(),
		zip:      opts.Zip,
		authSvc:  opts.Auth,
		pipeline: opts.Pipeline,
		cache:    plandata.NewResultCache(opts.Config.Cache.TTL, opts.Config.Cache.Capacity),
		log:      log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/plans", s.handleListPlans)
	api.GET("/plans/:city/:id", s.handleGetPlan)
	api.GET("/facets", s.handleGetFacets)
	api.GET("/suggestions", s.handleGetSuggestions)
	api.GET("/nearby", s.handleGetNearby)
	api.GET("/zip/:zip", s.handleResolveZip)
	api.GET("/cities", s.handleGetCities)
	api.GET("/stats", s.handleGetStats)

	if s.pipeline != nil {
		admin := api.Group("")
		admin.Use(s.adminMiddleware)
		admin.POST("/ingest/:city", s.handleIngestCity)
	}

	if s.authSvc != nil {
		api.POST("/auth/signup", s.handleSignup)
		api.POST("/auth/login", s.handleLogin)

		saved := api.Group("/saved")
		saved.Use(auth.Middleware)
		saved.POST("/:city/:id", s.handleSavePlan)
		saved.DELETE("/:city/:id", s.handleUnsavePlan)
		saved.GET("", s.handleGetSavedPlans)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// adminMiddleware gates the ingest refresh behind a shared secret sent
// as X-Admin-Secret or a Bearer token.
func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := s.resolveAdminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") && authHeader[7:] == secret {
			return next(c)
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func (s *Server) resolveAdminSecret() (string, error) {
	s.adminOnce.Do(func() {
		if secret := strings.TrimSpace(s.cfg.Server.AdminSecret); secret != "" {
			s.adminSecret = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			s.adminErr = fmt.Errorf("failed to generate admin secret fallback: %w", err)
			return
		}

		s.adminSecret = base64.RawURLEncoding.EncodeToString(buf)
		s.log.Warn("admin secret is not configured; using ephemeral in-memory fallback")
	})

	if s.adminErr != nil {
		return "", s.adminErr
	}
	if s.adminSecret == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}
	return s.adminSecret, nil
}
