package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/choosepower/plan-finder/internal/auth"
	"github.com/choosepower/plan-finder/internal/filter"
	"github.com/choosepower/plan-finder/internal/models"
	"github.com/choosepower/plan-finder/internal/plandata"
	"github.com/choosepower/plan-finder/internal/urlstate"
)

const nearbyDefaultLimit = 5

// plansResponse is the full listing payload: the echoed filter state,
// the filtered result, and recovery hints when the selection is empty.
type plansResponse struct {
	Filters     models.FilterState  `json:"filters"`
	Result      models.FilterResult `json:"result"`
	Suggestions []models.Suggestion `json:"suggestions,omitempty"`
	Nearby      []models.PlanRecord `json:"nearby,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	SEOPath     string              `json:"seo_path"`
	Cached      bool                `json:"cached"`
	Message     string              `json:"message,omitempty"`
}

func (s *Server) handleListPlans(c echo.Context) error {
	state := urlstate.Parse(c.Request().URL.RawQuery, "")
	if state.City == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required city parameter"})
	}

	resp := plansResponse{
		Filters: state,
		SEOPath: urlstate.BuildSEOPath(state),
	}

	report := urlstate.ValidateCombination(state)
	resp.Warnings = report.Warnings

	canonical := urlstate.Serialize(state)
	key := plandata.CacheKey(state.City, canonical)
	if cached, ok := s.cache.Get(key); ok {
		resp.Result = cached
		resp.Cached = true
		return c.JSON(http.StatusOK, resp)
	}

	plans, err := s.source.PlansForCity(c.Request().Context(), state.City)
	if err != nil {
		// Data outage is not a request error: the page still renders,
		// just empty.
		s.log.Warn("plan data unavailable", zap.String("city", state.City), zap.Error(err))
		resp.Result = s.engine.Apply(nil, state)
		resp.Message = "Plan data for this city is temporarily unavailable."
		return c.JSON(http.StatusOK, resp)
	}

	result := s.engine.Apply(plans, state)
	// Empty results are never cached: the recovery hints below depend on
	// the full plan set, so repeat requests must rebuild them.
	if result.FilteredCount > 0 {
		s.cache.Set(key, result)
	}
	resp.Result = result

	if result.FilteredCount == 0 && state.HasActiveFilters() {
		resp.Suggestions = s.engine.Suggestions(plans, state)
		resp.Nearby = s.engine.Nearby(plans, state, nearbyDefaultLimit)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetPlan(c echo.Context) error {
	city := c.Param("city")
	id := c.Param("id")

	plans, err := s.source.PlansForCity(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No plan data for city"})
	}

	for _, p := range plans {
		if p.ID == id {
			return c.JSON(http.StatusOK, p)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "Plan not found"})
}

func (s *Server) handleGetFacets(c echo.Context) error {
	city := c.QueryParam("city")
	if city == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required city parameter"})
	}

	plans, err := s.source.PlansForCity(c.Request().Context(), city)
	if err != nil {
		return c.JSON(http.StatusOK, filter.FacetCountsFor(nil))
	}
	return c.JSON(http.StatusOK, filter.FacetCountsFor(plans))
}

func (s *Server) handleGetSuggestions(c echo.Context) error {
	state := urlstate.Parse(c.Request().URL.RawQuery, "")
	if state.City == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required city parameter"})
	}

	plans, err := s.source.PlansForCity(c.Request().Context(), state.City)
	if err != nil {
		return c.JSON(http.StatusOK, []models.Suggestion{})
	}

	suggestions := s.engine.Suggestions(plans, state)
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return c.JSON(http.StatusOK, suggestions)
}

func (s *Server) handleGetNearby(c echo.Context) error {
	state := urlstate.Parse(c.Request().URL.RawQuery, "")
	if state.City == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing required city parameter"})
	}

	limit := nearbyDefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	plans, err := s.source.PlansForCity(c.Request().Context(), state.City)
	if err != nil {
		return c.JSON(http.StatusOK, []models.PlanRecord{})
	}

	nearby := s.engine.Nearby(plans, state, limit)
	if nearby == nil {
		nearby = []models.PlanRecord{}
	}
	return c.JSON(http.StatusOK, nearby)
}

func (s *Server) handleResolveZip(c echo.Context) error {
	res, zerr := s.zip.Resolve(c.Request().Context(), c.Param("zip"))
	if zerr != nil {
		status := http.StatusBadRequest
		switch zerr.Code {
		case models.ZipErrNotFound:
			status = http.StatusNotFound
		case models.ZipErrCooperative:
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, zerr)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetCities(c echo.Context) error {
	cities := s.zip.Cities()
	sort.Slice(cities, func(i, j int) bool { return cities[i].Slug < cities[j].Slug })
	return c.JSON(http.StatusOK, cities)
}

func (s *Server) handleGetStats(c echo.Context) error {
	cities, err := s.source.Cities(c.Request().Context())
	if err != nil {
		cities = nil
	}
	return c.JSON(http.StatusOK, map[string]any{
		"cities_with_data": len(cities),
		"cities_routable":  len(s.zip.Cities()),
		"cache_entries":    s.cache.Len(),
	})
}

func (s *Server) handleIngestCity(c echo.Context) error {
	slug := plandata.NormalizeSlug(c.Param("city"))

	sources := s.cfg.Ingest.Sources[slug]
	if len(sources) == 0 {
		sources = s.cfg.Ingest.Sources[c.Param("city")]
	}
	if len(sources) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "No ingest sources configured for city"})
	}

	stats, err := s.pipeline.RefreshCity(c.Request().Context(), slug, sources)
	if err != nil {
		s.log.Error("ingest refresh failed", zap.String("city", slug), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]any{
			"error": "Refresh failed for all sources",
			"stats": stats,
		})
	}
	return c.JSON(http.StatusOK, stats)
}

// Auth and saved plans. These routes only exist when Postgres is wired.

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A valid email is required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Password must be at least 8 characters"})
	}

	resp, err := s.authSvc.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "An account with that email already exists"})
		}
		s.log.Error("signup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Signup failed"})
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	resp, err := s.authSvc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCreds) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		}
		s.log.Error("login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Login failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSavePlan(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.authSvc.SavePlan(c.Request().Context(), userID, c.Param("city"), c.Param("id")); err != nil {
		s.log.Error("save plan failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not save plan"})
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "saved"})
}

func (s *Server) handleUnsavePlan(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	if err := s.authSvc.UnsavePlan(c.Request().Context(), userID, c.Param("city"), c.Param("id")); err != nil {
		s.log.Error("unsave plan failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not remove saved plan"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetSavedPlans(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	saved, err := s.authSvc.SavedPlans(c.Request().Context(), userID)
	if err != nil {
		s.log.Error("list saved plans failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not list saved plans"})
	}
	if saved == nil {
		saved = []models.SavedPlan{}
	}
	return c.JSON(http.StatusOK, saved)
}
