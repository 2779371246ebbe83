// Package server is the HTTP presentation shell. It translates user
// events into session calls and renders results as JSON; no filtering
// logic lives here.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/domain"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/filter"
	"github.com/pxlcrtiv/zillow-like-property-search/internal/session"
)

// Router wires HTTP handlers.
type Router struct {
	sess    *session.Session
	store   session.ListingStore
	engine  *filter.Engine
	logger  *slog.Logger
	origins string
}

// New builds the gin engine with all routes registered
func New(sess *session.Session, store session.ListingStore, engine *filter.Engine, logger *slog.Logger, allowedOrigins string) *gin.Engine {
	r := &Router{
		sess:    sess,
		store:   store,
		engine:  engine,
		logger:  logger,
		origins: allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/listings", r.searchListings)
		api.GET("/listings/:id", r.getListing)
		api.GET("/listings/:id/match", r.explainListing)
		api.POST("/listings/:id/favorite", r.toggleFavorite)

		api.GET("/criteria/defaults", r.defaultCriteria)

		api.GET("/session", r.getSession)
		api.PUT("/session/query", r.setQuery)
		api.PUT("/session/criteria", r.setCriteria)
		api.POST("/session/criteria/clear", r.clearCriteria)
		api.POST("/session/criteria/bedrooms", r.toggleBedroom)
		api.POST("/session/criteria/bathrooms", r.toggleBathroom)
		api.POST("/session/criteria/types", r.togglePropertyType)
		api.PUT("/session/view", r.setViewMode)
		api.PUT("/session/selection", r.setSelection)
		api.DELETE("/session/selection", r.clearSelection)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, allowed := range origins {
			allowed = strings.TrimSpace(allowed)
			if allowed == "*" || allowed == origin {
				c.Header("Access-Control-Allow-Origin", allowed)
				break
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// searchListings is the stateless evaluation endpoint: criteria come
// from query parameters and the session is not touched.
func (r *Router) searchListings(c *gin.Context) {
	listings, err := r.store.GetAllListings(c.Request.Context())
	if err != nil {
		r.logger.Error("load listings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load listings"})
		return
	}

	query := c.Query("q")
	criteria := criteriaFromParams(c)
	results := r.engine.Evaluate(listings, query, criteria)

	c.JSON(http.StatusOK, gin.H{
		"query":    query,
		"criteria": criteria,
		"total":    len(results),
		"results":  results,
	})
}

func (r *Router) getListing(c *gin.Context) {
	listing, err := r.store.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.logger.Error("get listing", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load listing"})
		return
	}
	if listing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (r *Router) explainListing(c *gin.Context) {
	result, err := r.sess.Explain(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrUnknownListing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		r.logger.Error("explain listing", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate listing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"passed":  result.Passed,
		"reasons": result.Reasons,
	})
}

func (r *Router) toggleFavorite(c *gin.Context) {
	results, err := r.sess.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		r.logger.Error("toggle favorite", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle favorite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) defaultCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, domain.DefaultCriteria())
}

func (r *Router) getSession(c *gin.Context) {
	snap, err := r.sess.Snapshot(c.Request.Context())
	if err != nil {
		r.logger.Error("session snapshot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (r *Router) setQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	results, err := r.sess.SetQuery(c.Request.Context(), req.Query)
	if err != nil {
		r.logger.Error("set query", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply query"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) setCriteria(c *gin.Context) {
	var req criteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	results, err := r.sess.SetCriteria(c.Request.Context(), req.toCriteria())
	if err != nil {
		r.logger.Error("set criteria", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply criteria"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) toggleBedroom(c *gin.Context) {
	var req struct {
		Value int `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	results, err := r.sess.ToggleBedroom(c.Request.Context(), req.Value)
	if err != nil {
		r.logger.Error("toggle bedroom", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle bedroom filter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) toggleBathroom(c *gin.Context) {
	var req struct {
		Value int `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	results, err := r.sess.ToggleBathroom(c.Request.Context(), req.Value)
	if err != nil {
		r.logger.Error("toggle bathroom", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle bathroom filter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) togglePropertyType(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	results, err := r.sess.TogglePropertyType(c.Request.Context(), domain.PropertyType(req.Value))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown property type"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (r *Router) clearCriteria(c *gin.Context) {
	results, err := r.sess.ClearCriteria(c.Request.Context())
	if err != nil {
		r.logger.Error("clear criteria", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear criteria"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"criteria": domain.DefaultCriteria(),
		"results":  results,
	})
}

func (r *Router) setViewMode(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := r.sess.SetViewMode(domain.ViewMode(req.Mode)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be grid or list"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view_mode": r.sess.ViewMode()})
}

func (r *Router) setSelection(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	listing, err := r.sess.Select(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, session.ErrUnknownListing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		r.logger.Error("select listing", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select listing"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (r *Router) clearSelection(c *gin.Context) {
	r.sess.ClearSelection()
	c.Status(http.StatusNoContent)
}
