// Package httpapi serves the host surface over HTTP so that control surfaces
// can read variables, render feedbacks and trigger actions.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bft-labs/ytcontrol/internal/adapters/surface"
	"github.com/bft-labs/ytcontrol/internal/app"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// Controller is the module surface the API drives.
type Controller interface {
	Phase() app.Phase
	Action(event domain.ActionEvent)
	Feedback(event domain.FeedbackEvent) domain.Style
}

// Handler handles HTTP requests for the host surface.
type Handler struct {
	module  Controller
	store   *surface.Store
	metrics http.Handler
	logger  ports.Logger
}

// NewHandler creates a new HTTP handler. metrics may be nil.
func NewHandler(module Controller, store *surface.Store, metrics http.Handler, logger ports.Logger) *Handler {
	return &Handler{
		module:  module,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// NewRouter returns a gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/status", h.GetStatus)
	r.GET("/variables", h.ListVariables)
	r.GET("/variables/:name", h.GetVariable)
	r.GET("/presets", h.ListPresets)

	feedbacks := r.Group("/feedbacks")
	{
		feedbacks.GET("", h.ListFeedbacks)
		feedbacks.GET("/:id/style", h.GetFeedbackStyle)
	}

	actions := r.Group("/actions")
	{
		actions.GET("", h.ListActions)
		actions.POST("/:id", h.RunAction)
	}

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics))
	}
}

// GetStatus returns the module phase and the last reported status.
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"phase":  h.module.Phase().String(),
		"status": h.store.Status(),
	})
}

// ListVariables returns the declared variables and their values.
func (h *Handler) ListVariables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"definitions": h.store.VariableDefinitions(),
		"values":      h.store.Variables(),
	})
}

// GetVariable returns a single variable value.
func (h *Handler) GetVariable(c *gin.Context) {
	name := c.Param("name")
	value, ok := h.store.Variable(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "variable not found"})
		return
	}
	c.JSON(http.StatusOK, domain.VariableValue{Name: name, Value: value})
}

// ListPresets returns the preset definitions.
func (h *Handler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Presets())
}

// ListFeedbacks returns the feedback definitions.
func (h *Handler) ListFeedbacks(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.FeedbackDefinitions())
}

// GetFeedbackStyle renders a feedback; query parameters are its options.
func (h *Handler) GetFeedbackStyle(c *gin.Context) {
	event := domain.FeedbackEvent{Type: c.Param("id"), Options: queryOptions(c)}
	c.JSON(http.StatusOK, h.module.Feedback(event))
}

// ListActions returns the action definitions.
func (h *Handler) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ActionDefinitions())
}

// RunAction triggers an action. The action runs asynchronously; its outcome
// shows up in variables and feedbacks.
func (h *Handler) RunAction(c *gin.Context) {
	id := c.Param("id")
	if !h.defined(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "action not found"})
		return
	}

	var body struct {
		Options map[string]string `json:"options"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.logger.Debug("invalid action request", ports.String("action", id), ports.Err(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.module.Action(domain.ActionEvent{Action: id, Options: body.Options})
	c.JSON(http.StatusAccepted, gin.H{"action": id})
}

func (h *Handler) defined(id string) bool {
	for _, def := range h.store.ActionDefinitions() {
		if def.ID == id {
			return true
		}
	}
	return false
}

func queryOptions(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	opts := make(map[string]string, len(query))
	for k := range query {
		opts[k] = query.Get(k)
	}
	return opts
}
