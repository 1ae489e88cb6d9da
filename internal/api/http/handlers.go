package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/app"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/order"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/utils"
)

// Version is reported by the status endpoints
const Version = "0.3.0"

// ReorderResponse is the result of a reorder request
type ReorderResponse struct {
	Applied    bool             `json:"applied"`
	Changed    bool             `json:"changed"`
	Error      string           `json:"error,omitempty"`
	Projection types.Projection `json:"projection"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	appManager     *app.Manager
	sessionManager *session.Manager
	logger         *zap.Logger
	metrics        *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(appManager *app.Manager, sessionManager *session.Manager, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		appManager:     appManager,
		sessionManager: sessionManager,
		logger:         logger,
	}
}

// WithMetrics adds the metrics snapshot to the health report
func (h *Handlers) WithMetrics(metrics *monitoring.Metrics) *Handlers {
	h.metrics = metrics
	return h
}

// Register mounts the handlers on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// App management
	r.GET("/apps", h.ListApps)
	r.POST("/apps", h.InstallApp)
	r.DELETE("/apps/:id", h.UninstallApp)
	r.POST("/apps/:id/focus", h.FocusApp)

	// Switcher sessions
	r.POST("/sessions", h.CreateSession)
	r.GET("/sessions", h.ListSessions)
	r.DELETE("/sessions/:id", h.CloseSession)
	r.GET("/sessions/:id/switcher", h.GetSwitcher)
	r.POST("/sessions/:id/switcher/reorder", h.Reorder)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "App Switcher Service",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	report := gin.H{
		"status":      "healthy",
		"app_manager": h.appManager.Stats(),
		"sessions":    h.sessionManager.Stats(),
	}
	if h.metrics != nil {
		report["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, report)
}

// ListApps lists all installed apps
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.appManager.List(),
		"stats": h.appManager.Stats(),
	})
}

// InstallApp installs or updates an app
func (h *Handlers) InstallApp(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxJSONSize)

	var req types.InstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.appManager.Install(req.Package); err != nil {
		h.log(c).Debug("Install rejected", zap.String("app_id", req.Package.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Focus {
		if err := h.appManager.Focus(req.Package.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	pkg, _ := h.appManager.Get(req.Package.ID)
	h.log(c).Info("App installed", zap.String("app_id", req.Package.ID))
	c.JSON(http.StatusCreated, gin.H{"app": pkg})
}

// UninstallApp removes an app
func (h *Handlers) UninstallApp(c *gin.Context) {
	appID, ok := h.appID(c)
	if !ok {
		return
	}

	if err := h.appManager.Uninstall(appID); err != nil {
		h.respondAppError(c, err)
		return
	}
	h.log(c).Info("App uninstalled", zap.String("app_id", appID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
	})
}

// FocusApp marks an app as active
func (h *Handlers) FocusApp(c *gin.Context) {
	appID, ok := h.appID(c)
	if !ok {
		return
	}

	if err := h.appManager.Focus(appID); err != nil {
		h.respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"app_id":  appID,
	})
}

// CreateSession starts a switcher session
func (h *Handlers) CreateSession(c *gin.Context) {
	sess := h.sessionManager.Create()
	h.log(c).Debug("Session requested", zap.String("session_id", sess.ID()))
	c.JSON(http.StatusCreated, gin.H{
		"session":    sess.Metadata(),
		"projection": sess.Switcher().Projection(),
	})
}

// ListSessions lists live sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.sessionManager.List(),
		"stats":    h.sessionManager.Stats(),
	})
}

// CloseSession ends a session
func (h *Handlers) CloseSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.sessionManager.Close(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
	})
}

// GetSwitcher returns the current projection of a session
func (h *Handlers) GetSwitcher(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Switcher().Projection())
}

// Reorder applies a finished drag gesture
func (h *Handlers) Reorder(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxJSONSize)

	var req types.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := sess.Switcher().Reorder(req.Event())
	if res.Err != nil {
		h.log(c).Debug("Reorder rejected",
			zap.String("session_id", sess.ID()),
			zap.String("code", order.Code(res.Err)),
		)
	}
	c.JSON(http.StatusOK, ReorderResponse{
		Applied:    res.Err == nil,
		Changed:    res.Changed,
		Error:      order.Code(res.Err),
		Projection: res.Projection,
	})
}

// log tags entries with the request id
func (h *Handlers) log(c *gin.Context) *zap.Logger {
	if reqID := middleware.RequestID(c); reqID != "" {
		return h.logger.With(zap.String("request_id", reqID))
	}
	return h.logger
}

func (h *Handlers) appID(c *gin.Context) (string, bool) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return appID, true
}

func (h *Handlers) session(c *gin.Context) (*session.Session, bool) {
	sess, ok := h.sessionManager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": session.ErrSessionNotFound.Error()})
		return nil, false
	}
	return sess, true
}

func (h *Handlers) respondAppError(c *gin.Context, err error) {
	if errors.Is(err, app.ErrAppNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
