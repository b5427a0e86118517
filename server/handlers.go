package server

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"

	apperrors "github.com/homescout/marketdata/errors"
	"github.com/homescout/marketdata/logger"
	"github.com/homescout/marketdata/market"
	"github.com/homescout/marketdata/provider"
	"github.com/homescout/marketdata/validation"
)

// API exposes the market data operations over HTTP. It holds the active
// provider behind a lock so the selection can be switched at runtime.
type API struct {
	deps      provider.Deps
	defaultID string
	log       *logger.Logger

	mu     sync.RWMutex
	active provider.Provider
}

// NewAPI wires the handlers around the resolved provider.
func NewAPI(active provider.Provider, defaultID string, deps provider.Deps, log *logger.Logger) *API {
	return &API{
		deps:      deps,
		defaultID: defaultID,
		log:       log.WithComponent("api"),
		active:    active,
	}
}

// Register mounts the API routes.
func (a *API) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/market-stats", a.getMarketStats)
	api.GET("/search", a.searchProperties)
	api.POST("/datasets", a.uploadDataset)
	api.GET("/cache/stats", a.cacheStats)
	api.POST("/cache/expired", a.clearExpired)
	api.DELETE("/cache", a.clearCache)
	api.GET("/providers", a.listProviders)
	api.PUT("/providers/active", a.setActiveProvider)
}

// Provider returns the currently active provider.
func (a *API) Provider() provider.Provider {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

type marketStatsRequest struct {
	Location string `form:"location" json:"location" validate:"required"`
	Refresh  bool   `form:"refresh" json:"refresh"`
}

func (a *API) getMarketStats(c *gin.Context) {
	var req marketStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		RespondWithError(c, apperrors.Validation("malformed query parameters").WithCause(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		RespondWithError(c, err)
		return
	}

	stats, err := a.Provider().GetMarketStats(c.Request.Context(), req.Location, req.Refresh)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if stats == nil {
		RespondWithError(c, apperrors.NotFound("market statistics", req.Location))
		return
	}
	RespondOK(c, stats)
}

type searchRequest struct {
	Query   string `form:"q" json:"q" validate:"required"`
	Refresh bool   `form:"refresh" json:"refresh"`
}

func (a *API) searchProperties(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		RespondWithError(c, apperrors.Validation("malformed query parameters").WithCause(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		RespondWithError(c, err)
		return
	}

	props, err := a.Provider().SearchProperties(c.Request.Context(), req.Query, req.Refresh)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if props == nil {
		props = []market.Property{}
	}
	RespondOK(c, props)
}

// uploadDataset accepts a CSV file either as multipart form field "file" or
// as the raw request body, and hands it to the active provider when it
// supports dataset uploads.
func (a *API) uploadDataset(c *gin.Context) {
	data, err := readUpload(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	loader, ok := a.Provider().(provider.DatasetLoader)
	if !ok {
		RespondWithError(c, apperrors.Unsupported("dataset upload", a.Provider().Info().ID))
		return
	}

	summary, err := loader.LoadDataset(c.Request.Context(), data)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondCreated(c, summary)
}

func readUpload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, apperrors.Validation("could not open uploaded file").WithCause(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, apperrors.Validation("could not read uploaded file").WithCause(err)
		}
		return data, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperrors.Validation("could not read request body").WithCause(err)
	}
	if len(data) == 0 {
		return nil, apperrors.Validation("no CSV data in request")
	}
	return data, nil
}

func (a *API) cacheStats(c *gin.Context) {
	stats, err := a.deps.Store.Stats(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, stats)
}

func (a *API) clearExpired(c *gin.Context) {
	removed, err := a.deps.Store.ClearExpired(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, gin.H{"removed": removed})
}

func (a *API) clearCache(c *gin.Context) {
	if err := a.deps.Store.Clear(c.Request.Context()); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

type providerStatus struct {
	provider.Info
	Active     bool `json:"active"`
	Configured bool `json:"configured"`
}

func (a *API) listProviders(c *gin.Context) {
	active := a.Provider()
	activeInfo := active.Info()

	statuses := make([]providerStatus, 0, 3)
	for _, id := range []string{provider.IDMock, provider.IDCSV, provider.IDRemote} {
		info, ok := provider.InfoOf(id)
		if !ok {
			continue
		}
		status := providerStatus{Info: info, Active: id == activeInfo.ID}
		if status.Active {
			// The live descriptor reflects runtime configuration (e.g. the
			// configured quota), so it wins over the registered one.
			status.Info = activeInfo
			status.Configured = active.IsConfigured(c.Request.Context())
		}
		statuses = append(statuses, status)
	}
	RespondOK(c, statuses)
}

type setProviderRequest struct {
	ID string `json:"id" validate:"required"`
}

// setActiveProvider switches the active provider and persists the selection
// for future sessions.
func (a *API) setActiveProvider(c *gin.Context) {
	var req setProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, apperrors.Validation("malformed request body").WithCause(err))
		return
	}
	if err := validation.Validate(&req); err != nil {
		RespondWithError(c, err)
		return
	}
	if !provider.Registered(req.ID) {
		RespondWithError(c, apperrors.Validation("unknown provider id").WithDetail("id", req.ID))
		return
	}

	ctx := c.Request.Context()
	if err := provider.Persist(ctx, a.deps.Settings, req.ID); err != nil {
		a.log.Warn("persist provider selection failed", map[string]interface{}{"error": err.Error()})
	}

	p := provider.Resolve(ctx, req.ID, a.deps)

	a.mu.Lock()
	a.active = p
	a.mu.Unlock()

	RespondOK(c, p.Info())
}
