// Package api exposes the records over a JSON HTTP interface.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"silant-backend/config"
	"silant-backend/internal/access"
	"silant-backend/internal/auth"
	e "silant-backend/internal/errors"
	"silant-backend/internal/events"
	"silant-backend/internal/metrics"
	"silant-backend/internal/mw"
	"silant-backend/internal/parse"
	"silant-backend/internal/store"
)

// Dispatcher queues claim alerts.
type Dispatcher interface {
	Dispatch(claimID int64)
}

// Options are the dependencies of the router and its handlers. Alerts and
// WebPush may be nil when push is not configured.
type Options struct {
	Store        store.Store
	Auth         *auth.Service
	Resolver     *access.Resolver
	WebPush      *webpush.Options
	Alerts       Dispatcher
	Events       events.Publisher
	Metrics      *metrics.Metrics
	RateLimiter  *mw.IPRateLimiter
	Cache        *cache.Cache
	CacheTTL     time.Duration
	Pagination   config.PaginationConfig
	AllowSignups bool
	Logger       *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	auth         *auth.Service
	webpush      *webpush.Options
	alerts       Dispatcher
	events       events.Publisher
	metrics      *metrics.Metrics
	pages        config.PaginationConfig
	allowSignups bool
	logger       *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(opts Options) *Handler {
	publisher := opts.Events
	if publisher == nil {
		publisher = events.Noop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:        opts.Store,
		auth:         opts.Auth,
		webpush:      opts.WebPush,
		alerts:       opts.Alerts,
		events:       publisher,
		metrics:      opts.Metrics,
		pages:        opts.Pagination,
		allowSignups: opts.AllowSignups,
		logger:       logger.Named("api"),
	}
}

type listResponse struct {
	Items    any   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func pageOf[T, R any](page store.Page[T], render func(T) R) listResponse {
	items := make([]R, len(page.Items))
	for i, item := range page.Items {
		items[i] = render(item)
	}
	return listResponse{Items: items, Page: page.Page, PageSize: page.PageSize, Total: page.Total}
}

// pathID reads a positive integer path parameter. A malformed ID cannot name
// a visible record, so it is reported as not found.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := parse.ID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
		return 0, false
	}
	return id, true
}

// fail writes the response for err.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *e.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, e.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": e.ErrNotFound.Error()})
	case errors.Is(err, e.ErrDuplicateSerial),
		errors.Is(err, e.ErrDuplicateUsername),
		errors.Is(err, e.ErrReferenceInUse),
		errors.Is(err, e.ErrSubscriptionTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrInvalidCredentials), errors.Is(err, e.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, e.ErrSignupClosed), errors.Is(err, e.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// saved records a successful write of a machine, maintenance or claim.
func (h *Handler) saved(c *gin.Context, typ events.EventType, kind string, id int64, record any) {
	if h.metrics != nil {
		h.metrics.RecordSaved(kind, string(typ))
	}
	h.events.Publish(events.Event{
		Type:    typ,
		Kind:    kind,
		ID:      id,
		ActorID: auth.PrincipalFrom(c).UserID,
		Record:  record,
	})
}

func (h *Handler) listOptions(c *gin.Context, pageSize int, scopes []store.Scope) store.ListOptions {
	return store.ListOptions{
		Scopes:   scopes,
		Page:     parse.PageNumber(c.Query("page")),
		PageSize: pageSize,
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
