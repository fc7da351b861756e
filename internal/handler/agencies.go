package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"agencysearch/internal/apperr"
	"agencysearch/internal/httpcache"
	"agencysearch/internal/model"
	"agencysearch/internal/monitor"
	"agencysearch/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListRoute identifies the listing endpoint in the monitor
const ListRoute = "GET /api/v1/agencies"

// AgencyLister answers a validated listing query
type AgencyLister interface {
	ListAgencies(ctx context.Context, q model.QueryDescriptor, tracker *monitor.Tracker) (*model.ListResponse, error)
}

// AgencyOptions configures the listing endpoint
type AgencyOptions struct {
	Limits        service.Limits
	MaxAgeSeconds int
	ExposeDetails bool // include diagnostic error details in responses
}

// AgencyHandler handles agency directory HTTP requests
type AgencyHandler struct {
	directory AgencyLister
	monitor   *monitor.Monitor
	opts      AgencyOptions
	logger    *zap.Logger
}

// NewAgencyHandler creates a new agency handler
func NewAgencyHandler(directory AgencyLister, mon *monitor.Monitor, opts AgencyOptions, logger *zap.Logger) *AgencyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgencyHandler{
		directory: directory,
		monitor:   mon,
		opts:      opts,
		logger:    logger,
	}
}

// List handles GET /api/v1/agencies
func (h *AgencyHandler) List(c *gin.Context) {
	tracker := h.monitor.Begin(ListRoute)
	defer func() {
		if r := recover(); r != nil {
			tracker.Complete(http.StatusInternalServerError, "panic", nil)
			panic(r)
		}
	}()

	q, err := service.ParseListQuery(c.Request.URL.Query(), h.opts.Limits)
	if err != nil {
		h.fail(c, tracker, err)
		return
	}

	resp, err := h.directory.ListAgencies(c.Request.Context(), q, tracker)
	if err != nil {
		h.fail(c, tracker, err)
		return
	}

	body, etag, err := httpcache.Encode(resp)
	if err != nil {
		h.fail(c, tracker, apperr.Internal(err))
		return
	}

	httpcache.SetCacheable(c.Writer.Header(), etag, h.opts.MaxAgeSeconds)

	if httpcache.Negotiate(c.GetHeader("If-None-Match"), etag) {
		res := tracker.Complete(http.StatusNotModified, "not modified", nil)
		setTimingHeaders(c, res)
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Vary", "Accept-Encoding")
	res := tracker.Complete(http.StatusOK, "", map[string]any{
		"count": len(resp.Data),
		"total": resp.Pagination.Total,
	})
	setTimingHeaders(c, res)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// fail writes the error response for err and closes the tracker
func (h *AgencyHandler) fail(c *gin.Context, tracker *monitor.Tracker, err error) {
	status, body := h.errorResponse(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error("listing request failed",
			zap.String("code", body.Error.Code),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(err))
	}

	res := tracker.Complete(status, body.Error.Message, nil)
	setTimingHeaders(c, res)
	writeError(c, status, body)
}

func (h *AgencyHandler) errorResponse(err error) (int, model.ErrorResponse) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}

	body := model.ErrorBody{Code: string(ae.Kind), Message: ae.Message}
	switch ae.Kind {
	case apperr.KindInvalidParams:
		body.Details = ae.Details
		return http.StatusBadRequest, model.ErrorResponse{Error: body}
	case apperr.KindDatabase:
		if h.opts.ExposeDetails && ae.Err != nil {
			body.Details = ae.Err.Error()
		}
		return http.StatusInternalServerError, model.ErrorResponse{Error: body}
	default:
		body.Code = string(apperr.KindInternal)
		body.Message = apperr.Internal(nil).Message
		return http.StatusInternalServerError, model.ErrorResponse{Error: body}
	}
}

// writeError sends an error body that intermediaries must not cache
func writeError(c *gin.Context, status int, body model.ErrorResponse) {
	httpcache.SetNoCache(c.Writer.Header())
	c.Writer.Header().Del("Vary")
	c.AbortWithStatusJSON(status, body)
}

func setTimingHeaders(c *gin.Context, res monitor.Result) {
	c.Header("X-Response-Time", strconv.FormatFloat(float64(res.ResponseTime.Microseconds())/1000, 'f', 2, 64)+"ms")
}
