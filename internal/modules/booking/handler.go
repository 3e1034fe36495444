package booking

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"homelet/internal/domain"
	"homelet/internal/pkg/response"
	"homelet/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the authenticated booking endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/bookings/:id/events", h.GetBookingEvents)
	rg.PATCH("/bookings/:id/approve", h.ApproveBooking)
	rg.PATCH("/bookings/:id/reject", h.RejectBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)
}

// RegisterPublicRoutes wires the unauthenticated calendar endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties/:id/booked-periods", h.GetBookedPeriods)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	req.TenantID = c.GetInt64("user_id")

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), id, c.GetInt64("user_id"), viewerRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	scope := repository.ListScope{
		ViewerID:   c.GetInt64("user_id"),
		ViewerRole: viewerRole(c),
	}
	if v, err := strconv.ParseInt(c.Query("property_id"), 10, 64); err == nil {
		scope.PropertyID = v
	}
	if v := c.Query("status"); v != "" {
		scope.Status = domain.BookingStatus(v)
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		scope.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		scope.Offset = v
	}

	items, err := h.service.ListBookings(c.Request.Context(), scope)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": items})
}

func (h *Handler) GetBookingEvents(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	events, err := h.service.GetBookingEvents(c.Request.Context(), id, c.GetInt64("user_id"), viewerRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, ok := bindDecision(c)
	if !ok {
		return
	}

	b, err := h.service.ApproveBooking(c.Request.Context(), id, c.GetInt64("user_id"), viewerRole(c), req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, ok := bindDecision(c)
	if !ok {
		return
	}

	b, err := h.service.RejectBooking(c.Request.Context(), id, c.GetInt64("user_id"), viewerRole(c), req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, c.GetInt64("user_id"), viewerRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) GetBookedPeriods(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	from, err := parseDateQuery(c.Query("from"), time.Now().UTC())
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid from date, want YYYY-MM-DD")
		return
	}
	to, err := parseDateQuery(c.Query("to"), from.AddDate(1, 0, 0))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to date, want YYYY-MM-DD")
		return
	}

	periods, err := h.service.GetBookedPeriods(c.Request.Context(), id, from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := BookedPeriodsResponse{
		PropertyID: id,
		From:       from.Format("2006-01-02"),
		To:         to.Format("2006-01-02"),
		Periods:    make([]PeriodDTO, 0, len(periods)),
	}
	for _, p := range periods {
		out.Periods = append(out.Periods, PeriodDTO{
			Start:  p.Start.Format("2006-01-02"),
			End:    p.End.Format("2006-01-02"),
			Status: string(p.Status),
		})
	}

	response.Success(c, http.StatusOK, out)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInterval):
		response.Error(c, http.StatusBadRequest, "INVALID_INTERVAL", "End date must be after start date")
	case errors.Is(err, ErrPastStartDate):
		response.Error(c, http.StatusBadRequest, "PAST_START_DATE", "Start date is in the past")
	case errors.Is(err, ErrMissingReason):
		response.Error(c, http.StatusBadRequest, "MISSING_REASON", "Rejection reason is required")
	case errors.Is(err, ErrSelfBooking):
		response.Error(c, http.StatusBadRequest, "SELF_BOOKING", "You cannot book your own property")
	case errors.Is(err, ErrPropertyNotFound):
		response.Error(c, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrAccessDenied):
		response.Error(c, http.StatusForbidden, "ACCESS_DENIED", "You may not perform this action")
	case errors.Is(err, ErrPropertyUnavailable):
		response.Error(c, http.StatusConflict, "PROPERTY_UNAVAILABLE", "Property is not open for booking")
	case errors.Is(err, ErrOverlapConflict):
		response.Error(c, http.StatusConflict, "OVERLAP_CONFLICT", "Dates conflict with an existing booking")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStorage):
		response.Error(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is unavailable, try again later")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

// bindDecision reads the optional approve/reject body. An empty body
// is fine; malformed JSON is not.
func bindDecision(c *gin.Context) (DecisionRequest, bool) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return req, false
	}
	return req, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id in path")
		return 0, false
	}
	return id, true
}

func viewerRole(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString("role"))
}

func parseDateQuery(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}
