package property

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"homelet/internal/domain"
	"homelet/internal/pkg/response"
	"homelet/internal/pkg/validator"
	"homelet/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/properties", h.List)
	rg.GET("/properties/:id", h.Get)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/properties", h.Create)
	rg.GET("/users/me/properties", h.ListMine)
	rg.PUT("/properties/:id", h.Update)
	rg.DELETE("/properties/:id", h.Delete)
}

// RegisterAdminRoutes wires listing moderation; callers must chain the
// admin-only middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/properties/:id/status", h.Moderate)
}

func (h *Handler) Create(c *gin.Context) {
	role := domain.UserRole(c.GetString("role"))
	if role != domain.RoleLandlord && role != domain.RoleAdmin {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only landlords can list properties")
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid property data", errs)
		return
	}

	p, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create property")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"property": p})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	p, err := h.service.Get(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"property": p})
}

func (h *Handler) List(c *gin.Context) {
	f := repository.PropertyFilters{City: c.Query("city")}
	if v, err := strconv.ParseInt(c.Query("project_id"), 10, 64); err == nil {
		f.ProjectID = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		f.Offset = v
	}

	items, err := h.service.ListPublic(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list properties")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"properties": items})
}

func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), repository.PropertyFilters{})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list properties")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"properties": items})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"property": p})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role"))); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Moderate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be approved or rejected")
		return
	}

	p, err := h.service.Moderate(c.Request.Context(), id, domain.ListingStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"property": p})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Property not found")
	case errors.Is(err, ErrAccessDenied):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this property")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid property data")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
