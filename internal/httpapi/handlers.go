package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/timecard/internal/middleware"
	"github.com/mmynk/timecard/internal/models"
	"github.com/mmynk/timecard/internal/service"
)

// Handlers serves the shift and dashboard endpoints.
type Handlers struct {
	shifts    *service.ShiftService
	dashboard *service.DashboardService
	loc       *time.Location
}

// NewHandlers creates handlers over the given services. Dates in request bodies are
// interpreted in loc.
func NewHandlers(shifts *service.ShiftService, dashboard *service.DashboardService, loc *time.Location) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{shifts: shifts, dashboard: dashboard, loc: loc}
}

func userID(c *gin.Context) string {
	return middleware.GetUserID(c.Request.Context())
}

// ClockIn handles POST /api/employments/:id/clock_in.
func (h *Handlers) ClockIn(c *gin.Context) {
	shift, err := h.shifts.ClockIn(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShiftJSON(shift))
}

// ClockOut handles POST /api/employments/:id/clock_out.
func (h *Handlers) ClockOut(c *gin.Context) {
	shift, err := h.shifts.ClockOut(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftJSON(shift))
}

// ListShifts handles GET /api/employments/:id/shifts.
func (h *Handlers) ListShifts(c *gin.Context) {
	shifts, err := h.shifts.ListShifts(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]ShiftJSON, len(shifts))
	for i, sh := range shifts {
		out[i] = toShiftWithHoursJSON(sh)
	}
	c.JSON(http.StatusOK, gin.H{"shifts": out})
}

// CreateShift handles POST /api/employments/:id/shifts.
func (h *Handlers) CreateShift(c *gin.Context) {
	var req ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	in, err := req.toShiftInput(h.loc)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	shift, err := h.shifts.CreateShift(c.Request.Context(), userID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShiftJSON(shift))
}

// GetShift handles GET /api/shifts/:id.
func (h *Handlers) GetShift(c *gin.Context) {
	sh, err := h.shifts.GetShift(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftWithHoursJSON(*sh))
}

// UpdateShift handles PATCH /api/shifts/:id.
func (h *Handlers) UpdateShift(c *gin.Context) {
	var req ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	up, err := req.toShiftUpdate(h.loc)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	shift, err := h.shifts.UpdateShift(c.Request.Context(), userID(c), c.Param("id"), up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShiftJSON(shift))
}

// DeleteShift handles DELETE /api/shifts/:id.
func (h *Handlers) DeleteShift(c *gin.Context) {
	if err := h.shifts.DeleteShift(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard handles GET /api/dashboard. The optional week_of=YYYY-MM-DD query
// selects the week the totals cover.
func (h *Handlers) Dashboard(c *gin.Context) {
	var (
		view *models.DashboardView
		err  error
	)
	if weekOf := c.Query("week_of"); weekOf != "" {
		ref, perr := parseDate(weekOf, h.loc)
		if perr != nil {
			respondBadRequest(c, perr)
			return
		}
		view, err = h.dashboard.DashboardForWeek(c.Request.Context(), userID(c), ref)
	} else {
		view, err = h.dashboard.Dashboard(c.Request.Context(), userID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Debug("Dashboard served",
		"user_id", userID(c),
		"shifts", len(view.Shifts),
		"active_employments", len(view.ActiveEmployments),
	)
	c.JSON(http.StatusOK, toDashboardJSON(view))
}
