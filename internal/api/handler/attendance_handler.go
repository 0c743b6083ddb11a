package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hostelhub/hostel-system/internal/api/metrics"
	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// AttendanceHandler exposes QR issuance, verification, and history.
type AttendanceHandler struct {
	service ports.AttendanceService
}

func NewAttendanceHandler(service ports.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

type qrTokenResponse struct {
	QRToken   string `json:"qr_token"`
	ExpiresIn int    `json:"expires_in"`
}

type markAttendanceRequest struct {
	QRToken    string `json:"qr_token" validate:"required"`
	VerifiedBy string `json:"verified_by" validate:"required"`
}

type markAttendanceResponse struct {
	Message    string                   `json:"message"`
	Attendance *domain.AttendanceRecord `json:"attendance"`
}

type listAttendanceResponse struct {
	Count      int                        `json:"count"`
	Attendance []*domain.AttendanceRecord `json:"attendance"`
}

// IssueQR handles GET /v1/attendance/qr.
//
// @Summary      Issue a short-lived attendance QR token
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  qrTokenResponse
// @Failure      429  {object}  map[string]string
// @Router       /v1/attendance/qr [get]
func (h *AttendanceHandler) IssueQR(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	token, err := h.service.IssueToken(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.AttendanceTokensIssuedTotal.Inc()

	return c.JSON(http.StatusOK, qrTokenResponse{
		QRToken:   token.Token,
		ExpiresIn: token.ExpiresIn,
	})
}

// Mark handles POST /v1/attendance.
//
// @Summary      Verify a QR token and mark attendance
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markAttendanceRequest  true  "QR token and verification method"
// @Success      200   {object}  markAttendanceResponse  "already marked for today"
// @Success      201   {object}  markAttendanceResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/attendance [post]
func (h *AttendanceHandler) Mark(c echo.Context) error {
	occupantID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req markAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.VerifyAndMark(c.Request().Context(), occupantID, req.QRToken, req.VerifiedBy)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid):
			metrics.AttendanceRejectedTotal.WithLabelValues("invalid_token").Inc()
		case errors.Is(err, domain.ErrInvalidMethod):
			metrics.AttendanceRejectedTotal.WithLabelValues("invalid_method").Inc()
		default:
			metrics.AttendanceRejectedTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	if result.AlreadyMarked {
		return c.JSON(http.StatusOK, markAttendanceResponse{
			Message:    "attendance already marked for today",
			Attendance: result.Record,
		})
	}

	metrics.AttendanceMarkedTotal.WithLabelValues(req.VerifiedBy).Inc()
	return c.JSON(http.StatusCreated, markAttendanceResponse{
		Message:    "attendance marked",
		Attendance: result.Record,
	})
}

// ListMine handles GET /v1/attendance.
//
// @Summary      List own attendance, newest first
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAttendanceResponse
// @Router       /v1/attendance [get]
func (h *AttendanceHandler) ListMine(c echo.Context) error {
	occupantID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return h.list(c, occupantID)
}

// ListFor handles GET /v1/attendance/:occupant_id (warden only; RBAC is
// enforced by middleware on the route).
//
// @Summary      List an occupant's attendance (warden)
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        occupant_id  path      string  true  "Occupant id"
// @Success      200          {object}  listAttendanceResponse
// @Failure      403          {object}  map[string]string
// @Router       /v1/attendance/{occupant_id} [get]
func (h *AttendanceHandler) ListFor(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}
	return h.list(c, c.Param("occupant_id"))
}

func (h *AttendanceHandler) list(c echo.Context, occupantID string) error {
	records, err := h.service.ListAttendance(c.Request().Context(), occupantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listAttendanceResponse{
		Count:      len(records),
		Attendance: records,
	})
}
