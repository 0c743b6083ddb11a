package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hostelhub/hostel-system/internal/api/metrics"
	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// ProfileHandler serves the occupant's own profile and room reassignment.
type ProfileHandler struct {
	service ports.AllocationService
}

func NewProfileHandler(service ports.AllocationService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type reassignRoomRequest struct {
	RoomID string `json:"room_id" validate:"required"`
}

type reassignRoomResponse struct {
	Message string          `json:"message"`
	Profile *domain.Profile `json:"profile"`
}

// Me handles GET /v1/me.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      404  {object}  map[string]string
// @Router       /v1/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	occupantID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	profile, err := h.service.GetProfile(c.Request().Context(), occupantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// ReassignRoom handles PUT /v1/me/room.
//
// @Summary      Move into another room
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reassignRoomRequest  true  "Target room"
// @Success      200   {object}  reassignRoomResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /v1/me/room [put]
func (h *ProfileHandler) ReassignRoom(c echo.Context) error {
	occupantID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req reassignRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.ReassignRoom(c.Request().Context(), occupantID, req.RoomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomFull):
			metrics.RoomReassignmentsTotal.WithLabelValues("room_full").Inc()
		case errors.Is(err, domain.ErrRoomNotFound):
			metrics.RoomReassignmentsTotal.WithLabelValues("not_found").Inc()
		default:
			metrics.RoomReassignmentsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	message := "room updated"
	if result.AlreadyAssigned {
		message = "already assigned to this room"
		metrics.RoomReassignmentsTotal.WithLabelValues("noop").Inc()
	} else {
		metrics.RoomReassignmentsTotal.WithLabelValues("moved").Inc()
	}

	return c.JSON(http.StatusOK, reassignRoomResponse{Message: message, Profile: result.Profile})
}
