package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// RoomHandler exposes the read side of the allocation coordinator.
type RoomHandler struct {
	service ports.AllocationService
}

func NewRoomHandler(service ports.AllocationService) *RoomHandler {
	return &RoomHandler{service: service}
}

type listRoomsResponse struct {
	Count int            `json:"count"`
	Rooms []*domain.Room `json:"rooms"`
}

// List handles GET /v1/rooms.
//
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (available|full)"
// @Success      200     {object}  listRoomsResponse
// @Failure      400     {object}  map[string]string
// @Router       /v1/rooms [get]
func (h *RoomHandler) List(c echo.Context) error {
	if _, _, err := ctxClaims(c); err != nil {
		return err
	}

	rooms, err := h.service.ListRooms(c.Request().Context(), ports.RoomFilter{
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listRoomsResponse{Count: len(rooms), Rooms: rooms})
}
