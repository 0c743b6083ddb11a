package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

type stubAllocationService struct {
	reassignFn func(ctx context.Context, occupantID, roomID string) (*ports.ReassignResult, error)
	listFn     func(ctx context.Context, filter ports.RoomFilter) ([]*domain.Room, error)
	profileFn  func(ctx context.Context, occupantID string) (*domain.Profile, error)
}

func (s *stubAllocationService) ReassignRoom(ctx context.Context, occupantID, roomID string) (*ports.ReassignResult, error) {
	return s.reassignFn(ctx, occupantID, roomID)
}

func (s *stubAllocationService) ListRooms(ctx context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
	return s.listFn(ctx, filter)
}

func (s *stubAllocationService) GetProfile(ctx context.Context, occupantID string) (*domain.Profile, error) {
	return s.profileFn(ctx, occupantID)
}

func TestProfileHandler_ReassignRoom_Moved(t *testing.T) {
	stub := &stubAllocationService{
		reassignFn: func(_ context.Context, occupantID, roomID string) (*ports.ReassignResult, error) {
			if occupantID != "occ_1" || roomID != "room_9" {
				t.Fatalf("unexpected args: %s %s", occupantID, roomID)
			}
			return &ports.ReassignResult{Profile: &domain.Profile{
				Occupant: domain.Occupant{ID: occupantID, RoomID: roomID},
				Room:     &domain.Room{ID: roomID, Capacity: 2, Occupants: []string{occupantID}},
			}}, nil
		},
	}
	h := NewProfileHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/v1/me/room", `{"room_id":"room_9"}`)
	if err := h.ReassignRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "room updated" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestProfileHandler_ReassignRoom_AlreadyAssigned(t *testing.T) {
	stub := &stubAllocationService{
		reassignFn: func(_ context.Context, occupantID, roomID string) (*ports.ReassignResult, error) {
			return &ports.ReassignResult{
				Profile:         &domain.Profile{Occupant: domain.Occupant{ID: occupantID, RoomID: roomID}},
				AlreadyAssigned: true,
			}, nil
		},
	}
	h := NewProfileHandler(stub)

	c, rec := newTestContext(t, http.MethodPut, "/v1/me/room", `{"room_id":"room_9"}`)
	if err := h.ReassignRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if msg, _ := resp["message"].(string); !strings.Contains(msg, "already assigned") {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestProfileHandler_ReassignRoom_FullPropagates(t *testing.T) {
	stub := &stubAllocationService{
		reassignFn: func(context.Context, string, string) (*ports.ReassignResult, error) {
			return nil, domain.ErrRoomFull
		},
	}
	h := NewProfileHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/v1/me/room", `{"room_id":"room_9"}`)
	if err := h.ReassignRoom(c); err != domain.ErrRoomFull {
		t.Fatalf("expected ErrRoomFull to propagate, got %v", err)
	}
}

func TestProfileHandler_ReassignRoom_MissingRoomID(t *testing.T) {
	stub := &stubAllocationService{
		reassignFn: func(context.Context, string, string) (*ports.ReassignResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewProfileHandler(stub)

	c, _ := newTestContext(t, http.MethodPut, "/v1/me/room", `{}`)
	err := h.ReassignRoom(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRoomHandler_List(t *testing.T) {
	stub := &stubAllocationService{
		listFn: func(_ context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
			if filter.Status != "available" {
				t.Fatalf("filter not forwarded: %+v", filter)
			}
			return []*domain.Room{{ID: "r1", Capacity: 2, Status: domain.RoomAvailable}}, nil
		},
	}
	h := NewRoomHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/rooms?status=available", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
