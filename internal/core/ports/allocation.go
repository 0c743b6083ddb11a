package ports

import (
	"context"

	"github.com/hostelhub/hostel-system/internal/core/domain"
)

// RoomFilter carries the optional query parameters for listing rooms.
type RoomFilter struct {
	Status string // "" = no filter, otherwise "available" or "full"
}

// ReassignResult is returned by a successful room reassignment.
type ReassignResult struct {
	Profile *domain.Profile
	// AlreadyAssigned is true when the occupant already held the target room
	// and no mutation was performed.
	AlreadyAssigned bool
}

// AllocationService moves occupants between finite-capacity rooms.
type AllocationService interface {
	ReassignRoom(ctx context.Context, occupantID, targetRoomID string) (*ReassignResult, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]*domain.Room, error)
	GetProfile(ctx context.Context, occupantID string) (*domain.Profile, error)
}

// RoomRepository defines persistence operations for rooms. Mutating calls
// must honour the transaction scope carried in ctx by the TxnRunner.
type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]*domain.Room, error)
	// AddOccupant adds occupantID to the room's occupant set and recomputes
	// the room status in a single guarded update. The add is rejected with
	// domain.ErrRoomFull when the set is at capacity, and is a no-op when the
	// occupant is already present.
	AddOccupant(ctx context.Context, roomID, occupantID string) error
	// RemoveOccupant removes occupantID from the room's occupant set and
	// recomputes the room status. Removing an absent occupant is a no-op.
	RemoveOccupant(ctx context.Context, roomID, occupantID string) error
}

// OccupantRepository defines persistence operations for occupant records.
type OccupantRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Occupant, error)
	// SetRoom updates the occupant's room pointer.
	SetRoom(ctx context.Context, occupantID, roomID string) error
}

// TxnRunner executes fn inside one atomic transaction: every store call made
// with the ctx passed to fn either commits as a unit or rolls back entirely.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
