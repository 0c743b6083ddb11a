package domain

// RoomStatus is derived from the occupant count: a room is available while
// it has at least one free seat and full once occupants == capacity.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomFull      RoomStatus = "full"
)

// Room is a finite-capacity room aggregate. The occupant set never exceeds
// capacity; the Allocation service is the only writer of Occupants/Status.
type Room struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Block     string     `json:"block,omitempty" bson:"block,omitempty"`
	Capacity  int        `json:"capacity" bson:"capacity"`
	Occupants []string   `json:"occupants" bson:"occupants"`
	Status    RoomStatus `json:"status" bson:"status"`
}

// DeriveStatus recomputes Status from the current occupant count.
func (r *Room) DeriveStatus() RoomStatus {
	if len(r.Occupants) < r.Capacity {
		return RoomAvailable
	}
	return RoomFull
}

// HasVacancy reports whether one more occupant fits.
func (r *Room) HasVacancy() bool {
	return len(r.Occupants) < r.Capacity
}

// HasOccupant reports whether the occupant is already in the room's set.
func (r *Room) HasOccupant(occupantID string) bool {
	for _, id := range r.Occupants {
		if id == occupantID {
			return true
		}
	}
	return false
}
