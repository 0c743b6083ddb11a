package domain

import "time"

const (
	RoleStudent = "student"
	RoleWarden  = "warden"
)

// Occupant models a hostel resident (and authenticated actor). RoomID is the
// single source of truth for the resident's current room; it must always
// agree with membership in exactly zero or one room's occupant set.
type Occupant struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	FullName     string    `json:"full_name" bson:"full_name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	SapID        string    `json:"sap_id" bson:"sap_id"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	RoomID       string    `json:"room_id,omitempty" bson:"room,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Profile is the occupant view returned by read operations and by a
// successful reassignment, with the room pointer resolved.
type Profile struct {
	Occupant
	Room *Room `json:"room,omitempty"`
}
