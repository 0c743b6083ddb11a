package domain

import "time"

// Verification methods accepted when marking attendance.
const (
	MethodFingerprint = "fingerprint"
	MethodOTP         = "otp"
)

// AttendanceStatus is the per-day state of an occupant. The only transition
// is NoRecord → Present; a record is never updated or deleted.
type AttendanceStatus string

const AttendancePresent AttendanceStatus = "present"

// AttendanceRecord is one successful attendance mark. Day is the calendar
// day key (YYYY-MM-DD) backing the storage-level uniqueness constraint on
// (student, day).
type AttendanceRecord struct {
	ID         string           `json:"id" bson:"_id,omitempty"`
	OccupantID string           `json:"occupant_id" bson:"student"`
	Date       time.Time        `json:"date" bson:"date"`
	Day        string           `json:"-" bson:"day"`
	VerifiedBy string           `json:"verified_by" bson:"verified_by"`
	Status     AttendanceStatus `json:"status" bson:"status"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
}

// DayKey buckets an instant into its local calendar day.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
