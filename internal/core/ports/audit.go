package ports

import (
	"context"
	"time"
)

// Audit event kinds.
const (
	AuditRoomReassigned   = "room_reassigned"
	AuditAttendanceMarked = "attendance_marked"
)

// AuditEvent is an append-only trail entry describing a completed core
// operation.
type AuditEvent struct {
	OccupantID string
	Kind       string
	Detail     map[string]string
	Timestamp  time.Time
}

// AuditRecorder accepts audit events for asynchronous persistence. Delivery
// is best effort; recording never fails the operation being audited.
type AuditRecorder interface {
	Record(event AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *AuditEvent) error
}
