package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newStubRoomRepo(rooms ...*domain.Room) *stubRoomRepo {
	r := &stubRoomRepo{rooms: make(map[string]*domain.Room)}
	for _, room := range rooms {
		clone := *room
		clone.Occupants = append([]string(nil), room.Occupants...)
		clone.Status = clone.DeriveStatus()
		r.rooms[room.ID] = &clone
	}
	return r
}

func (r *stubRoomRepo) FindByID(_ context.Context, id string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	clone := *room
	clone.Occupants = append([]string(nil), room.Occupants...)
	return &clone, nil
}

func (r *stubRoomRepo) List(_ context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Room
	for _, room := range r.rooms {
		if filter.Status != "" && string(room.Status) != filter.Status {
			continue
		}
		clone := *room
		out = append(out, &clone)
	}
	return out, nil
}

// AddOccupant mirrors the guarded Mongo update: the capacity check and the
// set mutation happen under one lock.
func (r *stubRoomRepo) AddOccupant(_ context.Context, roomID, occupantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.HasOccupant(occupantID) {
		return nil
	}
	if !room.HasVacancy() {
		return domain.ErrRoomFull
	}
	room.Occupants = append(room.Occupants, occupantID)
	room.Status = room.DeriveStatus()
	return nil
}

func (r *stubRoomRepo) RemoveOccupant(_ context.Context, roomID, occupantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	kept := room.Occupants[:0]
	for _, id := range room.Occupants {
		if id != occupantID {
			kept = append(kept, id)
		}
	}
	room.Occupants = kept
	room.Status = room.DeriveStatus()
	return nil
}

func (r *stubRoomRepo) snapshot() map[string]*domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*domain.Room, len(r.rooms))
	for id, room := range r.rooms {
		clone := *room
		clone.Occupants = append([]string(nil), room.Occupants...)
		snap[id] = &clone
	}
	return snap
}

func (r *stubRoomRepo) restore(snap map[string]*domain.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = snap
}

type stubOccupantRepo struct {
	mu         sync.Mutex
	occupants  map[string]*domain.Occupant
	setRoomErr error
}

func newStubOccupantRepo(occupants ...*domain.Occupant) *stubOccupantRepo {
	r := &stubOccupantRepo{occupants: make(map[string]*domain.Occupant)}
	for _, o := range occupants {
		clone := *o
		r.occupants[o.ID] = &clone
	}
	return r
}

func (r *stubOccupantRepo) FindByID(_ context.Context, id string) (*domain.Occupant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.occupants[id]
	if !ok {
		return nil, domain.ErrOccupantNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOccupantRepo) SetRoom(_ context.Context, occupantID, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setRoomErr != nil {
		return r.setRoomErr
	}
	o, ok := r.occupants[occupantID]
	if !ok {
		return domain.ErrOccupantNotFound
	}
	o.RoomID = roomID
	return nil
}

func (r *stubOccupantRepo) snapshot() map[string]*domain.Occupant {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[string]*domain.Occupant, len(r.occupants))
	for id, o := range r.occupants {
		clone := *o
		snap[id] = &clone
	}
	return snap
}

func (r *stubOccupantRepo) restore(snap map[string]*domain.Occupant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occupants = snap
}

// stubTxn serializes transactions and rolls repository state back when fn
// fails, mirroring the all-or-nothing guarantee of the Mongo runner.
type stubTxn struct {
	mu        sync.Mutex
	rooms     *stubRoomRepo
	occupants *stubOccupantRepo
}

func (t *stubTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	roomSnap := t.rooms.snapshot()
	occSnap := t.occupants.snapshot()
	if err := fn(ctx); err != nil {
		t.rooms.restore(roomSnap)
		t.occupants.restore(occSnap)
		return err
	}
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []ports.AuditEvent
}

func (a *recordingAudit) Record(event ports.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

var discardLogger = zerolog.Nop()

func newAllocationFixture(rooms []*domain.Room, occupants []*domain.Occupant) (*AllocationService, *stubRoomRepo, *stubOccupantRepo, *recordingAudit) {
	roomRepo := newStubRoomRepo(rooms...)
	occRepo := newStubOccupantRepo(occupants...)
	txn := &stubTxn{rooms: roomRepo, occupants: occRepo}
	audit := &recordingAudit{}
	svc := NewAllocationService(roomRepo, occRepo, txn, audit, discardLogger)
	return svc, roomRepo, occRepo, audit
}

func roomCount(t *testing.T, repo *stubRoomRepo, id string) int {
	t.Helper()
	room, err := repo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("room %s: %v", id, err)
	}
	return len(room.Occupants)
}

// ---------------------------------------------------------------------------
// ReassignRoom
// ---------------------------------------------------------------------------

func TestReassignRoom_MoveBetweenRooms(t *testing.T) {
	svc, rooms, occupants, audit := newAllocationFixture(
		[]*domain.Room{
			{ID: "roomA", Capacity: 2, Occupants: []string{"stu1"}},
			{ID: "roomB", Capacity: 3, Occupants: []string{"stu2"}},
		},
		[]*domain.Occupant{
			{ID: "stu1", RoomID: "roomA"},
			{ID: "stu2", RoomID: "roomB"},
		},
	)

	result, err := svc.ReassignRoom(context.Background(), "stu1", "roomB")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if result.AlreadyAssigned {
		t.Fatalf("expected a real move, got AlreadyAssigned")
	}
	if result.Profile.RoomID != "roomB" || result.Profile.Room == nil || result.Profile.Room.ID != "roomB" {
		t.Fatalf("profile room not resolved: %+v", result.Profile)
	}

	oldRoom, _ := rooms.FindByID(context.Background(), "roomA")
	if len(oldRoom.Occupants) != 0 || oldRoom.Status != domain.RoomAvailable {
		t.Fatalf("old room not vacated: %+v", oldRoom)
	}
	newRoom, _ := rooms.FindByID(context.Background(), "roomB")
	if len(newRoom.Occupants) != 2 || newRoom.Status != domain.RoomAvailable {
		t.Fatalf("new room wrong: %+v", newRoom)
	}
	stored, _ := occupants.FindByID(context.Background(), "stu1")
	if stored.RoomID != "roomB" {
		t.Fatalf("pointer not updated: %q", stored.RoomID)
	}
	if len(audit.events) != 1 || audit.events[0].Kind != ports.AuditRoomReassigned {
		t.Fatalf("expected one audit event, got %+v", audit.events)
	}
}

func TestReassignRoom_StatusBecomesFull(t *testing.T) {
	svc, rooms, _, _ := newAllocationFixture(
		[]*domain.Room{{ID: "roomB", Capacity: 2, Occupants: []string{"stuA"}}},
		[]*domain.Occupant{{ID: "stuB"}},
	)

	if _, err := svc.ReassignRoom(context.Background(), "stuB", "roomB"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	room, _ := rooms.FindByID(context.Background(), "roomB")
	if len(room.Occupants) != 2 || room.Status != domain.RoomFull {
		t.Fatalf("expected full room with 2 occupants, got %+v", room)
	}
}

func TestReassignRoom_AlreadyThereIsNoop(t *testing.T) {
	svc, rooms, _, audit := newAllocationFixture(
		[]*domain.Room{{ID: "roomA", Capacity: 2, Occupants: []string{"stu1"}}},
		[]*domain.Occupant{{ID: "stu1", RoomID: "roomA"}},
	)

	result, err := svc.ReassignRoom(context.Background(), "stu1", "roomA")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if !result.AlreadyAssigned {
		t.Fatalf("expected AlreadyAssigned")
	}
	if got := roomCount(t, rooms, "roomA"); got != 1 {
		t.Fatalf("occupant count changed: %d", got)
	}
	if len(audit.events) != 0 {
		t.Fatalf("no-op must not be audited: %+v", audit.events)
	}
}

func TestReassignRoom_TargetNotFound(t *testing.T) {
	svc, _, _, _ := newAllocationFixture(
		nil,
		[]*domain.Occupant{{ID: "stu1"}},
	)

	_, err := svc.ReassignRoom(context.Background(), "stu1", "ghost")
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestReassignRoom_RoomFull(t *testing.T) {
	svc, rooms, _, _ := newAllocationFixture(
		[]*domain.Room{{ID: "roomB", Capacity: 2, Occupants: []string{"stuA", "stuB"}}},
		[]*domain.Occupant{{ID: "stuC"}},
	)

	_, err := svc.ReassignRoom(context.Background(), "stuC", "roomB")
	if !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if got := roomCount(t, rooms, "roomB"); got != 2 {
		t.Fatalf("full room mutated: %d occupants", got)
	}
}

func TestReassignRoom_RollbackOnStorageFailure(t *testing.T) {
	svc, rooms, occupants, _ := newAllocationFixture(
		[]*domain.Room{
			{ID: "roomA", Capacity: 2, Occupants: []string{"stu1"}},
			{ID: "roomB", Capacity: 2},
		},
		[]*domain.Occupant{{ID: "stu1", RoomID: "roomA"}},
	)
	occupants.setRoomErr = errors.New("connection reset")

	_, err := svc.ReassignRoom(context.Background(), "stu1", "roomB")
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	// No partial mutation may be observable after the abort.
	if got := roomCount(t, rooms, "roomA"); got != 1 {
		t.Fatalf("roomA mutated after rollback: %d", got)
	}
	if got := roomCount(t, rooms, "roomB"); got != 0 {
		t.Fatalf("roomB mutated after rollback: %d", got)
	}
	stored, _ := occupants.FindByID(context.Background(), "stu1")
	if stored.RoomID != "roomA" {
		t.Fatalf("pointer mutated after rollback: %q", stored.RoomID)
	}
}

func TestReassignRoom_LastSeatRace(t *testing.T) {
	svc, rooms, _, _ := newAllocationFixture(
		[]*domain.Room{{ID: "roomB", Capacity: 2, Occupants: []string{"stuA"}}},
		[]*domain.Occupant{{ID: "stuB"}, {ID: "stuC"}},
	)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []string{"stuB", "stuC"} {
		wg.Add(1)
		go func(occupantID string) {
			defer wg.Done()
			_, err := svc.ReassignRoom(context.Background(), occupantID, "roomB")
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var wins, fulls int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrRoomFull):
			fulls++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || fulls != 1 {
		t.Fatalf("expected exactly one winner, got %d wins / %d full", wins, fulls)
	}
	if got := roomCount(t, rooms, "roomB"); got != 2 {
		t.Fatalf("capacity invariant broken: %d occupants", got)
	}
}

func TestReassignRoom_CapacityHoldsOverSequence(t *testing.T) {
	svc, rooms, _, _ := newAllocationFixture(
		[]*domain.Room{
			{ID: "r1", Capacity: 1},
			{ID: "r2", Capacity: 2},
		},
		[]*domain.Occupant{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
	)

	moves := []struct{ occupant, room string }{
		{"s1", "r1"}, {"s2", "r2"}, {"s3", "r2"},
		{"s1", "r2"}, // full, must fail
		{"s2", "r1"}, // r1 occupied by s1, must fail
		{"s1", "r1"}, // no-op
	}
	for _, m := range moves {
		_, _ = svc.ReassignRoom(context.Background(), m.occupant, m.room)
	}

	for _, id := range []string{"r1", "r2"} {
		room, _ := rooms.FindByID(context.Background(), id)
		if len(room.Occupants) > room.Capacity {
			t.Fatalf("room %s over capacity: %d > %d", id, len(room.Occupants), room.Capacity)
		}
		if room.Status != room.DeriveStatus() {
			t.Fatalf("room %s stale status %s", id, room.Status)
		}
	}
}

// ---------------------------------------------------------------------------
// ListRooms / GetProfile
// ---------------------------------------------------------------------------

func TestListRooms_FilterByStatus(t *testing.T) {
	svc, _, _, _ := newAllocationFixture(
		[]*domain.Room{
			{ID: "r1", Capacity: 1, Occupants: []string{"s1"}},
			{ID: "r2", Capacity: 2, Occupants: []string{"s2"}},
		},
		nil,
	)

	full, err := svc.ListRooms(context.Background(), ports.RoomFilter{Status: "full"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(full) != 1 || full[0].ID != "r1" {
		t.Fatalf("unexpected full rooms: %+v", full)
	}

	if _, err := svc.ListRooms(context.Background(), ports.RoomFilter{Status: "booked"}); err == nil {
		t.Fatalf("expected error for unknown status filter")
	}
}

func TestGetProfile_DanglingRoomPointer(t *testing.T) {
	svc, _, _, _ := newAllocationFixture(
		nil,
		[]*domain.Occupant{{ID: "stu1", RoomID: "gone"}},
	)

	profile, err := svc.GetProfile(context.Background(), "stu1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Room != nil {
		t.Fatalf("expected unresolved room, got %+v", profile.Room)
	}
}
