package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hostelhub/hostel-system/internal/core/domain"
	"github.com/hostelhub/hostel-system/internal/core/ports"
)

// AllocationService coordinates occupant movement between rooms. All
// mutations of a reassignment (target room, old room, occupant pointer) are
// applied inside one transaction so the cross-document invariant, that the
// occupant's room pointer agrees with exactly zero or one occupant set,
// survives crashes and concurrent reassignments.
type AllocationService struct {
	rooms     ports.RoomRepository
	occupants ports.OccupantRepository
	txn       ports.TxnRunner
	audit     ports.AuditRecorder
	logger    zerolog.Logger
}

func NewAllocationService(
	rooms ports.RoomRepository,
	occupants ports.OccupantRepository,
	txn ports.TxnRunner,
	audit ports.AuditRecorder,
	logger zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		rooms:     rooms,
		occupants: occupants,
		txn:       txn,
		audit:     audit,
		logger:    logger,
	}
}

// ReassignRoom moves the occupant into targetRoomID. Reassigning to the
// current room is a successful no-op flagged AlreadyAssigned. The capacity
// check and the occupant-set mutation run inside the same transaction, and
// the storage layer re-checks capacity at write time, so two occupants
// racing for the last free seat cannot both win.
func (s *AllocationService) ReassignRoom(ctx context.Context, occupantID, targetRoomID string) (*ports.ReassignResult, error) {
	var result ports.ReassignResult

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		occupant, err := s.occupants.FindByID(ctx, occupantID)
		if err != nil {
			return err
		}

		if occupant.RoomID == targetRoomID {
			profile, err := s.resolveProfile(ctx, occupant)
			if err != nil {
				return err
			}
			result = ports.ReassignResult{Profile: profile, AlreadyAssigned: true}
			return nil
		}

		target, err := s.rooms.FindByID(ctx, targetRoomID)
		if err != nil {
			return err
		}
		if !target.HasVacancy() && !target.HasOccupant(occupantID) {
			return domain.ErrRoomFull
		}

		if err := s.rooms.AddOccupant(ctx, target.ID, occupantID); err != nil {
			return err
		}
		if occupant.RoomID != "" {
			if err := s.rooms.RemoveOccupant(ctx, occupant.RoomID, occupantID); err != nil {
				return err
			}
		}
		if err := s.occupants.SetRoom(ctx, occupantID, targetRoomID); err != nil {
			return err
		}

		occupant.RoomID = targetRoomID
		profile, err := s.resolveProfile(ctx, occupant)
		if err != nil {
			return err
		}
		result = ports.ReassignResult{Profile: profile}
		return nil
	})
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		s.logger.Error().Err(err).
			Str("occupant_id", occupantID).
			Str("room_id", targetRoomID).
			Msg("room reassignment aborted")
		return nil, fmt.Errorf("%w: reassign room: %v", domain.ErrStorage, err)
	}

	if !result.AlreadyAssigned {
		s.logger.Info().
			Str("occupant_id", occupantID).
			Str("room_id", targetRoomID).
			Msg("occupant reassigned")
		s.audit.Record(ports.AuditEvent{
			OccupantID: occupantID,
			Kind:       ports.AuditRoomReassigned,
			Detail:     map[string]string{"room_id": targetRoomID},
		})
	}
	return &result, nil
}

// ListRooms returns rooms matching the optional status filter.
func (s *AllocationService) ListRooms(ctx context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
	if filter.Status != "" &&
		filter.Status != string(domain.RoomAvailable) &&
		filter.Status != string(domain.RoomFull) {
		return nil, domain.ErrInvalidStatus
	}
	rooms, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", domain.ErrStorage, err)
	}
	return rooms, nil
}

// GetProfile returns the occupant with the room pointer resolved.
func (s *AllocationService) GetProfile(ctx context.Context, occupantID string) (*domain.Profile, error) {
	occupant, err := s.occupants.FindByID(ctx, occupantID)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get profile: %v", domain.ErrStorage, err)
	}
	profile, err := s.resolveProfile(ctx, occupant)
	if err != nil {
		if isDomainErr(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get profile: %v", domain.ErrStorage, err)
	}
	return profile, nil
}

func (s *AllocationService) resolveProfile(ctx context.Context, occupant *domain.Occupant) (*domain.Profile, error) {
	profile := &domain.Profile{Occupant: *occupant}
	if occupant.RoomID == "" {
		return profile, nil
	}
	room, err := s.rooms.FindByID(ctx, occupant.RoomID)
	if err != nil {
		// A dangling pointer is inconsistent prior state, not a caller error.
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.logger.Warn().
				Str("occupant_id", occupant.ID).
				Str("room_id", occupant.RoomID).
				Msg("occupant points at missing room")
			return profile, nil
		}
		return nil, err
	}
	profile.Room = room
	return profile, nil
}

// isDomainErr reports whether err is one of the caller-facing kinds that
// must not be re-wrapped as a storage failure.
func isDomainErr(err error) bool {
	return errors.Is(err, domain.ErrRoomNotFound) ||
		errors.Is(err, domain.ErrOccupantNotFound) ||
		errors.Is(err, domain.ErrRoomFull)
}
