package data

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	StatusFree     = "Free"
	StatusAssigned = "Assigned"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrNoFreeRooms     = errors.New("no free rooms in category")
	ErrVersionConflict = errors.New("room was modified concurrently")
	ErrNotConfigured   = errors.New("room store is not configured")
)

// A claim or presence update that loses its optimistic write re-reads and
// tries again this many times before surfacing ErrVersionConflict.
const (
	maxClaimAttempts    = 3
	maxPresenceAttempts = 3
)

type Room struct {
	Category                string `json:"category"`
	ID                      string `json:"id"`
	Version                 int64  `json:"-"`
	Status                  string `json:"status"`
	Link                    string `json:"link"`
	AssignedParticipantID   string `json:"assigned_participant_id,omitempty"`
	AssignedParticipantName string `json:"assigned_participant_name,omitempty"`
	OrganizerPresent        bool   `json:"organizer_present"`
	ParticipantPresent      bool   `json:"participant_present"`
}

func NewRoom(category, id, link string) (*Room, error) {
	if category == "" {
		return nil, errors.New("room requires a category")
	}
	if id == "" {
		return nil, errors.New("room requires an id")
	}
	return &Room{
		Category: category,
		ID:       id,
		Status:   StatusFree,
		Link:     link,
	}, nil
}

// RoomID derives the pool-unique id for the nth room of a category. The id
// doubles as the meeting correlation key presence events arrive under.
func RoomID(category string, ordinal int) string {
	return fmt.Sprintf("Room_%s_%d", category, ordinal)
}

type PresenceResult int

const (
	PresenceUnchanged PresenceResult = iota
	PresenceUpdated
)

type RoomModel struct {
	Store    RoomStore
	Logger   *zap.Logger
	LinkBase string
}

// FindAndClaim picks a free room in the category and assigns it to the
// participant. The claim is a conditional write against the version read
// during the search, so of two callers racing for the same room exactly one
// wins; the loser moves on to the next free candidate.
func (m *RoomModel) FindAndClaim(ctx context.Context, category, participantID, participantName string) (*Room, error) {
	if m.Store == nil {
		return nil, ErrNotConfigured
	}

	lost := make(map[string]bool)
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		rooms, err := m.Store.ListFree(ctx, category)
		if err != nil {
			return nil, err
		}

		var candidate *Room
		for _, room := range rooms {
			if !lost[room.ID] {
				candidate = room
				break
			}
		}
		if candidate == nil {
			return nil, ErrNoFreeRooms
		}

		claimed := *candidate
		claimed.Status = StatusAssigned
		claimed.AssignedParticipantID = participantID
		claimed.AssignedParticipantName = participantName
		claimed.OrganizerPresent = false
		claimed.ParticipantPresent = false

		err = m.Store.ConditionalUpdate(ctx, &claimed, candidate.Version)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lost[candidate.ID] = true
				continue
			}
			return nil, err
		}

		m.Logger.Info("assigned room",
			zap.String("room", claimed.ID),
			zap.String("participant_id", participantID),
			zap.String("participant_name", participantName),
		)
		return &claimed, nil
	}

	return nil, ErrVersionConflict
}

// GetRoom looks a room up by its meeting correlation id. The returned room is
// a snapshot; callers that mutate must re-validate status and version first.
func (m *RoomModel) GetRoom(ctx context.Context, id string) (*Room, error) {
	if m.Store == nil {
		return nil, ErrNotConfigured
	}
	return m.Store.Get(ctx, id)
}

// RecordPresence applies a join/leave event for one of the two expected
// occupants. The assigned participant toggles the participant flag; any other
// identity is assumed to be the organizer. A leave event that clears both
// flags frees the room. Duplicate events are no-ops.
func (m *RoomModel) RecordPresence(ctx context.Context, id, userID string, isJoining bool) (*Room, PresenceResult, error) {
	if m.Store == nil {
		return nil, PresenceUnchanged, ErrNotConfigured
	}

	for attempt := 0; attempt < maxPresenceAttempts; attempt++ {
		room, err := m.Store.Get(ctx, id)
		if err != nil {
			return nil, PresenceUnchanged, err
		}

		updated := *room
		if userID == updated.AssignedParticipantID {
			if updated.ParticipantPresent == isJoining {
				return room, PresenceUnchanged, nil
			}
			updated.ParticipantPresent = isJoining
		} else {
			if updated.OrganizerPresent == isJoining {
				return room, PresenceUnchanged, nil
			}
			updated.OrganizerPresent = isJoining
		}

		// Only a leave event can free the room. A join that observes both
		// flags false must never trigger the transition.
		if !isJoining && updated.Status == StatusAssigned &&
			!updated.OrganizerPresent && !updated.ParticipantPresent {
			updated.Status = StatusFree
			updated.AssignedParticipantID = ""
			updated.AssignedParticipantName = ""
		}

		err = m.Store.ConditionalUpdate(ctx, &updated, room.Version)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, PresenceUnchanged, err
		}

		if updated.Status == StatusFree {
			m.Logger.Info("room freed", zap.String("room", updated.ID))
		}
		return &updated, PresenceUpdated, nil
	}

	return nil, PresenceUnchanged, ErrVersionConflict
}

// InitializeRooms re-seeds the whole pool to the all-free baseline. Every
// room is overwritten unconditionally, including rooms currently assigned;
// the overwrite is logged so the administrative window stays visible. The
// first store error aborts the remaining writes.
func (m *RoomModel) InitializeRooms(ctx context.Context, categories []string, perCategory int) error {
	if m.Store == nil {
		return ErrNotConfigured
	}

	err := m.Store.EnsureTable(ctx)
	if err != nil {
		return err
	}

	for _, category := range categories {
		for i := 1; i <= perCategory; i++ {
			room, err := NewRoom(category, RoomID(category, i), m.roomLink(category, i))
			if err != nil {
				return err
			}

			existing, err := m.Store.Get(ctx, room.ID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			if existing != nil && existing.Status == StatusAssigned {
				m.Logger.Warn("pool reset is overwriting an assigned room",
					zap.String("room", room.ID),
					zap.String("participant_id", existing.AssignedParticipantID),
				)
			}

			err = m.Store.Upsert(ctx, room)
			if err != nil {
				return err
			}
		}
	}

	m.Logger.Info("rooms initialized", zap.Int("count", len(categories)*perCategory))
	return nil
}

func (m *RoomModel) roomLink(category string, ordinal int) string {
	return fmt.Sprintf("%s/mock_link_%s_%d", m.LinkBase, category, ordinal)
}
