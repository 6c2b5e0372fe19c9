package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	corematch "github.com/example/roomsync/internal/core/match"
	"github.com/example/roomsync/internal/core/room"
	"github.com/example/roomsync/internal/ports/primary"
	"github.com/example/roomsync/internal/ports/secondary"
)

// LobbyServiceImpl implements the LobbyService interface.
type LobbyServiceImpl struct {
	roomRepo       secondary.RoomRepository
	membershipRepo secondary.MembershipRepository
	matchRepo      secondary.MatchRepository
	publisher      secondary.ChangePublisher
	logger         *zap.Logger
	newID          func() string
}

// NewLobbyService creates a new LobbyService with injected dependencies.
// A nil publisher persists writes without announcing them; trackers then rely on polling.
func NewLobbyService(
	roomRepo secondary.RoomRepository,
	membershipRepo secondary.MembershipRepository,
	matchRepo secondary.MatchRepository,
	publisher secondary.ChangePublisher,
	logger *zap.Logger,
) *LobbyServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LobbyServiceImpl{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		matchRepo:      matchRepo,
		publisher:      publisher,
		logger:         logger,
		newID:          uuid.NewString,
	}
}

// CreateRoom creates an open room and makes the requester its owner.
func (s *LobbyServiceImpl) CreateRoom(ctx context.Context, req primary.CreateRoomRequest) (*primary.Room, error) {
	code := room.NormalizeJoinCode(req.JoinCode)
	if code == "" {
		return nil, errors.New("join code is required")
	}
	if req.OwnerID == "" {
		return nil, errors.New("owner is required")
	}

	existing, err := s.roomRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check join code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("join code %s is already taken by room %s", code, existing.ID)
	}

	record := &secondary.RoomRecord{
		ID:       s.newID(),
		JoinCode: code,
		Status:   string(room.InitialStatus()),
		OwnerID:  req.OwnerID,
	}
	if err := s.roomRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	s.publish(ctx, roomChange(secondary.EventInsert, record))

	membership := &secondary.MembershipRecord{
		ID:     s.newID(),
		RoomID: record.ID,
		UserID: req.OwnerID,
		Role:   string(room.RoleOwner),
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add owner to room %s: %w", code, err)
	}
	s.publish(ctx, membershipChange(secondary.EventInsert, membership))

	return s.fetchRoom(ctx, record.ID)
}

// JoinRoom adds a user to a room by join code.
func (s *LobbyServiceImpl) JoinRoom(ctx context.Context, req primary.JoinRoomRequest) (*primary.Room, error) {
	if req.UserID == "" {
		return nil, errors.New("user is required")
	}
	code := room.NormalizeJoinCode(req.JoinCode)
	record, err := s.roomRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", code, err)
	}

	role := room.RolePlayer
	if req.Role != "" {
		role = room.ParseRole(req.Role)
	}

	joinCtx := room.JoinContext{JoinCode: code, RoomExists: record != nil, Role: role}
	if record != nil {
		joinCtx.Status = room.ParseStatus(record.Status)
	}
	if err := room.CanJoinRoom(joinCtx).Error(); err != nil {
		return nil, err
	}

	membership := &secondary.MembershipRecord{
		ID:     s.newID(),
		RoomID: record.ID,
		UserID: req.UserID,
		Role:   string(role),
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}
	s.publish(ctx, membershipChange(secondary.EventInsert, membership))

	return recordToRoom(record), nil
}

// StartRoom moves a room to in_progress.
func (s *LobbyServiceImpl) StartRoom(ctx context.Context, joinCode string) (*primary.Room, error) {
	return s.transitionRoom(ctx, joinCode, room.StatusInProgress)
}

// CloseRoom moves a room to closed.
func (s *LobbyServiceImpl) CloseRoom(ctx context.Context, joinCode string) (*primary.Room, error) {
	return s.transitionRoom(ctx, joinCode, room.StatusClosed)
}

// ListRooms lists rooms with optional filters, newest first.
func (s *LobbyServiceImpl) ListRooms(ctx context.Context, filters primary.RoomFilters) ([]*primary.Room, error) {
	records, err := s.roomRepo.List(ctx, secondary.RoomFilters{
		OwnerID: filters.OwnerID,
		Status:  filters.Status,
		Limit:   filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]*primary.Room, len(records))
	for i, r := range records {
		rooms[i] = recordToRoom(r)
	}
	return rooms, nil
}

// StartMatch creates a match in a room. An open room moves to in_progress with it.
func (s *LobbyServiceImpl) StartMatch(ctx context.Context, req primary.StartMatchRequest) (*primary.Match, error) {
	code := room.NormalizeJoinCode(req.JoinCode)
	record, err := s.roomRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", code, err)
	}
	if record == nil {
		return nil, fmt.Errorf("no room with code %s", code)
	}

	active, err := s.matchRepo.List(ctx, secondary.MatchFilters{
		RoomID:   record.ID,
		Statuses: preTerminalStatuses(),
		Limit:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check active match: %w", err)
	}
	activeID := ""
	if len(active) > 0 {
		activeID = active[0].ID
	}

	status := room.ParseStatus(record.Status)
	guard := corematch.CanStartMatch(corematch.StartContext{
		JoinCode:         code,
		RoomStatus:       string(status),
		ActiveMatchID:    activeID,
		RequesterIsOwner: req.RequesterID != "" && req.RequesterID == record.OwnerID,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	if status == room.StatusOpen {
		if err := room.CanStartRoom(record.ID, code, status).Error(); err != nil {
			return nil, err
		}
		if err := s.roomRepo.UpdateStatus(ctx, record.ID, string(room.StatusInProgress)); err != nil {
			return nil, fmt.Errorf("failed to start room %s: %w", code, err)
		}
		record.Status = string(room.StatusInProgress)
		s.publish(ctx, roomChange(secondary.EventUpdate, record))
	}

	m := &secondary.MatchRecord{
		ID:     s.newID(),
		RoomID: record.ID,
		Status: string(corematch.InitialStatus()),
	}
	if err := s.matchRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	s.publish(ctx, matchChange(secondary.EventInsert, m))

	return s.fetchMatch(ctx, m.ID)
}

// FinishMatch moves a match to finished, or abandoned when req.Abandon is set.
func (s *LobbyServiceImpl) FinishMatch(ctx context.Context, req primary.FinishMatchRequest) (*primary.Match, error) {
	record, err := s.matchRepo.GetByID(ctx, req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up match %s: %w", req.MatchID, err)
	}
	if record == nil {
		return nil, fmt.Errorf("match %s not found", req.MatchID)
	}

	current, ok := corematch.ParseStatus(record.Status)
	if !ok {
		return nil, fmt.Errorf("match %s has unrecognized status %q", record.ID, record.Status)
	}
	target := corematch.StatusFinished
	if req.Abandon {
		target = corematch.StatusAbandoned
	}
	guard := corematch.CanFinishMatch(corematch.FinishContext{MatchID: record.ID, Status: current, Target: target})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateStatus(ctx, record.ID, string(target)); err != nil {
		return nil, fmt.Errorf("failed to finish match %s: %w", record.ID, err)
	}
	record.Status = string(target)
	s.publish(ctx, matchChange(secondary.EventUpdate, record))

	return s.fetchMatch(ctx, record.ID)
}

func (s *LobbyServiceImpl) transitionRoom(ctx context.Context, joinCode string, to room.Status) (*primary.Room, error) {
	code := room.NormalizeJoinCode(joinCode)
	record, err := s.roomRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", code, err)
	}
	if record == nil {
		return nil, fmt.Errorf("no room with code %s", code)
	}

	guard := room.CanTransition(room.TransitionContext{
		RoomID:     record.ID,
		JoinCode:   code,
		FromStatus: room.ParseStatus(record.Status),
		ToStatus:   to,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	if err := s.roomRepo.UpdateStatus(ctx, record.ID, string(to)); err != nil {
		return nil, fmt.Errorf("failed to move room %s to %s: %w", code, to, err)
	}
	record.Status = string(to)
	s.publish(ctx, roomChange(secondary.EventUpdate, record))

	return s.fetchRoom(ctx, record.ID)
}

// publish announces a persisted write. Failures are logged only: the write already
// happened and trackers fall back to polling.
func (s *LobbyServiceImpl) publish(ctx context.Context, c secondary.Change) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, c); err != nil {
		s.logger.Warn("failed to publish change",
			zap.String("table", c.Table),
			zap.String("event", c.Event),
			zap.Error(err),
		)
	}
}

func (s *LobbyServiceImpl) fetchRoom(ctx context.Context, id string) (*primary.Room, error) {
	record, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	return recordToRoom(record), nil
}

func (s *LobbyServiceImpl) fetchMatch(ctx context.Context, id string) (*primary.Match, error) {
	record, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("match %s not found", id)
	}
	return &primary.Match{
		ID:        record.ID,
		RoomID:    record.RoomID,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}, nil
}

func recordToRoom(r *secondary.RoomRecord) *primary.Room {
	return &primary.Room{
		ID:        r.ID,
		JoinCode:  r.JoinCode,
		Status:    r.Status,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
	}
}

func preTerminalStatuses() []string {
	statuses := corematch.PreTerminalStatuses()
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func roomChange(event string, r *secondary.RoomRecord) secondary.Change {
	return secondary.Change{
		Table: secondary.TableRooms,
		Event: event,
		Row: map[string]string{
			"id":        r.ID,
			"join_code": r.JoinCode,
			"status":    r.Status,
			"owner_id":  r.OwnerID,
		},
	}
}

func membershipChange(event string, m *secondary.MembershipRecord) secondary.Change {
	return secondary.Change{
		Table: secondary.TableMemberships,
		Event: event,
		Row: map[string]string{
			"id":      m.ID,
			"room_id": m.RoomID,
			"user_id": m.UserID,
			"role":    m.Role,
		},
	}
}

func matchChange(event string, m *secondary.MatchRecord) secondary.Change {
	return secondary.Change{
		Table: secondary.TableMatches,
		Event: event,
		Row: map[string]string{
			"id":      m.ID,
			"room_id": m.RoomID,
			"status":  m.Status,
		},
	}
}

// Ensure LobbyServiceImpl implements the interface
var _ primary.LobbyService = (*LobbyServiceImpl)(nil)
