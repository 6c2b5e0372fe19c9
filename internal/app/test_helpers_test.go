package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/example/roomsync/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// clock hands out increasing timestamps so "newest first" is deterministic in mocks.
type clock struct {
	mu  sync.Mutex
	seq int
}

func (c *clock) next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("2026-01-01 00:00:%06.3f", float64(c.seq)/1000)
}

// mockMembershipRepository implements secondary.MembershipRepository for testing.
type mockMembershipRepository struct {
	mu          sync.Mutex
	clock       *clock
	memberships []*secondary.MembershipRecord
	createErr   error
	listErr     error
	rejoinErr   error
	listCalls   int
	rejoins     []secondary.RejoinRecord
}

func newMockMembershipRepository(c *clock) *mockMembershipRepository {
	return &mockMembershipRepository{clock: c}
}

func (m *mockMembershipRepository) Create(ctx context.Context, membership *secondary.MembershipRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if membership.JoinedAt == "" {
		membership.JoinedAt = m.clock.next()
	}
	copied := *membership
	m.memberships = append(m.memberships, &copied)
	return nil
}

func (m *mockMembershipRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*secondary.MembershipRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.MembershipRecord
	for _, ms := range m.memberships {
		if ms.UserID == userID {
			copied := *ms
			result = append(result, &copied)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].JoinedAt > result[j].JoinedAt })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockMembershipRepository) Rejoin(ctx context.Context, rejoin secondary.RejoinRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejoinErr != nil {
		return m.rejoinErr
	}
	m.rejoins = append(m.rejoins, rejoin)
	for _, ms := range m.memberships {
		if ms.UserID == rejoin.UserID && ms.RoomID == rejoin.FromRoomID {
			ms.RoomID = rejoin.ToRoomID
			ms.Role = rejoin.Role
			ms.JoinedAt = m.clock.next()
			return nil
		}
	}
	m.memberships = append(m.memberships, &secondary.MembershipRecord{
		ID:       fmt.Sprintf("M-%d", len(m.memberships)+1),
		RoomID:   rejoin.ToRoomID,
		UserID:   rejoin.UserID,
		Role:     rejoin.Role,
		JoinedAt: m.clock.next(),
	})
	return nil
}

func (m *mockMembershipRepository) remove(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.memberships[:0]
	for _, ms := range m.memberships {
		if ms.UserID != userID {
			kept = append(kept, ms)
		}
	}
	m.memberships = kept
}

func (m *mockMembershipRepository) setListErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func (m *mockMembershipRepository) rejoinCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rejoins)
}

// mockRoomRepository implements secondary.RoomRepository for testing.
type mockRoomRepository struct {
	mu        sync.Mutex
	clock     *clock
	rooms     map[string]*secondary.RoomRecord
	createErr error
	getErr    error
	listErr   error
	updateErr error
}

func newMockRoomRepository(c *clock) *mockRoomRepository {
	return &mockRoomRepository{clock: c, rooms: make(map[string]*secondary.RoomRecord)}
}

func (m *mockRoomRepository) Create(ctx context.Context, r *secondary.RoomRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if r.CreatedAt == "" {
		r.CreatedAt = m.clock.next()
	}
	copied := *r
	m.rooms[r.ID] = &copied
	return nil
}

func (m *mockRoomRepository) GetByID(ctx context.Context, id string) (*secondary.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.rooms[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *mockRoomRepository) GetByJoinCode(ctx context.Context, joinCode string) (*secondary.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, r := range m.rooms {
		if r.JoinCode == joinCode {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockRoomRepository) List(ctx context.Context, filters secondary.RoomFilters) ([]*secondary.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.RoomRecord
	for _, r := range m.rooms {
		if filters.OwnerID != "" && r.OwnerID != filters.OwnerID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.ExcludeID != "" && r.ID == filters.ExcludeID {
			continue
		}
		copied := *r
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt > result[j].CreatedAt })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockRoomRepository) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.rooms[id]
	if !ok {
		return fmt.Errorf("room %s not found", id)
	}
	r.Status = status
	return nil
}

func (m *mockRoomRepository) setStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[id].Status = status
}

// mockMatchRepository implements secondary.MatchRepository for testing.
type mockMatchRepository struct {
	mu        sync.Mutex
	clock     *clock
	matches   []*secondary.MatchRecord
	createErr error
	listErr   error
	updateErr error
}

func newMockMatchRepository(c *clock) *mockMatchRepository {
	return &mockMatchRepository{clock: c}
}

func (m *mockMatchRepository) Create(ctx context.Context, match *secondary.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if match.CreatedAt == "" {
		match.CreatedAt = m.clock.next()
	}
	copied := *match
	m.matches = append(m.matches, &copied)
	return nil
}

func (m *mockMatchRepository) GetByID(ctx context.Context, id string) (*secondary.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, match := range m.matches {
		if match.ID == id {
			copied := *match
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockMatchRepository) List(ctx context.Context, filters secondary.MatchFilters) ([]*secondary.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.MatchRecord
	for _, match := range m.matches {
		if filters.RoomID != "" && match.RoomID != filters.RoomID {
			continue
		}
		if len(filters.Statuses) > 0 && !contains(filters.Statuses, match.Status) {
			continue
		}
		copied := *match
		result = append(result, &copied)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt > result[j].CreatedAt })
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (m *mockMatchRepository) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, match := range m.matches {
		if match.ID == id {
			match.Status = status
			return nil
		}
	}
	return fmt.Errorf("match %s not found", id)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// mockIdentityProvider implements secondary.IdentityProvider for testing.
type mockIdentityProvider struct {
	userID string
	err    error
}

func (m *mockIdentityProvider) CurrentUserID(ctx context.Context) (string, error) {
	return m.userID, m.err
}

// mockNavigator implements secondary.Navigator for testing.
type mockNavigator struct {
	mu         sync.Mutex
	location   string
	replaced   []string
	replaceErr error
}

func newMockNavigator(location string) *mockNavigator {
	return &mockNavigator{location: location}
}

func (m *mockNavigator) Location() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.location
}

func (m *mockNavigator) Replace(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = append(m.replaced, path)
	m.location = path
	return nil
}

func (m *mockNavigator) setLocation(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = path
}

func (m *mockNavigator) replacements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replaced...)
}

// mockSubscription implements secondary.Subscription for testing.
type mockSubscription struct {
	feed     *mockChangeFeed
	name     string
	bindings []secondary.Binding
	handler  secondary.ChangeHandler
	closed   bool
	closeErr error
}

func (s *mockSubscription) Close() error {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	s.closed = true
	return s.closeErr
}

// mockChangeFeed implements secondary.ChangeFeed for testing.
type mockChangeFeed struct {
	mu           sync.Mutex
	subs         []*mockSubscription
	subscribeErr error
	closeErr     error
}

func newMockChangeFeed() *mockChangeFeed {
	return &mockChangeFeed{}
}

func (f *mockChangeFeed) Subscribe(ctx context.Context, name string, bindings []secondary.Binding, handler secondary.ChangeHandler) (secondary.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	sub := &mockSubscription{feed: f, name: name, bindings: bindings, handler: handler, closeErr: f.closeErr}
	f.subs = append(f.subs, sub)
	return sub, nil
}

// deliver hands a change to every open subscription with a matching binding.
func (f *mockChangeFeed) deliver(c secondary.Change) {
	f.mu.Lock()
	var handlers []secondary.ChangeHandler
	for _, sub := range f.subs {
		if sub.closed {
			continue
		}
		for _, b := range sub.bindings {
			if b.Matches(c) {
				handlers = append(handlers, sub.handler)
				break
			}
		}
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(c)
	}
}

// openNames returns the names of subscriptions that are still open.
func (f *mockChangeFeed) openNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, sub := range f.subs {
		if !sub.closed {
			names = append(names, sub.name)
		}
	}
	return names
}

// subscribeCount returns how many subscriptions were ever opened under name.
func (f *mockChangeFeed) subscribeCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs {
		if sub.name == name {
			n++
		}
	}
	return n
}

// mockChangePublisher implements secondary.ChangePublisher for testing.
type mockChangePublisher struct {
	mu         sync.Mutex
	changes    []secondary.Change
	publishErr error
}

func (p *mockChangePublisher) Publish(ctx context.Context, c secondary.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.changes = append(p.changes, c)
	return nil
}

func (p *mockChangePublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.changes))
	for i, c := range p.changes {
		out[i] = c.Table + ":" + c.Event
	}
	return out
}

// Ensure mocks implement their ports
var (
	_ secondary.MembershipRepository = (*mockMembershipRepository)(nil)
	_ secondary.RoomRepository       = (*mockRoomRepository)(nil)
	_ secondary.MatchRepository      = (*mockMatchRepository)(nil)
	_ secondary.IdentityProvider     = (*mockIdentityProvider)(nil)
	_ secondary.Navigator            = (*mockNavigator)(nil)
	_ secondary.ChangeFeed           = (*mockChangeFeed)(nil)
	_ secondary.ChangePublisher      = (*mockChangePublisher)(nil)
)

// ============================================================================
// Fixture
// ============================================================================

// engineFixture wires a reconciler over mock repositories.
type engineFixture struct {
	clock       *clock
	memberships *mockMembershipRepository
	rooms       *mockRoomRepository
	matches     *mockMatchRepository
	identity    *mockIdentityProvider
	store       *ContextStore
	reconciler  *ReconcilerImpl
}

func newEngineFixture(userID string) *engineFixture {
	c := &clock{}
	f := &engineFixture{
		clock:       c,
		memberships: newMockMembershipRepository(c),
		rooms:       newMockRoomRepository(c),
		matches:     newMockMatchRepository(c),
		identity:    &mockIdentityProvider{userID: userID},
		store:       NewContextStore(),
	}
	f.reconciler = NewReconciler(
		f.identity,
		NewMembershipResolver(f.memberships),
		NewRoomStateFetcher(f.rooms),
		NewActiveMatchFetcher(f.matches),
		NewSuccessionResolver(f.rooms, f.memberships, 0, nil),
		f.store,
		ReconcilerConfig{},
		nil,
	)
	return f
}

func (f *engineFixture) addRoom(id, code, status, owner string) {
	_ = f.rooms.Create(context.Background(), &secondary.RoomRecord{ID: id, JoinCode: code, Status: status, OwnerID: owner})
}

func (f *engineFixture) addMembership(userID, roomID, role string) {
	_ = f.memberships.Create(context.Background(), &secondary.MembershipRecord{
		ID:     fmt.Sprintf("M-%s-%s", userID, roomID),
		RoomID: roomID,
		UserID: userID,
		Role:   role,
	})
}

func (f *engineFixture) addMatch(id, roomID, status string) {
	_ = f.matches.Create(context.Background(), &secondary.MatchRecord{ID: id, RoomID: roomID, Status: status})
}
