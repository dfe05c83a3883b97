// Package memstore is an in-memory store.Store used by tests. It keeps the
// same semantics as the Postgres store except that transactions are not
// rolled back.
package memstore

import (
	game_constants "Recit/constants/game"
	models "Recit/models/postgres"
	"Recit/services/store"
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type Store struct {
	mu           sync.Mutex
	locksMu      sync.Mutex
	gameLocks    map[uint]*sync.Mutex
	lastID       uint
	lastTime     time.Time
	now          func() time.Time
	users        map[uint]*models.User
	games        map[uint]*models.Game
	players      map[uint]*models.Player
	participants map[uint]*models.Participant
	messages     map[uint]*models.Message
	touches      map[uint]time.Time

	// Fail makes every call return this error when set.
	Fail error
}

func New() *Store {
	return &Store{
		gameLocks:    make(map[uint]*sync.Mutex),
		now:          time.Now,
		users:        make(map[uint]*models.User),
		games:        make(map[uint]*models.Game),
		players:      make(map[uint]*models.Player),
		participants: make(map[uint]*models.Participant),
		messages:     make(map[uint]*models.Message),
		touches:      make(map[uint]time.Time),
	}
}

// SetClock replaces the clock used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() uint {
	s.lastID++
	return s.lastID
}

// stamp returns strictly increasing timestamps so ordering by time is
// deterministic.
func (s *Store) stamp() time.Time {
	t := s.now()
	if !t.After(s.lastTime) {
		t = s.lastTime.Add(time.Microsecond)
	}
	s.lastTime = t
	return t
}

func (s *Store) row(g *models.Game) store.GameRow {
	players := 0
	for _, p := range s.players {
		if p.GameID == g.ID && (p.Level == game_constants.PLAYER_LEVEL_HOST || p.Level == game_constants.PLAYER_LEVEL_JOINED) {
			players++
		}
	}
	return store.GameRow{Game: *g, Players: players}
}

func (s *Store) FindGame(ctx context.Context, id uint) (*store.GameRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	g, ok := s.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row := s.row(g)
	return &row, nil
}

func (s *Store) FindGames(ctx context.Context, q store.GameQuery) ([]store.GameRow, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, 0, s.Fail
	}
	var rows []store.GameRow
	for _, g := range s.games {
		if !g.Public || !g.StartTime.After(q.After) || !q.Bounds.Contains(g.Latitude, g.Longitude) {
			continue
		}
		if q.Category != "" && g.Category != q.Category {
			continue
		}
		if q.Sport != "" && g.Sport != q.Sport {
			continue
		}
		if q.StartFrom != nil && g.StartTime.Before(*q.StartFrom) {
			continue
		}
		if q.StartBefore != nil && !g.StartTime.Before(*q.StartBefore) {
			continue
		}
		row := s.row(g)
		if q.MinOpenSpots > 0 && row.OpenSpots() < q.MinOpenSpots {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartTime.Before(rows[j].StartTime) })
	total := int64(len(rows))
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, total, nil
}

func (s *Store) FindUserGames(ctx context.Context, q store.UserGamesQuery) ([]store.GameRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	playing := map[uint]bool{}
	for _, p := range s.players {
		if p.UserID != nil && *p.UserID == q.UserID &&
			(p.Level == game_constants.PLAYER_LEVEL_HOST || p.Level == game_constants.PLAYER_LEVEL_JOINED) {
			playing[p.GameID] = true
		}
	}
	var rows []store.GameRow
	for id := range playing {
		g, ok := s.games[id]
		if !ok {
			continue
		}
		if q.Past && g.StartTime.Before(q.Cursor) || !q.Past && g.StartTime.After(q.Cursor) {
			rows = append(rows, s.row(g))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if q.Past {
			return rows[i].StartTime.After(rows[j].StartTime)
		}
		return rows[i].StartTime.Before(rows[j].StartTime)
	})
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (s *Store) CreateGame(ctx context.Context, game *models.Game, hostID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	now := s.stamp()
	game.ConversationID = s.nextID()
	s.touches[game.ConversationID] = now
	game.ID = s.nextID()
	game.CreatedAt, game.UpdatedAt = now, now
	stored := *game
	s.games[game.ID] = &stored

	host := hostID
	s.insertPlayer(&models.Player{GameID: game.ID, UserID: &host, Level: game_constants.PLAYER_LEVEL_HOST})
	id := s.nextID()
	s.participants[id] = &models.Participant{
		ID:             id,
		ConversationID: game.ConversationID,
		UserID:         hostID,
		Level:          game_constants.PARTICIPANT_LEVEL_PLAYER,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i := 0; i < game.SpotsReserved; i++ {
		s.insertPlayer(&models.Player{GameID: game.ID, Level: game_constants.PLAYER_LEVEL_INTERESTED})
	}
	return nil
}

func (s *Store) insertPlayer(p *models.Player) {
	now := s.stamp()
	p.ID = s.nextID()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	s.players[p.ID] = &stored
}

func (s *Store) UpdateGame(ctx context.Context, id uint, f store.GameFields) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	g, ok := s.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if f.Title != nil {
		g.Title = *f.Title
	}
	if f.StartTime != nil {
		g.StartTime = *f.StartTime
	}
	if f.EndTime != nil {
		g.EndTime = *f.EndTime
	}
	if f.Latitude != nil {
		g.Latitude = *f.Latitude
	}
	if f.Longitude != nil {
		g.Longitude = *f.Longitude
	}
	if f.Venue != nil {
		g.Venue = *f.Venue
	}
	if f.Address != nil {
		g.Address = *f.Address
	}
	if f.Category != nil {
		g.Category = *f.Category
	}
	if f.Sport != nil {
		g.Sport = *f.Sport
	}
	if f.Spots != nil {
		g.Spots = *f.Spots
	}
	if f.SpotsReserved != nil {
		g.SpotsReserved = *f.SpotsReserved
	}
	if f.Description != nil {
		g.Description = *f.Description
	}
	if f.Public != nil {
		g.Public = *f.Public
	}
	if f.Image != nil {
		g.Image = *f.Image
	}
	g.UpdatedAt = s.stamp()
	out := *g
	return &out, nil
}

func (s *Store) DeleteGame(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	g, ok := s.games[id]
	if !ok {
		return store.ErrNotFound
	}
	for mid, m := range s.messages {
		if m.ConversationID == g.ConversationID {
			delete(s.messages, mid)
		}
	}
	for pid, p := range s.participants {
		if p.ConversationID == g.ConversationID {
			delete(s.participants, pid)
		}
	}
	for pid, p := range s.players {
		if p.GameID == id {
			delete(s.players, pid)
		}
	}
	delete(s.touches, g.ConversationID)
	delete(s.games, id)
	return nil
}

func matches(p *models.Player, f store.PlayerFilter) bool {
	if f.GameID != 0 && p.GameID != f.GameID {
		return false
	}
	if f.UserID != 0 && (p.UserID == nil || *p.UserID != f.UserID) {
		return false
	}
	if f.Unclaimed && p.UserID != nil {
		return false
	}
	if len(f.Levels) > 0 {
		found := false
		for _, l := range f.Levels {
			if p.Level == l {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Store) FindPlayers(ctx context.Context, f store.PlayerFilter) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []models.Player
	for _, p := range s.players {
		if matches(p, f) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreatePlayer(ctx context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.games[p.GameID]; !ok {
		return errors.New("memstore: game does not exist")
	}
	s.insertPlayer(p)
	return nil
}

func (s *Store) UpdatePlayer(ctx context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	stored, ok := s.players[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.UserID = p.UserID
	stored.Level = p.Level
	stored.UpdatedAt = s.stamp()
	return nil
}

func (s *Store) DestroyPlayers(ctx context.Context, f store.PlayerFilter, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var ids []uint
	for id, p := range s.players {
		if matches(p, f) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	for _, id := range ids {
		delete(s.players, id)
	}
	return int64(len(ids)), nil
}

func (s *Store) findParticipant(conversationID, userID uint) *models.Participant {
	for _, p := range s.participants {
		if p.ConversationID == conversationID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Store) FindParticipant(ctx context.Context, conversationID, userID uint) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	p := s.findParticipant(conversationID, userID)
	if p == nil {
		return nil, store.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *Store) FindParticipants(ctx context.Context, conversationID uint) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []models.Participant
	for _, p := range s.participants {
		if p.ConversationID == conversationID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertParticipant(ctx context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	now := s.stamp()
	if existing := s.findParticipant(p.ConversationID, p.UserID); existing != nil {
		existing.Level = p.Level
		existing.Invited = p.Invited
		existing.UpdatedAt = now
		*p = *existing
		return nil
	}
	p.ID = s.nextID()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	s.participants[p.ID] = &stored
	return nil
}

func (s *Store) DestroyParticipant(ctx context.Context, conversationID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	p := s.findParticipant(conversationID, userID)
	if p == nil {
		return store.ErrNotFound
	}
	delete(s.participants, p.ID)
	return nil
}

func (s *Store) TouchConversation(ctx context.Context, conversationID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.touches[conversationID] = at
	return nil
}

// LastActivity returns the last time the conversation was touched.
func (s *Store) LastActivity(conversationID uint) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touches[conversationID]
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	now := s.stamp()
	m.ID = s.nextID()
	m.CreatedAt, m.UpdatedAt = now, now
	stored := *m
	s.messages[m.ID] = &stored
	return nil
}

func (s *Store) FindMessage(ctx context.Context, id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (s *Store) FindMessages(ctx context.Context, q store.MessageQuery) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var out []models.Message
	for _, m := range s.messages {
		if m.GameID == nil || *m.GameID != q.GameID || !m.UpdatedAt.Before(q.Before) {
			continue
		}
		if q.MessageID != 0 && m.ID != q.MessageID {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) UpdateMessage(ctx context.Context, id uint, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	m, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m.Content = content
	m.UpdatedAt = s.stamp()
	out := *m
	return &out, nil
}

func (s *Store) DeleteMessage(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *Store) FindUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, u := range s.users {
		if u.Phone == phone {
			out := *u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for _, existing := range s.users {
		if existing.Phone == u.Phone {
			return errors.New("memstore: duplicate phone")
		}
	}
	now := s.stamp()
	u.ID = s.nextID()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	s.users[u.ID] = &stored
	return nil
}

// AddGame is a test helper creating a game hosted by hostID.
func (s *Store) AddGame(game models.Game, hostID uint) *models.Game {
	if err := s.CreateGame(context.Background(), &game, hostID); err != nil {
		panic(err)
	}
	return &game
}

// AddUser is a test helper creating a user with the given name.
func (s *Store) AddUser(name string) *models.User {
	u := &models.User{Name: name, Phone: name}
	if err := s.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (s *Store) WithGameLock(ctx context.Context, gameID uint, fn func(tx store.Store) error) error {
	s.locksMu.Lock()
	lock, ok := s.gameLocks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.gameLocks[gameID] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	_, exists := s.games[gameID]
	fail := s.Fail
	s.mu.Unlock()
	if fail != nil {
		return fail
	}
	if !exists {
		return store.ErrNotFound
	}
	return fn(s)
}

var _ store.Store = (*Store)(nil)
