package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"paintsnap/internal/models"
	"paintsnap/internal/prediction"
	"paintsnap/internal/repository"
	"paintsnap/internal/security"
)

// In-memory store fakes mirroring the repository semantics, so services
// can be exercised without postgres or redis.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) CreateIfAbsent(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return existing, nil
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) FindByAppleID(_ context.Context, appleUserID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.AppleUserID != nil && *user.AppleUserID == appleUserID {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *memUserStore) AddGenerations(_ context.Context, id string, amount int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	user.GenerationsRemaining += amount
	user.Credits += amount
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) RefundGeneration(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	user.GenerationsRemaining++
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) ConsumeGeneration(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	if user.GenerationsRemaining <= 0 {
		return models.User{}, repository.ErrNoGenerations
	}
	user.GenerationsRemaining--
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) IncrementTransformations(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.TotalTransformations++
	s.users[id] = user
	return nil
}

func (s *memUserStore) SetFavoriteArtist(_ context.Context, id string, artist *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	user.FavoriteArtist = artist
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) SetPremium(_ context.Context, id string, premium bool, productID *string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	user.Premium = premium
	user.PremiumProductID = productID
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) LinkAppleID(_ context.Context, id string, appleUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.AppleUserID = &appleUserID
	s.users[id] = user
	return nil
}

func (s *memUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]models.Session)}
}

func (s *memSessionStore) Upsert(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.sessions {
		if existing.UserID == session.UserID && existing.DeviceID == session.DeviceID {
			delete(s.sessions, id)
		}
	}
	session.LastSeenAt = time.Now()
	s.sessions[session.ID] = session
	return nil
}

func (s *memSessionStore) GetByID(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (s *memSessionStore) FindByRefreshHash(_ context.Context, userID string, refreshHash []byte) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.UserID == userID && bytes.Equal(session.RefreshTokenHash, refreshHash) {
			return session, nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (s *memSessionStore) CountByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *memSessionStore) DeleteOldest(_ context.Context, userID string, keepLatest int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []models.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			mine = append(mine, session)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].LastSeenAt.After(mine[j].LastSeenAt) })
	for i := keepLatest; i < len(mine); i++ {
		delete(s.sessions, mine[i].ID)
	}
	return nil
}

func (s *memSessionStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *memSessionStore) DeleteByDevice(_ context.Context, userID string, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UserID == userID && session.DeviceID == deviceID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *memSessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type memTransformStore struct {
	mu    sync.Mutex
	items map[string]models.Transformation
	order []string
}

func newMemTransformStore() *memTransformStore {
	return &memTransformStore{items: make(map[string]models.Transformation)}
}

func (s *memTransformStore) Create(_ context.Context, t models.Transformation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	s.items[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *memTransformStore) GetByID(_ context.Context, id string) (models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return models.Transformation{}, repository.ErrTransformationNotFound
	}
	return t, nil
}

func (s *memTransformStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transformation
	for i := len(s.order) - 1; i >= 0; i-- {
		t := s.items[s.order[i]]
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return page(out, limit, offset), nil
}

func (s *memTransformStore) List(_ context.Context, limit, offset int) ([]models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transformation
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.items[s.order[i]])
	}
	return page(out, limit, offset), nil
}

func page(items []models.Transformation, limit, offset int) []models.Transformation {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (s *memTransformStore) MarkProcessing(_ context.Context, id string, predictionID string) (models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return models.Transformation{}, repository.ErrTransformationNotFound
	}
	if t.Status != models.TransformationStatusPending {
		return models.Transformation{}, repository.ErrInvalidTransition
	}
	t.Status = models.TransformationStatusProcessing
	if predictionID != "" {
		t.PredictionID = &predictionID
	}
	t.UpdatedAt = time.Now()
	s.items[id] = t
	return t, nil
}

func (s *memTransformStore) Finalize(_ context.Context, id string, status models.TransformationStatus, resultURL *string, predictionID *string) (models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return models.Transformation{}, repository.ErrTransformationNotFound
	}
	if !status.Terminal() || t.Status.Terminal() {
		return models.Transformation{}, repository.ErrInvalidTransition
	}
	t.Status = status
	if resultURL != nil {
		t.ResultURL = resultURL
	}
	if predictionID != nil {
		t.PredictionID = predictionID
	}
	t.UpdatedAt = time.Now()
	s.items[id] = t
	return t, nil
}

func (s *memTransformStore) ListStale(_ context.Context, cutoff time.Time, limit int) ([]models.Transformation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transformation
	for _, id := range s.order {
		t := s.items[id]
		if !t.Status.Terminal() && t.UpdatedAt.Before(cutoff) {
			out = append(out, t)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// forceUpdatedAt backdates a record for sweep tests.
func (s *memTransformStore) forceUpdatedAt(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.items[id]
	t.UpdatedAt = at
	s.items[id] = t
}

type memLedgerStore struct {
	mu      sync.Mutex
	entries map[string]models.LedgerEntry
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{entries: make(map[string]models.LedgerEntry)}
}

func (s *memLedgerStore) Record(_ context.Context, entry models.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.EventID]; ok {
		return false, nil
	}
	entry.CreatedAt = time.Now()
	s.entries[entry.EventID] = entry
	return true, nil
}

func (s *memLedgerStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memQueue struct {
	mu        sync.Mutex
	published []map[string]any
	failNext  bool
}

func (q *memQueue) Publish(_ context.Context, values map[string]any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failNext {
		q.failNext = false
		return context.DeadlineExceeded
	}
	q.published = append(q.published, values)
	return nil
}

func (q *memQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.published)
}

type fakePredictor struct {
	result prediction.Result
}

func (p *fakePredictor) Transform(_ context.Context, prompt string, imageURL string) prediction.Result {
	if p.result.PredictionID != "" {
		return p.result
	}
	return prediction.Result{
		PredictionID: "pred-123",
		OutputURL:    "https://cdn.example.com/output.png",
	}
}

type fakeAppleVerifier struct {
	identity security.AppleIdentity
	err      error
}

func (v *fakeAppleVerifier) Verify(_ context.Context, rawToken string) (security.AppleIdentity, error) {
	if v.err != nil {
		return security.AppleIdentity{}, v.err
	}
	return v.identity, nil
}
