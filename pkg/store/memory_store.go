package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"motivbot/pkg/domain"
)

// MemoryStore keeps all records in-process. It backs tests and small
// deployments that do not need Postgres.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]domain.User
	userOrder  []int64
	items      map[int64]domain.Item
	nextItemID int64
	likes      map[int64]map[int64]bool // itemID -> set of userIDs
	broadcasts []BroadcastModel
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]domain.User),
		items: make(map[int64]domain.Item),
		likes: make(map[int64]map[int64]bool),
	}
}

func (m *MemoryStore) EnsureUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := m.users[u.ID]
	if !ok {
		m.userOrder = append(m.userOrder, u.ID)
		m.users[u.ID] = domain.User{
			ID:           u.ID,
			Handle:       u.Handle,
			DisplayName:  u.DisplayName,
			DailyOptIn:   true,
			Active:       true,
			LastActiveAt: now,
			CreatedAt:    now,
		}
		return nil
	}
	existing.Handle = u.Handle
	existing.DisplayName = u.DisplayName
	existing.LastActiveAt = now
	m.users[u.ID] = existing
	return nil
}

func (m *MemoryStore) GetUser(id int64) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) SetMembership(id int64, inChannel, inGroup bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.InChannel = inChannel
	u.InGroup = inGroup
	m.users[id] = u
	return nil
}

func (m *MemoryStore) SetDailyOptIn(id int64, optIn bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.DailyOptIn = optIn
	m.users[id] = u
	return nil
}

func (m *MemoryStore) DeactivateUser(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = false
	m.users[id] = u
	return nil
}

func (m *MemoryStore) ListRecipientIDs() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && u.Active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryStore) ListDailyRecipientIDs() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		u, ok := m.users[id]
		if ok && u.Active && u.InChannel && u.InGroup && u.DailyOptIn {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryStore) CreateItem(text string, submitterID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextItemID++
	id := m.nextItemID
	m.items[id] = domain.Item{
		ID:          id,
		Text:        text,
		SubmitterID: submitterID,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return id, nil
}

func (m *MemoryStore) GetItem(id int64) (domain.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	return it, ok, nil
}

func (m *MemoryStore) SetItemStatus(id int64, status domain.ItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Status = status
	m.items[id] = it
	return nil
}

func (m *MemoryStore) SetItemText(id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Text = text
	m.items[id] = it
	return nil
}

func (m *MemoryStore) DeleteItem(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	delete(m.likes, id)
	return nil
}

func (m *MemoryStore) RandomApprovedItem() (domain.Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// map iteration order is already randomized
	for _, it := range m.items {
		if it.Status == domain.StatusApproved {
			return it, true, nil
		}
	}
	return domain.Item{}, false, nil
}

func (m *MemoryStore) ToggleLike(userID, itemID int64) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return false, 0, ErrNotFound
	}
	marks := m.likes[itemID]
	if marks == nil {
		marks = make(map[int64]bool)
		m.likes[itemID] = marks
	}
	var liked bool
	if marks[userID] {
		delete(marks, userID)
		it.Likes--
	} else {
		marks[userID] = true
		it.Likes++
		liked = true
	}
	m.items[itemID] = it
	return liked, it.Likes, nil
}

func (m *MemoryStore) AddShare(itemID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return 0, ErrNotFound
	}
	it.Shares++
	m.items[itemID] = it
	return it.Shares, nil
}

func (m *MemoryStore) CountLikes(itemID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.likes[itemID])), nil
}

func (m *MemoryStore) Stats() (domain.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st domain.Stats
	st.TotalUsers = int64(len(m.users))
	for _, u := range m.users {
		if u.InChannel && u.InGroup {
			st.SubscribedUsers++
		}
	}
	for _, it := range m.items {
		st.TotalItems++
		switch it.Status {
		case domain.StatusApproved:
			st.ApprovedItems++
		case domain.StatusPending:
			st.PendingItems++
		case domain.StatusRejected:
			st.RejectedItems++
		}
		st.TotalLikes += it.Likes
		st.TotalShares += it.Shares
	}
	return st, nil
}

func (m *MemoryStore) LogBroadcast(kind string, payload domain.Payload, result domain.BroadcastResult) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, BroadcastModel{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		Sent:      result.Sent,
		Failed:    result.Failed,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// Broadcasts returns the audit log (test helper).
func (m *MemoryStore) Broadcasts() []BroadcastModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BroadcastModel, len(m.broadcasts))
	copy(out, m.broadcasts)
	return out
}
