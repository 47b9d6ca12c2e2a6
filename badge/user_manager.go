package badge

import (
	"fmt"
	"sync"

	"github.com/towerkit/towertrack/collection"
)

// UserManager indexes users by id and by every display name they were ever
// known under. It additionally tracks a mutable pointer to the "current"
// user of a session; swapping the pointer never mutates the indexes.
type UserManager struct {
	col *collection.Collection[User]

	mu      sync.RWMutex
	current int // position of the current user, -1 when unset
}

// NewUserManager creates an empty user manager with its fixed filter set.
func NewUserManager() *UserManager {
	col := collection.New[User]()

	_ = col.AddFilter(FilterIDs, func(u User) []collection.Key {
		return collection.KeyOf(collection.Int(u.ID))
	})
	_ = col.AddFilter(FilterName, func(u User) []collection.Key {
		keys := make([]collection.Key, 0, 1+len(u.PastNames))
		keys = append(keys, collection.String(u.Name))
		for _, n := range u.PastNames {
			keys = append(keys, collection.String(n))
		}
		return keys
	})

	return &UserManager{col: col, current: -1}
}

// AddUser validates and inserts a user, returning its position.
func (m *UserManager) AddUser(u User) (int, error) {
	if u.ID <= 0 {
		return 0, fmt.Errorf("%w: user id %d", ErrInvalidRecord, u.ID)
	}
	return m.col.Add(u), nil
}

// ByID resolves a user by id.
func (m *UserManager) ByID(id int64) (User, bool) {
	matches, err := m.col.Get(FilterIDs, collection.Int(id))
	if err != nil || len(matches) == 0 {
		return User{}, false
	}
	return matches[0], true
}

// ByName resolves users known under name, current or historical.
func (m *UserManager) ByName(name string) []User {
	matches, _ := m.col.Get(FilterName, collection.String(name))
	return matches
}

// SetCurrent points the manager at the user with the given id.
func (m *UserManager) SetCurrent(id int64) error {
	matches, err := m.col.Get(FilterIDs, collection.Int(id))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: user %d", ErrInvalidRecord, id)
	}

	// Find the position by scanning; user ids are unique so the first
	// match wins.
	pos := -1
	for i, u := range m.col.Items() {
		if u.ID == id {
			pos = i
			break
		}
	}

	m.mu.Lock()
	m.current = pos
	m.mu.Unlock()

	return nil
}

// Current returns the current user, if one is set.
func (m *UserManager) Current() (User, bool) {
	m.mu.RLock()
	pos := m.current
	m.mu.RUnlock()

	if pos < 0 {
		return User{}, false
	}
	return m.col.At(pos)
}

// Len returns the number of stored users.
func (m *UserManager) Len() int { return m.col.Len() }

// Users returns a copy of all stored users in insertion order.
func (m *UserManager) Users() []User { return m.col.Items() }
