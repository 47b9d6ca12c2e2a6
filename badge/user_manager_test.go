package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserManager_PastNamesResolve(t *testing.T) {
	m := NewUserManager()

	_, err := m.AddUser(User{ID: 7, Name: "climber", PastNames: []string{"oldclimber", "noob"}})
	require.NoError(t, err)

	for _, name := range []string{"climber", "oldclimber", "noob"} {
		matches := m.ByName(name)
		require.Len(t, matches, 1, "name %q", name)
		assert.Equal(t, int64(7), matches[0].ID)
	}

	u, ok := m.ByID(7)
	require.True(t, ok)
	assert.Equal(t, "climber", u.Name)
}

func TestUserManager_AddUserGuard(t *testing.T) {
	m := NewUserManager()

	_, err := m.AddUser(User{Name: "anon"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Equal(t, 0, m.Len())
}

func TestUserManager_CurrentPointer(t *testing.T) {
	m := NewUserManager()

	_, ok := m.Current()
	assert.False(t, ok)

	_, err := m.AddUser(User{ID: 1, Name: "first"})
	require.NoError(t, err)
	_, err = m.AddUser(User{ID: 2, Name: "second"})
	require.NoError(t, err)

	require.NoError(t, m.SetCurrent(2))
	u, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "second", u.Name)

	// Swapping the pointer does not disturb the indexes.
	require.NoError(t, m.SetCurrent(1))
	u, ok = m.Current()
	require.True(t, ok)
	assert.Equal(t, "first", u.Name)
	assert.Len(t, m.ByName("second"), 1)

	assert.ErrorIs(t, m.SetCurrent(999), ErrInvalidRecord)
}

func TestAreaManager(t *testing.T) {
	m := NewAreaManager()

	_, err := m.AddArea(Area{})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = m.AddArea(Area{Name: "Ring 1", Acronym: "R1", Requirement: 0})
	require.NoError(t, err)
	_, err = m.AddArea(Area{Name: "Ring 2", Acronym: "R2", Requirement: 5})
	require.NoError(t, err)

	a, ok := m.ByName("Ring 2")
	require.True(t, ok)
	assert.Equal(t, "R2", a.Acronym)

	a, ok = m.ByAcronym("R1")
	require.True(t, ok)
	assert.Equal(t, "Ring 1", a.Name)

	_, ok = m.ByAcronym("R9")
	assert.False(t, ok)

	assert.Equal(t, []string{"Ring 1", "Ring 2"}, m.Names())
}
