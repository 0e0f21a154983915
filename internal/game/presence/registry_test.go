package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravenfell/worldserver/internal/game/character"
)

func testChar(id int64, name, roomID string) *character.Character {
	return &character.Character{
		ID:    id,
		Name:  name,
		Class: "warrior",
		Race:  "elf",
		Level: 3,
		Map:   roomID,
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	conn, err := r.Register("c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", conn.ID)
	assert.False(t, conn.Authenticated())
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)
	_, err = r.Register("c1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_ReRegisterAfterRemove(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)
	_, err = r.Remove("c1")
	require.NoError(t, err)
	_, err = r.Register("c1")
	assert.NoError(t, err)
}

func TestRegistry_Authenticate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)

	require.NoError(t, r.Authenticate("c1", 42))

	conn, ok := r.Get("c1")
	require.True(t, ok)
	assert.True(t, conn.Authenticated())
	assert.Equal(t, int64(42), conn.AccountID)
}

func TestRegistry_AuthenticateUnknown(t *testing.T) {
	r := NewRegistry()
	err := r.Authenticate("ghost", 42)
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestRegistry_BindCharacter(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)
	require.NoError(t, r.Authenticate("c1", 42))

	char := testChar(7, "Mira", "Dion")
	require.NoError(t, r.BindCharacter("c1", char))

	conn, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, int64(7), conn.CharacterID)
	require.NotNil(t, conn.Character)
	assert.Equal(t, "Mira", conn.Character.Name)
}

func TestRegistry_BindCharacterUnauthenticated(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)

	err = r.BindCharacter("c1", testChar(7, "Mira", "Dion"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRegistry_BindCharacterUnknown(t *testing.T) {
	r := NewRegistry()
	err := r.BindCharacter("ghost", testChar(7, "Mira", "Dion"))
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)
	require.NoError(t, r.Authenticate("c1", 42))
	require.NoError(t, r.BindCharacter("c1", testChar(7, "Mira", "Dion")))

	removed, err := r.Remove("c1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed.AccountID)
	assert.Equal(t, int64(7), removed.CharacterID)
	assert.Equal(t, 0, r.Count())

	_, ok := r.Get("c1")
	assert.False(t, ok)
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Remove("ghost")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestRegistry_Characters_SkipsDanglingAndUnbound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)
	require.NoError(t, r.Authenticate("c1", 1))
	require.NoError(t, r.BindCharacter("c1", testChar(1, "Mira", "Dion")))

	// c2 registered but no character bound
	_, err = r.Register("c2")
	require.NoError(t, err)

	chars := r.Characters([]string{"c1", "c2", "gone"})
	require.Len(t, chars, 1)
	assert.Equal(t, "Mira", chars[0].Name)
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("c1")
	require.NoError(t, err)

	conn, ok := r.Get("c1")
	require.True(t, ok)
	conn.AccountID = 999 // mutating the copy must not affect the registry

	fresh, ok := r.Get("c1")
	require.True(t, ok)
	assert.Zero(t, fresh.AccountID)
}

func TestRegistry_ConcurrentRegisterRemove(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", n)
			if _, err := r.Register(id); err != nil {
				t.Errorf("register %s: %v", id, err)
				return
			}
			if n%2 == 0 {
				if _, err := r.Remove(id); err != nil {
					t.Errorf("remove %s: %v", id, err)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, r.Count())
}
