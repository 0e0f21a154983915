package character

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New(42, "Mira", "warrior", "elf")
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.AccountID)
	assert.Equal(t, "Mira", c.Name)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, StartMap, c.Map)
	assert.Zero(t, c.ID, "unsaved character must have zero ID")
}

func TestNew_EmptyName(t *testing.T) {
	_, err := New(1, "", "warrior", "elf")
	assert.Error(t, err)
}

func TestNew_UnknownClass(t *testing.T) {
	_, err := New(1, "Mira", "necromancer", "elf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class")
}

func TestNew_UnknownRace(t *testing.T) {
	_, err := New(1, "Mira", "warrior", "gnome")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "race")
}

func TestValidClass(t *testing.T) {
	for _, c := range Classes {
		assert.True(t, ValidClass(c), "class %q should be valid", c)
	}
	assert.False(t, ValidClass(""))
	assert.False(t, ValidClass("paladin"))
}

func TestValidRace(t *testing.T) {
	for _, r := range Races {
		assert.True(t, ValidRace(r), "race %q should be valid", r)
	}
	assert.False(t, ValidRace(""))
	assert.False(t, ValidRace("troll"))
}

func TestPublicView(t *testing.T) {
	c := &Character{
		ID:       7,
		Name:     "Mira",
		Class:    "warrior",
		Race:     "elf",
		Level:    12,
		Map:      "Dion",
		Position: Position{X: 1.5, Y: 2.0, Z: -3.25},
	}

	v := c.Public()
	assert.Equal(t, int64(7), v.CharacterID)
	assert.Equal(t, "Mira", v.Name)
	assert.Equal(t, "warrior", v.Class)
	assert.Equal(t, "elf", v.Race)
	assert.Equal(t, 12, v.Level)
	assert.Equal(t, 1.5, v.PosX)
	assert.Equal(t, 2.0, v.PosY)
	assert.Equal(t, -3.25, v.PosZ)
}
