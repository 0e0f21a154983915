package monster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *Template {
	return &Template{
		ID:    "wolf",
		Name:  "Gray Wolf",
		Level: 2,
		MaxHP: 30,
		Spawns: []Spawn{
			{Map: "Dion", X: 10, Y: 0, Z: 5},
			{Map: "Dion", X: 20, Y: 0, Z: 8},
			{Map: "Gludin", X: 1, Y: 0, Z: 1},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	assert.NoError(t, validTemplate().Validate())
}

func TestTemplateValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"empty id", func(tm *Template) { tm.ID = "" }},
		{"empty name", func(tm *Template) { tm.Name = "" }},
		{"zero level", func(tm *Template) { tm.Level = 0 }},
		{"zero hp", func(tm *Template) { tm.MaxHP = 0 }},
		{"spawn without map", func(tm *Template) { tm.Spawns[0].Map = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "wolf.yaml"), []byte(`
id: wolf
name: Gray Wolf
level: 2
max_hp: 30
spawns:
  - map: Dion
    x: 10
    y: 0
    z: 5
`), 0644)
	require.NoError(t, err)
	// non-YAML files are ignored
	err = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644)
	require.NoError(t, err)

	templates, err := LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "wolf", templates[0].ID)
	assert.Len(t, templates[0].Spawns, 1)
}

func TestLoadTemplates_InvalidTemplate(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: \"\"\nname: Broken\n"), 0644)
	require.NoError(t, err)

	_, err = LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := LoadTemplates("/nonexistent/monsters")
	assert.Error(t, err)
}

func TestProviderFindByRoom(t *testing.T) {
	p := NewProvider([]*Template{validTemplate()})

	dion := p.FindByRoom("Dion")
	require.Len(t, dion, 2)
	assert.Equal(t, "wolf-0", dion[0].ID)
	assert.Equal(t, "wolf-1", dion[1].ID)
	assert.Equal(t, "Gray Wolf", dion[0].Name)

	gludin := p.FindByRoom("Gludin")
	assert.Len(t, gludin, 1)

	assert.Empty(t, p.FindByRoom("Giran"))
}

func TestProviderFindByRoom_ReturnsCopy(t *testing.T) {
	p := NewProvider([]*Template{validTemplate()})

	first := p.FindByRoom("Dion")
	first[0].Name = "mutated"

	again := p.FindByRoom("Dion")
	assert.Equal(t, "Gray Wolf", again[0].Name)
}
