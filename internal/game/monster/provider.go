package monster

import "fmt"

// Monster is one live monster placement sent to clients in spawn info.
type Monster struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Level int     `json:"level"`
	MaxHP int     `json:"max_hp"`
	PosX  float64 `json:"pos_x"`
	PosY  float64 `json:"pos_y"`
	PosZ  float64 `json:"pos_z"`
	Map   string  `json:"map"`
}

// Provider answers per-map monster queries from a fixed template set.
// The index is built once at construction and read-only afterwards, so it is
// safe for concurrent use without locking.
type Provider struct {
	byMap map[string][]Monster
}

// NewProvider builds a Provider indexing every spawn of every template by map.
//
// Precondition: templates must each be valid (see Template.Validate).
func NewProvider(templates []*Template) *Provider {
	byMap := make(map[string][]Monster)
	for _, tmpl := range templates {
		for i, s := range tmpl.Spawns {
			m := Monster{
				ID:    fmt.Sprintf("%s-%d", tmpl.ID, i),
				Name:  tmpl.Name,
				Level: tmpl.Level,
				MaxHP: tmpl.MaxHP,
				PosX:  s.X,
				PosY:  s.Y,
				PosZ:  s.Z,
				Map:   s.Map,
			}
			byMap[s.Map] = append(byMap[s.Map], m)
		}
	}
	return &Provider{byMap: byMap}
}

// FindByRoom returns the monsters placed in the given map.
//
// Postcondition: Returns a copy (may be empty); callers may mutate it freely.
func (p *Provider) FindByRoom(roomID string) []Monster {
	src := p.byMap[roomID]
	out := make([]Monster, len(src))
	copy(out, src)
	return out
}
