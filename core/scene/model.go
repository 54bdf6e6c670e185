// Package scene provides the in-memory decoration scene model. It tracks
// placed decoration entities and answers the spatial queries events need.
// Rendering, physics, and persistence belong to the host application.
package scene

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

// Point is a position in global (virtual desktop) coordinates.
type Point struct {
	X float64
	Y float64
}

// DistanceTo returns the euclidean distance between two points.
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Entity is a decoration placed in the scene.
type Entity struct {
	EntityID string
	Name     string
	X        float64
	Y        float64

	// Transient entities are never persisted by the host application.
	Transient bool
}

// Position returns the entity position as a Point.
func (e Entity) Position() Point {
	return Point{X: e.X, Y: e.Y}
}

// Model is a thread-safe scene entity store.
type Model struct {
	mu       sync.Mutex
	entities map[string]Entity
	order    []string
}

// NewModel creates an empty scene model.
func NewModel() *Model {
	return &Model{
		entities: make(map[string]Entity),
	}
}

// Entities returns all entities in insertion order.
func (m *Model) Entities() []Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entity, 0, len(m.order))
	for _, id := range m.order {
		if e, ok := m.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Entity looks up an entity by id.
func (m *Model) Entity(entityID string) (Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[entityID]
	return e, ok
}

// FindByName returns every entity with the given decoration name.
func (m *Model) FindByName(name string) []Entity {
	var out []Entity
	for _, e := range m.Entities() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// NearestTo returns the entity closest to p within maxDistance.
// Pass math.Inf(1) for an unbounded search.
func (m *Model) NearestTo(p Point, maxDistance float64) (Entity, bool) {
	bestDistance := maxDistance
	var best Entity
	found := false

	for _, e := range m.Entities() {
		d := e.Position().DistanceTo(p)
		if d < bestDistance {
			bestDistance = d
			best = e
			found = true
		}
	}
	return best, found
}

// Move updates an entity's position. Unknown ids are ignored.
func (m *Model) Move(entityID string, position Point) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entities[entityID]
	if !ok {
		return
	}
	e.X = position.X
	e.Y = position.Y
	m.entities[entityID] = e
}

// Remove deletes an entity. Unknown ids are ignored.
func (m *Model) Remove(entityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[entityID]; !ok {
		return
	}
	delete(m.entities, entityID)
	for i, id := range m.order {
		if id == entityID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Spawn places a new decoration entity and returns its id.
func (m *Model) Spawn(decorationName string, position Point, transient bool) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	entityID := uuid.New().String()
	m.entities[entityID] = Entity{
		EntityID:  entityID,
		Name:      decorationName,
		X:         position.X,
		Y:         position.Y,
		Transient: transient,
	}
	m.order = append(m.order, entityID)
	return entityID
}
