package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_SpawnAndLookup(t *testing.T) {
	m := NewModel()

	id := m.Spawn("potted_plant", Point{X: 10, Y: 20}, false)
	require.NotEmpty(t, id)

	e, ok := m.Entity(id)
	require.True(t, ok)
	assert.Equal(t, "potted_plant", e.Name)
	assert.Equal(t, 10.0, e.X)
	assert.Equal(t, 20.0, e.Y)
	assert.False(t, e.Transient)
}

func TestModel_EntitiesInsertionOrder(t *testing.T) {
	m := NewModel()

	first := m.Spawn("a", Point{}, false)
	second := m.Spawn("b", Point{}, false)
	third := m.Spawn("c", Point{}, true)

	entities := m.Entities()
	require.Len(t, entities, 3)
	assert.Equal(t, []string{first, second, third},
		[]string{entities[0].EntityID, entities[1].EntityID, entities[2].EntityID})
}

func TestModel_FindByName(t *testing.T) {
	m := NewModel()
	m.Spawn("lamp", Point{}, false)
	m.Spawn("lamp", Point{X: 5}, false)
	m.Spawn("plant", Point{}, false)

	assert.Len(t, m.FindByName("lamp"), 2)
	assert.Len(t, m.FindByName("plant"), 1)
	assert.Empty(t, m.FindByName("sofa"))
}

func TestModel_NearestTo(t *testing.T) {
	m := NewModel()
	near := m.Spawn("near", Point{X: 1, Y: 1}, false)
	m.Spawn("far", Point{X: 100, Y: 100}, false)

	e, ok := m.NearestTo(Point{X: 0, Y: 0}, math.Inf(1))
	require.True(t, ok)
	assert.Equal(t, near, e.EntityID)

	_, ok = m.NearestTo(Point{X: 0, Y: 0}, 1.0)
	assert.False(t, ok, "nothing within max distance")

	empty := NewModel()
	_, ok = empty.NearestTo(Point{}, math.Inf(1))
	assert.False(t, ok)
}

func TestModel_MoveAndRemove(t *testing.T) {
	m := NewModel()
	id := m.Spawn("cone", Point{X: 1, Y: 1}, false)

	m.Move(id, Point{X: 9, Y: 9})
	e, ok := m.Entity(id)
	require.True(t, ok)
	assert.Equal(t, 9.0, e.X)

	m.Move("missing", Point{X: 1, Y: 1})

	m.Remove(id)
	_, ok = m.Entity(id)
	assert.False(t, ok)
	assert.Empty(t, m.Entities())

	m.Remove(id)
}
