package game

// Updatable is anything that takes part in a round's lifecycle: created once
// when the round starts, then updated every tick.
type Updatable interface {
	Create()
	Update()
}

// Group runs the lifecycle of its members in insertion order.
type Group struct {
	entities []Updatable
}

// Add appends an entity to the group.
func (g *Group) Add(e Updatable) {
	g.entities = append(g.entities, e)
}

// Len returns the number of entities.
func (g *Group) Len() int {
	return len(g.entities)
}

// Create calls Create on every entity.
func (g *Group) Create() {
	for _, e := range g.entities {
		e.Create()
	}
}

// Update calls Update on every entity.
func (g *Group) Update() {
	for _, e := range g.entities {
		e.Update()
	}
}
