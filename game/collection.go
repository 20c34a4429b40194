package game

// Collection is an ordered bag of cards. It keeps insertion order and makes no
// uniqueness guarantee; callers decide what may be added.
type Collection struct {
	items []*Card
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make([]*Card, 0, 2)}
}

// Add appends a card.
func (c *Collection) Add(card *Card) {
	c.items = append(c.items, card)
}

// Get returns the card at position i.
func (c *Collection) Get(i int) *Card {
	return c.items[i]
}

// Remove deletes the first occurrence of card, if present.
func (c *Collection) Remove(card *Card) {
	for i, it := range c.items {
		if it == card {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Contains reports whether card is in the collection.
func (c *Collection) Contains(card *Card) bool {
	for _, it := range c.items {
		if it == card {
			return true
		}
	}
	return false
}

// Clear removes all cards.
func (c *Collection) Clear() {
	c.items = c.items[:0]
}

// Count returns the number of cards.
func (c *Collection) Count() int {
	return len(c.items)
}

// Items returns a copy of the cards in insertion order.
func (c *Collection) Items() []*Card {
	out := make([]*Card, len(c.items))
	copy(out, c.items)
	return out
}

// Indices returns the board indices of the cards in insertion order.
func (c *Collection) Indices() []int {
	out := make([]int, len(c.items))
	for i, it := range c.items {
		out[i] = it.Index
	}
	return out
}
