package game

// CardState represents the current state of a card.
type CardState int

const (
	Hidden CardState = iota
	Revealed
	Collected
)

// String returns the string representation of a CardState.
func (cs CardState) String() string {
	switch cs {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Collected:
		return "collected"
	default:
		return "unknown"
	}
}

// Card represents a single card on the board.
type Card struct {
	Index int
	Face  Face
	State CardState

	pending    bool // flip accepted, reveal delay still running
	revealTask *Task
	ctx        *RoundContext
}

// NewCard creates a hidden card bound to the round context.
func NewCard(ctx *RoundContext, index int, face Face) *Card {
	return &Card{Index: index, Face: face, State: Hidden, ctx: ctx}
}

// Create draws the card face down.
func (c *Card) Create() {
	c.ctx.Host.ShowCard(c.Index, c.Face, VisualBack)
}

// Update is a no-op; cards only change through flips and board resolution.
func (c *Card) Update() {}

// Pending reports whether a flip was accepted and the reveal has not landed yet.
func (c *Card) Pending() bool {
	return c.pending
}

// RequestFlip starts turning the card face up. The request is ignored (false)
// unless the card is Hidden, the round accepts flips, and fewer than two cards
// are revealed or on their way to being revealed. An accepted request counts
// as a move; the card joins the revealed set once the reveal delay elapses.
func (c *Card) RequestFlip() bool {
	b := c.ctx.Board
	if c.State != Hidden || c.pending {
		return false
	}
	if !b.acceptsFlips() {
		return false
	}
	if c.ctx.Revealed.Count()+b.pendingReveals >= 2 {
		return false
	}

	b.MoveCount++
	b.pendingReveals++
	c.pending = true
	c.ctx.Host.ShowCard(c.Index, c.Face, VisualFlipping)
	c.revealTask = c.ctx.Scheduler.After(b.rules.RevealDelay, c.reveal)
	return true
}

func (c *Card) reveal() {
	c.pending = false
	c.revealTask = nil
	c.ctx.Board.pendingReveals--
	c.State = Revealed
	c.ctx.Revealed.Add(c)
	c.ctx.Host.ShowCard(c.Index, c.Face, VisualFront)
	c.ctx.Board.onRevealed()
}

// ResetToHidden turns a revealed card face down again. It returns false if the
// card was not Revealed.
func (c *Card) ResetToHidden() bool {
	if c.State != Revealed {
		return false
	}
	c.State = Hidden
	c.ctx.Revealed.Remove(c)
	c.ctx.Host.ShowCard(c.Index, c.Face, VisualBack)
	return true
}

// MarkCollected removes the card from play. Collecting an already collected
// card is a no-op and returns false.
func (c *Card) MarkCollected() bool {
	if c.State == Collected {
		return false
	}
	if c.pending {
		c.revealTask.Cancel()
		c.revealTask = nil
		c.pending = false
		c.ctx.Board.pendingReveals--
	}
	if c.State == Revealed {
		c.ctx.Revealed.Remove(c)
	}
	c.State = Collected
	c.ctx.Collected.Add(c)
	c.ctx.Host.ShowCard(c.Index, c.Face, VisualNone)
	return true
}
