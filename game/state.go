package game

// CardView is the client-facing representation of a card.
// Face is only included once the card is revealed or collected.
type CardView struct {
	Index int    `json:"index"`
	Face  *Face  `json:"face,omitempty"`
	State string `json:"state"`
}

// RoundStateMsg is the full round state sent to the player and observers.
type RoundStateMsg struct {
	Type      string            `json:"type"`
	RoundID   string            `json:"roundId"`
	Rows      int               `json:"rows"`
	Cols      int               `json:"cols"`
	Cards     []CardView        `json:"cards"`
	Revealed  []int             `json:"revealed"`
	Phase     string            `json:"phase"`
	Score     int               `json:"score"`
	Moves     int               `json:"moves"`
	Combo     int               `json:"combo"`
	Collected int               `json:"collected"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// RoundOverMsg is sent once when the last pair is collected.
type RoundOverMsg struct {
	Type      string `json:"type"`
	RoundID   string `json:"roundId"`
	Score     int    `json:"score"`
	Moves     int    `json:"moves"`
	Bonus     int    `json:"bonus"`
	BestCombo int    `json:"bestCombo"`
	ElapsedMS int64  `json:"elapsedMs"`
}

// TransitionMsg tells the client to leave the round for another screen.
type TransitionMsg struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// cardViewState is the protocol state of a card. A card whose reveal is
// still running is reported as "flipping" without its face.
func cardViewState(c *Card) string {
	if c.Pending() {
		return "flipping"
	}
	return c.State.String()
}

// BuildCardViews constructs the client-facing card list.
// Hidden and flipping cards do not expose their face.
func BuildCardViews(board *Board) []CardView {
	views := make([]CardView, len(board.Cards))
	for i, card := range board.Cards {
		cv := CardView{
			Index: card.Index,
			State: cardViewState(card),
		}
		if card.State == Revealed || card.State == Collected {
			face := card.Face
			cv.Face = &face
		}
		views[i] = cv
	}
	return views
}

// BuildRoundState returns the round state view.
func BuildRoundState(r *Round) RoundStateMsg {
	ctx := r.Context()
	return RoundStateMsg{
		Type:      "round_state",
		RoundID:   r.ID,
		Rows:      r.Board.Rows,
		Cols:      r.Board.Cols,
		Cards:     BuildCardViews(r.Board),
		Revealed:  ctx.Revealed.Indices(),
		Phase:     r.State(),
		Score:     r.Score.Points(),
		Moves:     r.Board.MoveCount,
		Combo:     r.Board.ComboLength,
		Collected: ctx.Collected.Count(),
	}
}
