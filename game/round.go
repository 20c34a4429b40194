package game

import (
	"math/rand"
	"time"
)

// RoundContext is the state shared by the entities of one round. It is built
// by NewRound and handed to every card and to the board; nothing else holds it.
type RoundContext struct {
	Revealed  *Collection
	Collected *Collection
	Score     *Score
	Scheduler *Scheduler
	Host      Host
	Board     *Board
}

// Round is one playthrough of a board, from setup to victory.
type Round struct {
	ID    string
	Board *Board
	Score *Score

	ctx      *RoundContext
	entities Group
	closed   bool
}

// NewRound builds a round from an explicit deck laid out row-major.
func NewRound(id string, rows, cols int, deck []Face, rules Rules, host Host) (*Round, error) {
	if host == nil {
		host = NopHost{}
	}
	ctx := &RoundContext{
		Revealed:  NewCollection(),
		Collected: NewCollection(),
		Score:     NewScore(host),
		Scheduler: NewScheduler(),
		Host:      host,
	}
	board, err := NewBoard(ctx, rows, cols, deck, rules)
	if err != nil {
		return nil, err
	}
	r := &Round{ID: id, Board: board, Score: ctx.Score, ctx: ctx}
	r.entities.Add(board)
	r.entities.Add(ctx.Score)
	return r, nil
}

// NewShuffledRound validates the face set against the board size and builds a
// round from a freshly shuffled deck.
func NewShuffledRound(id string, rows, cols int, faces []Face, rules Rules, rng *rand.Rand, host Host) (*Round, error) {
	if err := ValidateLayout(rows, cols, faces); err != nil {
		return nil, err
	}
	return NewRound(id, rows, cols, ShuffledDeck(rng, faces), rules, host)
}

// Context exposes the shared round state (read it, do not mutate it).
func (r *Round) Context() *RoundContext {
	return r.ctx
}

// Create draws the initial board and score.
func (r *Round) Create() {
	r.entities.Create()
}

// Update runs one logical tick.
func (r *Round) Update() {
	if r.closed {
		return
	}
	r.entities.Update()
}

// Advance moves round time forward by dt, firing due timers, then ticks.
func (r *Round) Advance(dt time.Duration) {
	if r.closed {
		return
	}
	r.ctx.Scheduler.Advance(dt)
	r.Update()
}

// RequestFlip asks to flip the card at index. It returns false when the
// request is ignored and an error only for an index off the board.
func (r *Round) RequestFlip(index int) (bool, error) {
	card, err := r.Board.Card(index)
	if err != nil {
		return false, err
	}
	if r.closed {
		return false, nil
	}
	return card.RequestFlip(), nil
}

// State returns the round state.
func (r *Round) State() string {
	return r.Board.State()
}

// Ended reports whether every pair has been collected.
func (r *Round) Ended() bool {
	return r.Board.State() == RoundEnded
}

// Close cancels every pending timer. The round ignores further input.
func (r *Round) Close() {
	r.closed = true
	r.ctx.Scheduler.CancelAll()
}

// Closed reports whether Close was called.
func (r *Round) Closed() bool {
	return r.closed
}
