package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/looplab/fsm"

	"memory-match-server/config"
	"memory-match-server/matcherrors"
)

// Round states.
const (
	RoundActive    = "active"
	RoundResolving = "resolving"
	RoundEnded     = "ended"
)

const (
	eventLock   = "lock"
	eventUnlock = "unlock"
	eventEnd    = "end"
)

// Rules holds the timing and scoring parameters of a round.
type Rules struct {
	RevealDelay      time.Duration
	ResolveDelay     time.Duration
	VictoryDelay     time.Duration
	ComboBasePoints  int
	PenalizeMismatch bool
	MismatchPenalty  int
	BonusTable       []config.BonusStep
}

// RulesFromConfig builds round rules from the server configuration.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		RevealDelay:      time.Duration(cfg.RevealDelayMS) * time.Millisecond,
		ResolveDelay:     time.Duration(cfg.ResolveDelayMS) * time.Millisecond,
		VictoryDelay:     time.Duration(cfg.VictoryDelayMS) * time.Millisecond,
		ComboBasePoints:  cfg.ComboBasePoints,
		PenalizeMismatch: cfg.MismatchPolicy == config.MismatchPenalty,
		MismatchPenalty:  cfg.MismatchPenalty,
		BonusTable:       cfg.BonusTable,
	}
}

// DefaultRules returns the rules of config.Defaults().
func DefaultRules() Rules {
	return RulesFromConfig(config.Defaults())
}

// Summary describes a finished round.
type Summary struct {
	Score     int
	Moves     int
	Bonus     int
	BestCombo int
	Pairs     int
	Elapsed   time.Duration
}

// Board owns the cards of a round and runs the match-resolution protocol:
// pair check, delayed resolution, victory check.
type Board struct {
	Rows  int
	Cols  int
	Cards []*Card

	MoveCount   int
	ComboLength int
	BestCombo   int
	Bonus       int

	// OnEnd is called once, when the last pair is collected.
	OnEnd func(Summary)

	ctx            *RoundContext
	rules          Rules
	state          *fsm.FSM
	pendingReveals int
	resolveTask    *Task
}

// NewBoard lays the deck out row-major on a rows x cols board. The deck must
// hold every face exactly twice.
func NewBoard(ctx *RoundContext, rows, cols int, deck []Face, rules Rules) (*Board, error) {
	if len(deck) != rows*cols {
		return nil, fmt.Errorf("%w: deck has %d cards for %dx%d", matcherrors.ErrFaceCountMismatch, len(deck), rows, cols)
	}
	if err := ValidateLayout(rows, cols, facesOf(deck)); err != nil {
		return nil, err
	}
	counts := make(map[Face]int, len(deck)/2)
	for _, f := range deck {
		counts[f]++
	}
	for f, n := range counts {
		if n != 2 {
			return nil, fmt.Errorf("%w: face %q appears %d times", matcherrors.ErrFaceCountMismatch, f, n)
		}
	}

	b := &Board{
		Rows:  rows,
		Cols:  cols,
		Cards: make([]*Card, len(deck)),
		ctx:   ctx,
		rules: rules,
	}
	for i, f := range deck {
		b.Cards[i] = NewCard(ctx, i, f)
	}
	b.state = fsm.NewFSM(
		RoundActive,
		fsm.Events{
			{Name: eventLock, Src: []string{RoundActive}, Dst: RoundResolving},
			{Name: eventUnlock, Src: []string{RoundResolving}, Dst: RoundActive},
			{Name: eventEnd, Src: []string{RoundActive}, Dst: RoundEnded},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				slog.Debug("round state", "tag", "board", "from", e.Src, "to", e.Dst)
			},
		},
	)
	ctx.Board = b
	return b, nil
}

// facesOf returns the distinct faces of a deck in first-seen order.
func facesOf(deck []Face) []Face {
	seen := make(map[Face]struct{}, len(deck)/2)
	faces := make([]Face, 0, len(deck)/2)
	for _, f := range deck {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		faces = append(faces, f)
	}
	return faces
}

// Create draws every card face down.
func (b *Board) Create() {
	for _, c := range b.Cards {
		c.Create()
	}
}

// Update runs the per-tick checks.
func (b *Board) Update() {
	b.checkPair()
	b.checkVictory()
}

// State returns the round state (RoundActive, RoundResolving or RoundEnded).
func (b *Board) State() string {
	return b.state.Current()
}

// Card returns the card at index.
func (b *Board) Card(index int) (*Card, error) {
	if index < 0 || index >= len(b.Cards) {
		return nil, fmt.Errorf("%w: %d", matcherrors.ErrCardOutOfBounds, index)
	}
	return b.Cards[index], nil
}

// AllCollected returns true if every card has been collected.
func (b *Board) AllCollected() bool {
	return b.ctx.Collected.Count() == len(b.Cards)
}

func (b *Board) acceptsFlips() bool {
	return b.state.Is(RoundActive)
}

func (b *Board) onRevealed() {
	b.checkPair()
}

// checkPair locks the board and schedules resolution once two cards are revealed.
func (b *Board) checkPair() {
	if b.ctx.Revealed.Count() != 2 || !b.state.Is(RoundActive) {
		return
	}
	b.fire(eventLock)
	first, second := b.ctx.Revealed.Get(0), b.ctx.Revealed.Get(1)
	b.resolveTask = b.ctx.Scheduler.After(b.rules.ResolveDelay, func() {
		b.resolve(first, second)
	})
}

func (b *Board) resolve(first, second *Card) {
	b.resolveTask = nil
	if first.Face == second.Face {
		b.collectPair(first, second)
	} else {
		b.flipBack(first, second)
	}
	b.ctx.Revealed.Clear()
	b.fire(eventUnlock)
	b.checkVictory()
}

func (b *Board) collectPair(first, second *Card) {
	first.MarkCollected()
	second.MarkCollected()
	b.ComboLength++
	if b.ComboLength > b.BestCombo {
		b.BestCombo = b.ComboLength
	}
	b.ctx.Score.AddPoints(b.ComboLength * b.rules.ComboBasePoints)
}

func (b *Board) flipBack(first, second *Card) {
	first.ResetToHidden()
	second.ResetToHidden()
	b.ComboLength = 0
	if b.rules.PenalizeMismatch {
		b.ctx.Score.RemovePoints(b.rules.MismatchPenalty)
	}
}

// checkVictory ends the round once every card is collected, awards the move
// bonus and schedules the transition back to the menu.
func (b *Board) checkVictory() {
	if !b.state.Is(RoundActive) || !b.AllCollected() {
		return
	}
	b.fire(eventEnd)

	b.Bonus = VictoryBonus(b.rules.BonusTable, b.MoveCount)
	if b.Bonus > 0 {
		b.ctx.Score.AddPoints(b.Bonus)
	}
	slog.Debug("round cleared", "tag", "board", "moves", b.MoveCount, "bonus", b.Bonus, "score", b.ctx.Score.Points())

	if b.OnEnd != nil {
		b.OnEnd(Summary{
			Score:     b.ctx.Score.Points(),
			Moves:     b.MoveCount,
			Bonus:     b.Bonus,
			BestCombo: b.BestCombo,
			Pairs:     len(b.Cards) / 2,
			Elapsed:   b.ctx.Scheduler.Now(),
		})
	}
	b.ctx.Scheduler.After(b.rules.VictoryDelay, func() {
		b.ctx.Host.Transition(StateMenu)
	})
}

func (b *Board) fire(event string) {
	if err := b.state.Event(context.Background(), event); err != nil {
		slog.Error("round state transition", "tag", "board", "event", event, "state", b.state.Current(), "err", err)
	}
}
