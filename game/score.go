package game

import "strconv"

// ScoreLabel is the host label the score is rendered into.
const ScoreLabel = "score"

// Score accumulates points and re-renders its label on every change.
type Score struct {
	points int
	host   Host
}

// NewScore creates a zero score rendering through host.
func NewScore(host Host) *Score {
	return &Score{host: host}
}

// Create renders the initial label.
func (s *Score) Create() {
	s.render()
}

// Update is a no-op; the label is redrawn on mutation.
func (s *Score) Update() {}

// Points returns the current total.
func (s *Score) Points() int {
	return s.points
}

// AddPoints adds amount to the total.
func (s *Score) AddPoints(amount int) {
	s.points += amount
	s.render()
}

// RemovePoints subtracts amount from the total, never going below zero.
func (s *Score) RemovePoints(amount int) {
	s.points -= amount
	if s.points < 0 {
		s.points = 0
	}
	s.render()
}

func (s *Score) render() {
	s.host.SetLabel(ScoreLabel, "Score: "+strconv.Itoa(s.points))
}
