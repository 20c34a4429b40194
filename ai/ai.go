package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"time"

	"memory-match-server/config"
	"memory-match-server/game"
)

// idleRetry is how long the bot waits for a new view before deciding again.
const idleRetry = 3 * time.Second

// clampChance keeps a percentage in 0..100.
func clampChance(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// hiddenIndices returns the indices of cards that can still be flipped, in board order.
func hiddenIndices(cards []game.CardView) []int {
	var out []int
	for _, c := range cards {
		if c.State == game.Hidden.String() {
			out = append(out, c.Index)
		}
	}
	return out
}

// remember records every face visible in the view.
func remember(memory map[int]game.Face, cards []game.CardView) {
	for _, c := range cards {
		if c.Face != nil {
			memory[c.Index] = *c.Face
		}
	}
}

// forget drops each remembered hidden card with the given chance (0-100).
// Collected cards are never forgotten; they are off the board anyway.
func forget(memory map[int]game.Face, cards []game.CardView, chance int, rng *rand.Rand) {
	chance = clampChance(chance)
	if chance == 0 {
		return
	}
	for _, c := range cards {
		if c.State != game.Hidden.String() {
			continue
		}
		if _, ok := memory[c.Index]; ok && rng.Intn(100) < chance {
			delete(memory, c.Index)
		}
	}
}

// knownPair returns two hidden cards the bot remembers as matching, or (-1, -1).
func knownPair(memory map[int]game.Face, hidden []int) (int, int) {
	seen := make(map[game.Face]int)
	for _, idx := range hidden {
		f, ok := memory[idx]
		if !ok {
			continue
		}
		if first, dup := seen[f]; dup {
			return first, idx
		}
		seen[f] = idx
	}
	return -1, -1
}

// pickUnknown prefers a hidden card the bot has not seen, else any hidden card.
func pickUnknown(memory map[int]game.Face, hidden []int, exclude int, rng *rand.Rand) int {
	var unknown, rest []int
	for _, idx := range hidden {
		if idx == exclude {
			continue
		}
		if _, ok := memory[idx]; ok {
			rest = append(rest, idx)
		} else {
			unknown = append(unknown, idx)
		}
	}
	if len(unknown) > 0 {
		return unknown[rng.Intn(len(unknown))]
	}
	if len(rest) > 0 {
		return rest[rng.Intn(len(rest))]
	}
	return -1
}

// pickFlip chooses the next card to flip for the given view, or -1 to wait.
// The bot waits while the board is resolving, while two cards are up, and
// while its first card is still turning over (its face is not known yet).
func pickFlip(state *game.RoundStateMsg, memory map[int]game.Face, useKnownPair bool, rng *rand.Rand) (int, string) {
	if state.Phase != game.RoundActive {
		return -1, "board locked"
	}
	var up []game.CardView
	for _, c := range state.Cards {
		if c.State == game.Revealed.String() || c.State == "flipping" {
			up = append(up, c)
		}
	}
	hidden := hiddenIndices(state.Cards)
	if len(hidden) == 0 || len(up) >= 2 {
		return -1, "waiting"
	}

	if len(up) == 1 {
		first := up[0]
		if first.Face == nil {
			return -1, "first card turning"
		}
		if useKnownPair {
			for _, idx := range hidden {
				if f, ok := memory[idx]; ok && f == *first.Face {
					return idx, "known match"
				}
			}
		}
		return pickUnknown(memory, hidden, first.Index, rng), "explore"
	}

	if useKnownPair {
		if a, _ := knownPair(memory, hidden); a >= 0 {
			return a, "known pair"
		}
	}
	return pickUnknown(memory, hidden, -1, rng), "explore"
}

// latestState drains whatever is already queued and returns the newest
// round_state. ok is false if the round is over for the bot.
func latestState(data []byte, aiSend <-chan []byte) (state *game.RoundStateMsg, ok bool) {
	for {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &env); err == nil {
			switch env.Type {
			case "transition", "round_over":
				return nil, false
			case "round_state":
				var s game.RoundStateMsg
				if err := json.Unmarshal(data, &s); err == nil {
					state = &s
				}
			}
		}
		select {
		case next, open := <-aiSend:
			if !open {
				return nil, false
			}
			data = next
		default:
			return state, true
		}
	}
}

// Run plays a round as params describes. It reads the bot's own broadcast
// channel, remembers every face it sees, and submits flips after a human-like
// delay. It returns when the round ends, the game stops, or ctx is cancelled.
func Run(ctx context.Context, aiSend <-chan []byte, g *game.Game, params *config.AIParams, rng *rand.Rand) {
	memory := make(map[int]game.Face)
	var last *game.RoundStateMsg

	for {
		select {
		case <-ctx.Done():
			return
		case <-g.Done:
			return
		case <-time.After(idleRetry):
			// A flip can be dropped without a state change; decide again on the last view.
			if last == nil {
				continue
			}
		case data, open := <-aiSend:
			if !open {
				return
			}
			state, ok := latestState(data, aiSend)
			if !ok {
				slog.Debug("round over, bot leaving", "tag", "ai", "name", params.Name)
				return
			}
			if state == nil {
				continue
			}
			last = state
			remember(memory, state.Cards)
			forget(memory, state.Cards, params.ForgetChance, rng)
		}

		useKnownPair := rng.Intn(100) < clampChance(params.UseKnownPairChance)
		idx, reason := pickFlip(last, memory, useKnownPair, rng)
		if idx < 0 {
			continue
		}

		// Human-like delay before acting
		delayMS := params.DelayMinMS
		if params.DelayMaxMS > params.DelayMinMS {
			delayMS = params.DelayMinMS + rng.Intn(params.DelayMaxMS-params.DelayMinMS)
		}
		select {
		case <-ctx.Done():
			return
		case <-g.Done:
			return
		case <-time.After(time.Duration(delayMS) * time.Millisecond):
		}

		slog.Debug("flipping card", "tag", "ai", "name", params.Name, "card", idx, "reason", reason)
		if !g.Submit(game.Action{Type: game.ActionFlipCard, Index: idx}) {
			return
		}
	}
}
