package game

import (
	"encoding/json"

	"github.com/mcoot/roomhub/internal/model"
)

// Variant is one mini-game's rules. Apply mutates state in place and reports
// whether the action was accepted; it is only ever handed a private copy, so
// a rejected action may leave that copy in any state.
type Variant interface {
	ID() model.GameID
	New(seats [2]model.ConnID) *model.GameState
	Apply(state *model.GameState, actor model.ConnID, action json.RawMessage) bool
}

// DefaultVariants returns the built-in games
func DefaultVariants() []Variant {
	return []Variant{
		TicTacToe{},
		Connect4{},
		RockPaperScissors{},
	}
}
