package game

import (
	"encoding/json"
	"strings"

	"github.com/mcoot/roomhub/internal/model"
)

// rpsOrder is the cyclic ordering: each choice beats the one before it
var rpsOrder = [3]model.RPSChoice{model.RPSRock, model.RPSPaper, model.RPSScissors}

// RockPaperScissors collects one pick per seat and reveals once both are in
type RockPaperScissors struct{}

type rpsAction struct {
	Pick string `json:"pick"`
}

func (RockPaperScissors) ID() model.GameID { return model.GameRPS }

func (RockPaperScissors) New(seats [2]model.ConnID) *model.GameState {
	return &model.GameState{RPS: &model.RPSState{
		GameHeader: model.GameHeader{GameID: model.GameRPS, Users: seats},
		Picks:      map[model.ConnID]model.RPSChoice{},
	}}
}

func (RockPaperScissors) Apply(state *model.GameState, actor model.ConnID, action json.RawMessage) bool {
	s := state.RPS
	if s == nil || s.Revealed {
		return false
	}
	if state.Seat(actor) < 0 {
		return false
	}
	if _, picked := s.Picks[actor]; picked {
		return false
	}

	var a rpsAction
	if err := json.Unmarshal(action, &a); err != nil {
		return false
	}
	choice := model.RPSChoice(strings.ToLower(strings.TrimSpace(a.Pick)))
	if rpsIndex(choice) < 0 {
		return false
	}

	if s.Picks == nil {
		s.Picks = map[model.ConnID]model.RPSChoice{}
	}
	s.Picks[actor] = choice

	first, ok0 := s.Picks[s.Users[0]]
	second, ok1 := s.Picks[s.Users[1]]
	if ok0 && ok1 {
		s.Revealed = true
		s.Result = rpsResult(s.Users, first, second)
	}
	return true
}

func rpsIndex(c model.RPSChoice) int {
	for i, o := range rpsOrder {
		if o == c {
			return i
		}
	}
	return -1
}

// rpsResult returns the identity of the winning seat, or Draw
func rpsResult(users [2]model.ConnID, first, second model.RPSChoice) model.Mark {
	switch (rpsIndex(first) - rpsIndex(second) + 3) % 3 {
	case 0:
		return model.MarkDraw
	case 1:
		return model.Mark(users[0])
	default:
		return model.Mark(users[1])
	}
}
