package game

import (
	"encoding/json"

	"github.com/mcoot/roomhub/internal/model"
)

// connect4Directions are right, down, down-right and down-left
var connect4Directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// Connect4 drops discs into a 6x7 grid; seat 0 is red and moves first
type Connect4 struct{}

type connect4Action struct {
	Column *int `json:"c"`
}

func (Connect4) ID() model.GameID { return model.GameConnect4 }

func (Connect4) New(seats [2]model.ConnID) *model.GameState {
	return &model.GameState{Connect4: &model.Connect4State{
		GameHeader: model.GameHeader{GameID: model.GameConnect4, Users: seats},
		RedTurn:    true,
	}}
}

func (Connect4) Apply(state *model.GameState, actor model.ConnID, action json.RawMessage) bool {
	s := state.Connect4
	if s == nil || s.Winner != model.MarkEmpty {
		return false
	}

	var a connect4Action
	if err := json.Unmarshal(action, &a); err != nil || a.Column == nil {
		return false
	}
	col := *a.Column
	if col < 0 || col >= model.Connect4Cols {
		return false
	}

	disc := model.MarkRed
	switch state.Seat(actor) {
	case 0:
	case 1:
		disc = model.MarkYellow
	default:
		return false
	}
	if (disc == model.MarkRed) != s.RedTurn {
		return false
	}

	row := -1
	for r := model.Connect4Rows - 1; r >= 0; r-- {
		if s.Board[r][col] == model.MarkEmpty {
			row = r
			break
		}
	}
	if row < 0 {
		return false
	}

	s.Board[row][col] = disc
	s.RedTurn = !s.RedTurn
	s.Winner = connect4Outcome(&s.Board)
	return true
}

// connect4Outcome rescans the whole grid for four in a row
func connect4Outcome(board *[model.Connect4Rows][model.Connect4Cols]model.Mark) model.Mark {
	full := true
	for r := 0; r < model.Connect4Rows; r++ {
		for c := 0; c < model.Connect4Cols; c++ {
			m := board[r][c]
			if m == model.MarkEmpty {
				full = false
				continue
			}
			for _, d := range connect4Directions {
				if connect4Run(board, r, c, d[0], d[1], m) {
					return m
				}
			}
		}
	}
	if full {
		return model.MarkDraw
	}
	return model.MarkEmpty
}

func connect4Run(board *[model.Connect4Rows][model.Connect4Cols]model.Mark, r, c, dr, dc int, m model.Mark) bool {
	for k := 1; k < 4; k++ {
		rr, cc := r+dr*k, c+dc*k
		if rr < 0 || rr >= model.Connect4Rows || cc < 0 || cc >= model.Connect4Cols {
			return false
		}
		if board[rr][cc] != m {
			return false
		}
	}
	return true
}
