package game

import (
	"encoding/json"

	"github.com/mcoot/roomhub/internal/model"
)

// tictactoeLines are the rows, columns and diagonals of a 3x3 board
var tictactoeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToe is played on 9 cells; seat 0 is X and moves first
type TicTacToe struct{}

type tictactoeAction struct {
	Cell *int `json:"i"`
}

func (TicTacToe) ID() model.GameID { return model.GameTicTacToe }

func (TicTacToe) New(seats [2]model.ConnID) *model.GameState {
	return &model.GameState{TicTacToe: &model.TicTacToeState{
		GameHeader: model.GameHeader{GameID: model.GameTicTacToe, Users: seats},
		XTurn:      true,
	}}
}

func (TicTacToe) Apply(state *model.GameState, actor model.ConnID, action json.RawMessage) bool {
	s := state.TicTacToe
	if s == nil || s.Winner != model.MarkEmpty {
		return false
	}

	var a tictactoeAction
	if err := json.Unmarshal(action, &a); err != nil || a.Cell == nil {
		return false
	}
	cell := *a.Cell
	if cell < 0 || cell >= len(s.Board) || s.Board[cell] != model.MarkEmpty {
		return false
	}

	mark := model.MarkX
	switch state.Seat(actor) {
	case 0:
	case 1:
		mark = model.MarkO
	default:
		return false
	}
	if (mark == model.MarkX) != s.XTurn {
		return false
	}

	s.Board[cell] = mark
	s.XTurn = !s.XTurn
	s.Winner = tictactoeOutcome(s.Board)
	return true
}

// tictactoeOutcome returns the winning mark, Draw for a full board with no
// line, or empty while the game is in progress
func tictactoeOutcome(board [9]model.Mark) model.Mark {
	for _, line := range tictactoeLines {
		a := board[line[0]]
		if a != model.MarkEmpty && a == board[line[1]] && a == board[line[2]] {
			return a
		}
	}
	for _, m := range board {
		if m == model.MarkEmpty {
			return model.MarkEmpty
		}
	}
	return model.MarkDraw
}
