package model

import (
	"encoding/json"
	"fmt"
)

// GameID names a mini-game variant
type GameID string

const (
	GameTicTacToe GameID = "tictactoe"
	GameConnect4  GameID = "connect4"
	GameRPS       GameID = "rps"
)

// Mark is a board symbol or a game outcome. The empty mark encodes as JSON null.
type Mark string

const (
	MarkEmpty  Mark = ""
	MarkX      Mark = "X"
	MarkO      Mark = "O"
	MarkRed    Mark = "R"
	MarkYellow Mark = "Y"
	MarkDraw   Mark = "Draw"
)

// MarshalJSON encodes the empty mark as null
func (m Mark) MarshalJSON() ([]byte, error) {
	if m == MarkEmpty {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

// Connect-four grid dimensions
const (
	Connect4Rows = 6
	Connect4Cols = 7
)

// RPSChoice is a rock-paper-scissors pick
type RPSChoice string

const (
	RPSRock     RPSChoice = "rock"
	RPSPaper    RPSChoice = "paper"
	RPSScissors RPSChoice = "scissors"
)

// GameHeader is shared by every variant's state
type GameHeader struct {
	GameID GameID    `json:"gameId"`
	Users  [2]ConnID `json:"users"` // seat 0, seat 1
}

// TicTacToeState is the board of a tic-tac-toe game. Seat 0 plays X.
type TicTacToeState struct {
	GameHeader
	Board  [9]Mark `json:"board"`
	XTurn  bool    `json:"xTurn"`
	Winner Mark    `json:"winner"` // X, O, Draw or empty while in progress
}

// Connect4State is the grid of a connect-four game, row 0 at the top. Seat 0 plays red.
type Connect4State struct {
	GameHeader
	Board   [Connect4Rows][Connect4Cols]Mark `json:"board"`
	RedTurn bool                             `json:"rTurn"`
	Winner  Mark                             `json:"winner"` // R, Y, Draw or empty
}

// RPSState tracks the picks of a rock-paper-scissors round
type RPSState struct {
	GameHeader
	Picks    map[ConnID]RPSChoice `json:"picks"`
	Revealed bool                 `json:"reveal"`
	Result   Mark                 `json:"result"` // winning identity, Draw, or empty
}

// GameState is a tagged union over the supported variants; exactly one
// variant pointer is set.
type GameState struct {
	TicTacToe *TicTacToeState
	Connect4  *Connect4State
	RPS       *RPSState
}

// Header returns the variant-independent part of the state
func (g *GameState) Header() GameHeader {
	switch {
	case g.TicTacToe != nil:
		return g.TicTacToe.GameHeader
	case g.Connect4 != nil:
		return g.Connect4.GameHeader
	case g.RPS != nil:
		return g.RPS.GameHeader
	}
	return GameHeader{}
}

// ID returns the variant of the game
func (g *GameState) ID() GameID {
	return g.Header().GameID
}

// Seat returns the seat index held by the given identity, or -1 for spectators
func (g *GameState) Seat(id ConnID) int {
	users := g.Header().Users
	for i, u := range users {
		if u != "" && u == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the state
func (g *GameState) Clone() *GameState {
	cp := &GameState{}
	switch {
	case g.TicTacToe != nil:
		s := *g.TicTacToe
		cp.TicTacToe = &s
	case g.Connect4 != nil:
		s := *g.Connect4
		cp.Connect4 = &s
	case g.RPS != nil:
		s := *g.RPS
		s.Picks = make(map[ConnID]RPSChoice, len(g.RPS.Picks))
		for k, v := range g.RPS.Picks {
			s.Picks[k] = v
		}
		cp.RPS = &s
	}
	return cp
}

// MarshalJSON flattens the active variant into a single object
func (g GameState) MarshalJSON() ([]byte, error) {
	switch {
	case g.TicTacToe != nil:
		return json.Marshal(g.TicTacToe)
	case g.Connect4 != nil:
		return json.Marshal(g.Connect4)
	case g.RPS != nil:
		return json.Marshal(g.RPS)
	}
	return []byte("null"), nil
}

// UnmarshalJSON picks the variant from the gameId field
func (g *GameState) UnmarshalJSON(data []byte) error {
	var header GameHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	*g = GameState{}
	switch header.GameID {
	case GameTicTacToe:
		g.TicTacToe = &TicTacToeState{}
		return json.Unmarshal(data, g.TicTacToe)
	case GameConnect4:
		g.Connect4 = &Connect4State{}
		return json.Unmarshal(data, g.Connect4)
	case GameRPS:
		g.RPS = &RPSState{}
		return json.Unmarshal(data, g.RPS)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownGame, header.GameID)
	}
}
