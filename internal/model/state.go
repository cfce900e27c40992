package model

import (
	"fmt"
)

// Rules holds the rule choices a game is played under.
type Rules struct {
	// StrictCastling forbids castling through an attacked transit square.
	// With it off only the king's origin is checked.
	StrictCastling bool `json:"strictCastling"`
}

func DefaultRules() Rules {
	return Rules{StrictCastling: true}
}

type KingPositions struct {
	White Square `json:"white"`
	Black Square `json:"black"`
}

func (k *KingPositions) of(color PlayerColor) Square {
	if color == White {
		return k.White
	}
	return k.Black
}

func (k *KingPositions) set(color PlayerColor, sq Square) {
	if color == White {
		k.White = sq
	} else {
		k.Black = sq
	}
}

// CapturedPieces is keyed by the capturing side.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

func (c *CapturedPieces) by(color PlayerColor) *[]Piece {
	if color == White {
		return &c.White
	}
	return &c.Black
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]Piece, 0),
		Black: make([]Piece, 0),
	}
}

// GameState is the whole record of one game. It is not safe for concurrent
// use; Game serialises access to it.
type GameState struct {
	Board           Board          `json:"board"`
	ToMove          PlayerColor    `json:"toMove"`
	Castling        CastlingRights `json:"castling"`
	EnPassantTarget *Square        `json:"enPassantTarget"`
	KingPositions   KingPositions  `json:"kingPositions"`
	MoveHistory     []Move         `json:"moveHistory"`
	CapturedPieces  CapturedPieces `json:"capturedPieces"`
	Rules           Rules          `json:"rules"`

	SelectedSquare *Square  `json:"selectedSquare"`
	LegalMoves     []Square `json:"legalMoves"`
}

// NewGameState returns the standard starting position under the default rules.
func NewGameState() *GameState {
	return NewGameStateWithRules(DefaultRules())
}

func NewGameStateWithRules(rules Rules) *GameState {
	s := &GameState{Rules: rules}
	s.reset()
	return s
}

// NewPosition sets up an arbitrary position. Both kings must be on the board.
func NewPosition(board Board, toMove PlayerColor, castling CastlingRights, rules Rules) (*GameState, error) {
	white, ok := board.findKing(White)
	if !ok {
		return nil, fmt.Errorf("white: %w", ErrMissingKing)
	}
	black, ok := board.findKing(Black)
	if !ok {
		return nil, fmt.Errorf("black: %w", ErrMissingKing)
	}
	return &GameState{
		Board:          board,
		ToMove:         toMove,
		Castling:       castling,
		KingPositions:  KingPositions{White: white, Black: black},
		MoveHistory:    make([]Move, 0),
		CapturedPieces: newCapturedPieces(),
		Rules:          rules,
		LegalMoves:     make([]Square, 0),
	}, nil
}

// Reset puts the starting position back, keeping the rules.
func (s *GameState) Reset() {
	s.reset()
}

func (s *GameState) reset() {
	s.Board = newBoard()
	s.ToMove = White
	s.Castling = fullCastlingRights()
	s.EnPassantTarget = nil
	s.KingPositions = KingPositions{White: Square{Row: 7, Col: 4}, Black: Square{Row: 0, Col: 4}}
	s.MoveHistory = make([]Move, 0)
	s.CapturedPieces = newCapturedPieces()
	s.clearSelection()
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *GameState) Clone() *GameState {
	c := *s
	c.MoveHistory = append(make([]Move, 0, len(s.MoveHistory)), s.MoveHistory...)
	c.CapturedPieces = CapturedPieces{
		White: append(make([]Piece, 0, len(s.CapturedPieces.White)), s.CapturedPieces.White...),
		Black: append(make([]Piece, 0, len(s.CapturedPieces.Black)), s.CapturedPieces.Black...),
	}
	c.LegalMoves = append(make([]Square, 0, len(s.LegalMoves)), s.LegalMoves...)
	if s.EnPassantTarget != nil {
		ep := *s.EnPassantTarget
		c.EnPassantTarget = &ep
	}
	if s.SelectedSquare != nil {
		sel := *s.SelectedSquare
		c.SelectedSquare = &sel
	}
	return &c
}

// LastMove returns the most recent committed ply.
func (s *GameState) LastMove() (Move, bool) {
	if len(s.MoveHistory) == 0 {
		return Move{}, false
	}
	return s.MoveHistory[len(s.MoveHistory)-1], true
}

func (s *GameState) clearSelection() {
	s.SelectedSquare = nil
	s.LegalMoves = make([]Square, 0)
}

// kingSquare reads the king cache. A cache that disagrees with the board is
// a bug in the applier, so it panics rather than returning an error.
func (s *GameState) kingSquare(color PlayerColor) Square {
	sq := s.KingPositions.of(color)
	if p := s.Board.At(sq); p == nil || p.Type != King || p.Color != color {
		panic(fmt.Sprintf("model: %s king cache %s out of sync with board", color, sq))
	}
	return sq
}
