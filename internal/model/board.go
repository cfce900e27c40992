package model

import (
	"fmt"
)

type PieceType string

func (p PieceType) letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Piece is a value; two pieces of the same type and colour are interchangeable.
type Piece struct {
	Type  PieceType   `json:"type"`
	Color PlayerColor `json:"color"`
}

// Letter returns the piece letter, upper case for white and lower case for black.
func (p Piece) Letter() string {
	l := p.Type.letter()
	if p.Color == Black {
		return string(l[0] + ('a' - 'A'))
	}
	return l
}

// Square addresses the board by row and column. Row 0 is black's back rank.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) add(dir Square) Square {
	return Square{Row: s.Row + dir.Row, Col: s.Col + dir.Col}
}

// String renders the square as file letter and rank number, e.g. "e4".
func (s Square) String() string {
	return fmt.Sprintf("%c%d", s.Col+'a', 8-s.Row)
}

// ParseSquare is the inverse of Square.String.
func ParseSquare(str string) (Square, error) {
	if len(str) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, str)
	}
	sq := Square{Row: 8 - int(str[1]-'0'), Col: int(str[0] - 'a')}
	if !sq.OnBoard() {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, str)
	}
	return sq, nil
}

// Board is the 8x8 grid indexed [row][col]. Copying the array value yields
// an independent scratch board because pieces are never mutated in place.
type Board [8][8]*Piece

func (b *Board) At(sq Square) *Piece {
	return b[sq.Row][sq.Col]
}

func (b *Board) set(sq Square, p *Piece) {
	b[sq.Row][sq.Col] = p
}

// String draws the board with piece letters, rank 8 first.
func (b *Board) String() string {
	out := ""
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil {
				out += p.Letter()
			} else {
				out += "."
			}
		}
		out += "\n"
	}
	return out
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() Board {
	var board Board
	for col, kind := range backRank {
		board[0][col] = &Piece{Type: kind, Color: Black}
		board[7][col] = &Piece{Type: kind, Color: White}
		board[1][col] = &Piece{Type: Pawn, Color: Black}
		board[6][col] = &Piece{Type: Pawn, Color: White}
	}
	return board
}

// findKing scans the board; used to seed the king cache for custom positions.
func (b *Board) findKing(color PlayerColor) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil && p.Type == King && p.Color == color {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}
