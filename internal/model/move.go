package model

import "fmt"

type MoveKind string

const (
	MoveNormal    MoveKind = "normal"
	MoveCastle    MoveKind = "castle"
	MoveEnPassant MoveKind = "enPassant"
	MovePromotion MoveKind = "promotion"
)

// SimpleMove is a bare from/to pair, the unit the AI and the transport speak in.
type SimpleMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m SimpleMove) String() string {
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

type CastleRookMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// Move is a committed ply. The Prev* fields hold what the commit overwrote so
// Undo can restore the position exactly.
type Move struct {
	Piece          Piece           `json:"piece"`
	From           Square          `json:"from"`
	To             Square          `json:"to"`
	Kind           MoveKind        `json:"kind"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	CaptureSquare  *Square         `json:"captureSquare"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Notation       string          `json:"notation"`

	PrevCastling  CastlingRights `json:"-"`
	PrevEnPassant *Square        `json:"-"`
}

func (m Move) Simple() SimpleMove {
	return SimpleMove{From: m.From, To: m.To}
}

type SideCastling struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

type CastlingRights struct {
	White SideCastling `json:"white"`
	Black SideCastling `json:"black"`
}

func fullCastlingRights() CastlingRights {
	return CastlingRights{
		White: SideCastling{Kingside: true, Queenside: true},
		Black: SideCastling{Kingside: true, Queenside: true},
	}
}

func (c *CastlingRights) side(color PlayerColor) *SideCastling {
	if color == White {
		return &c.White
	}
	return &c.Black
}

// revokeCorner drops the right tied to a rook's home corner, if sq is one.
func (c *CastlingRights) revokeCorner(color PlayerColor, sq Square) {
	if sq.Row != color.homeRow() {
		return
	}
	switch sq.Col {
	case 0:
		c.side(color).Queenside = false
	case 7:
		c.side(color).Kingside = false
	}
}
