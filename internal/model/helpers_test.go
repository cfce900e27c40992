package model

import (
	"sort"
	"testing"
)

func sq(t *testing.T, s string) Square {
	t.Helper()
	out, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return out
}

func sqs(t *testing.T, names ...string) []Square {
	t.Helper()
	out := make([]Square, 0, len(names))
	for _, n := range names {
		out = append(out, sq(t, n))
	}
	return out
}

func assertSameSquares(t *testing.T, got, want []Square) {
	t.Helper()
	g := squareNames(got)
	w := squareNames(want)
	if len(g) != len(w) {
		t.Fatalf("got squares %v, want %v", g, w)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("got squares %v, want %v", g, w)
		}
	}
}

func squareNames(list []Square) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.String())
	}
	sort.Strings(out)
	return out
}

// position builds a state from a square -> piece map such as {"e1": "K", "e8": "k"}.
func position(t *testing.T, pieces map[string]string, toMove PlayerColor, castling CastlingRights, rules Rules) *GameState {
	t.Helper()
	var b Board
	for name, letter := range pieces {
		b.set(sq(t, name), pieceFromLetter(t, letter))
	}
	s, err := NewPosition(b, toMove, castling, rules)
	if err != nil {
		t.Fatalf("new position: %v", err)
	}
	return s
}

func pieceFromLetter(t *testing.T, letter string) *Piece {
	t.Helper()
	kinds := map[byte]PieceType{'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King}
	c := letter[0]
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
	} else {
		c += 'a' - 'A'
	}
	kind, ok := kinds[c]
	if !ok {
		t.Fatalf("bad piece letter %q", letter)
	}
	return &Piece{Type: kind, Color: color}
}

func mustCommit(t *testing.T, s *GameState, from, to string) Move {
	t.Helper()
	m, ok := s.CommitMove(sq(t, from), sq(t, to))
	if !ok {
		t.Fatalf("move %s-%s rejected\n%s", from, to, s.Board.String())
	}
	return m
}

func pieceCount(b *Board) int {
	n := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if b[row][col] != nil {
				n++
			}
		}
	}
	return n
}
