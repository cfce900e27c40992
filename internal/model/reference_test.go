package model

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/rand"
)

// fenOf renders s for the reference generator. Only the engine's own tests
// need it; games are never imported or exported as FEN.
func fenOf(s *GameState) string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			p := s.Board[row][col]
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&sb, "%d", empty)
				empty = 0
			}
			sb.WriteString(p.Letter())
		}
		if empty > 0 {
			fmt.Fprintf(&sb, "%d", empty)
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if s.ToMove == Black {
		side = "b"
	}
	castling := ""
	if s.Castling.White.Kingside {
		castling += "K"
	}
	if s.Castling.White.Queenside {
		castling += "Q"
	}
	if s.Castling.Black.Kingside {
		castling += "k"
	}
	if s.Castling.Black.Queenside {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}
	ep := "-"
	if s.EnPassantTarget != nil {
		ep = s.EnPassantTarget.String()
	}
	return fmt.Sprintf("%s %s %s %s 0 1", sb.String(), side, castling, ep)
}

func referenceMoves(fen string) []string {
	board := dragontoothmg.ParseFen(fen)
	seen := map[string]bool{}
	for _, m := range board.GenerateLegalMoves() {
		// Promotions come once per piece choice; the engine only knows queens.
		seen[m.String()[:4]] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func engineMoves(s *GameState) []string {
	var out []string
	for _, m := range s.AllLegalMoves(s.ToMove) {
		out = append(out, m.From.String()+m.To.String())
	}
	sort.Strings(out)
	return out
}

func TestFenOfStartingPosition(t *testing.T) {
	want := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	if got := fenOf(NewGameState()); got != want {
		t.Fatalf("fen %q, want %q", got, want)
	}
}

func TestLegalMovesMatchReferenceGenerator(t *testing.T) {
	for seed := uint64(11); seed <= 18; seed++ {
		r := rand.New(rand.NewSource(seed))
		s := NewGameState()
		for ply := 0; ply < 120; ply++ {
			fen := fenOf(s)
			got, want := engineMoves(s), referenceMoves(fen)
			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Fatalf("seed %d ply %d %s\nengine:    %v\nreference: %v", seed, ply, fen, got, want)
			}
			moves := s.AllLegalMoves(s.ToMove)
			if len(moves) == 0 {
				break
			}
			m := moves[r.Intn(len(moves))]
			if _, ok := s.CommitMove(m.From, m.To); !ok {
				t.Fatalf("seed %d ply %d: %s rejected", seed, ply, m)
			}
		}
	}
}
