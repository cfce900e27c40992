package model

type Phase string

const (
	PhaseAwaitingSelection Phase = "awaitingSelection"
	PhasePieceSelected     Phase = "pieceSelected"
)

type ClickOutcome string

const (
	ClickIgnored    ClickOutcome = "ignored"
	ClickSelected   ClickOutcome = "selected"
	ClickDeselected ClickOutcome = "deselected"
	ClickCommitted  ClickOutcome = "committed"
)

type ClickResult struct {
	Outcome ClickOutcome `json:"outcome"`
	Move    *Move        `json:"move,omitempty"`
}

func (s *GameState) Phase() Phase {
	if s.SelectedSquare != nil {
		return PhasePieceSelected
	}
	return PhaseAwaitingSelection
}

// Click drives the selection state machine with one square press.
func (s *GameState) Click(sq Square) ClickResult {
	if !sq.OnBoard() {
		return ClickResult{Outcome: ClickIgnored}
	}
	if s.SelectedSquare == nil {
		if s.selectSquare(sq) {
			return ClickResult{Outcome: ClickSelected}
		}
		return ClickResult{Outcome: ClickIgnored}
	}

	if *s.SelectedSquare == sq {
		s.clearSelection()
		return ClickResult{Outcome: ClickDeselected}
	}
	for _, dest := range s.LegalMoves {
		if dest == sq {
			move, _ := s.CommitMove(*s.SelectedSquare, sq)
			return ClickResult{Outcome: ClickCommitted, Move: &move}
		}
	}
	if s.selectSquare(sq) {
		return ClickResult{Outcome: ClickSelected}
	}
	s.clearSelection()
	return ClickResult{Outcome: ClickDeselected}
}

func (s *GameState) Deselect() {
	s.clearSelection()
}

func (s *GameState) selectSquare(sq Square) bool {
	moves := s.LegalMovesAt(sq)
	if len(moves) == 0 {
		return false
	}
	selected := sq
	s.SelectedSquare = &selected
	s.LegalMoves = moves
	return true
}
