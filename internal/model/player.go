package model

type PlayerColor string

const (
	White PlayerColor = "white"
	Black PlayerColor = "black"
)

func (c PlayerColor) Opponent() PlayerColor {
	if c == White {
		return Black
	}
	return White
}

func (c PlayerColor) Valid() bool {
	return c == White || c == Black
}

// homeRow is the colour's back rank.
func (c PlayerColor) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

// forward is the row delta of a pawn push.
func (c PlayerColor) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// ParsePlayerColor accepts "white"/"black" and the single letters "w"/"b".
func ParsePlayerColor(s string) (PlayerColor, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return "", false
}
