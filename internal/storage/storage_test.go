package storage

import (
	"errors"
	"testing"
	"time"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("EmptyStats", func(t *testing.T) {
		s := openTest(t)
		stats, err := s.LoadStats()
		if err != nil {
			t.Fatalf("LoadStats: %v", err)
		}
		if stats.GamesPlayed != 0 || stats.AverageMoves() != 0 {
			t.Errorf("expected empty stats, got %+v", stats)
		}
	})

	t.Run("RecordGame", func(t *testing.T) {
		s := openTest(t)
		results := []GameResult{
			{GameID: "a", Mode: "hvh", Winner: "black", Reason: "checkmate", Moves: 4},
			{GameID: "b", Mode: "hvc", Difficulty: "hard", AIColor: "black", Winner: "white", Reason: "checkmate", Moves: 30},
			{GameID: "c", Mode: "hvc", Difficulty: "easy", AIColor: "black", Winner: "black", Reason: "checkmate", Moves: 20},
			{GameID: "d", Mode: "hvh", Reason: "stalemate", Moves: 50, Duration: time.Minute},
		}
		for _, r := range results {
			if err := s.RecordGame(r); err != nil {
				t.Fatalf("RecordGame(%s): %v", r.GameID, err)
			}
		}

		stats, err := s.LoadStats()
		if err != nil {
			t.Fatalf("LoadStats: %v", err)
		}
		if stats.GamesPlayed != 4 || stats.WhiteWins != 1 || stats.BlackWins != 2 || stats.Draws != 1 {
			t.Errorf("unexpected tallies %+v", stats)
		}
		if stats.HumanWins != 1 || stats.ComputerWins != 1 {
			t.Errorf("human/computer wins = %d/%d", stats.HumanWins, stats.ComputerWins)
		}
		if stats.ByMode["hvh"] != 2 || stats.ByMode["hvc"] != 2 || stats.ByDifficulty["hard"] != 1 {
			t.Errorf("unexpected breakdown %v %v", stats.ByMode, stats.ByDifficulty)
		}
		if stats.TotalMoves != 104 || stats.AverageMoves() != 26 || stats.TotalPlayTime != time.Minute {
			t.Errorf("unexpected totals %+v", stats)
		}
	})

	t.Run("RecordGameIsIdempotent", func(t *testing.T) {
		s := openTest(t)
		r := GameResult{GameID: "x", Mode: "hvh", Winner: "white", Reason: "checkmate", Moves: 9}
		for i := 0; i < 3; i++ {
			if err := s.RecordGame(r); err != nil {
				t.Fatalf("RecordGame: %v", err)
			}
		}
		stats, _ := s.LoadStats()
		if stats.GamesPlayed != 1 {
			t.Errorf("games played %d, want 1", stats.GamesPlayed)
		}

		// A new round of the same game is a new result.
		r.Round = 1
		if err := s.RecordGame(r); err != nil {
			t.Fatalf("RecordGame round 1: %v", err)
		}
		stats, _ = s.LoadStats()
		if stats.GamesPlayed != 2 {
			t.Errorf("games played %d after second round, want 2", stats.GamesPlayed)
		}
		rounds, err := s.GameResults("x")
		if err != nil || len(rounds) != 2 {
			t.Errorf("GameResults = %v, %v", rounds, err)
		}
	})

	t.Run("LoadResult", func(t *testing.T) {
		s := openTest(t)
		if _, err := s.LoadResult("missing", 0); !errors.Is(err, ErrResultNotFound) {
			t.Fatalf("missing result err = %v", err)
		}
		if err := s.RecordGame(GameResult{GameID: "g", Mode: "hvh", Reason: "stalemate"}); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
		got, err := s.LoadResult("g", 0)
		if err != nil {
			t.Fatalf("LoadResult: %v", err)
		}
		if !got.Draw() || got.Reason != "stalemate" || got.FinishedAt.IsZero() {
			t.Errorf("unexpected result %+v", got)
		}
	})

	t.Run("RecentResults", func(t *testing.T) {
		s := openTest(t)
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, id := range []string{"zz", "aa", "mm"} {
			r := GameResult{GameID: id, Mode: "hvh", Reason: "stalemate", FinishedAt: base.Add(time.Duration(i) * time.Hour)}
			if err := s.RecordGame(r); err != nil {
				t.Fatalf("RecordGame: %v", err)
			}
		}
		got, err := s.RecentResults(2)
		if err != nil {
			t.Fatalf("RecentResults: %v", err)
		}
		if len(got) != 2 || got[0].GameID != "mm" || got[1].GameID != "aa" {
			t.Errorf("recent results %+v", got)
		}
	})
}
