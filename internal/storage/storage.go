package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyStats     = "stats"
	resultPrefix = "result/"
)

var ErrResultNotFound = errors.New("result not found")

// GameResult is the record of one finished game.
type GameResult struct {
	GameID     string        `json:"game_id"`
	Round      int           `json:"round"` // bumped by every reset of the game
	Mode       string        `json:"mode"`
	Difficulty string        `json:"difficulty,omitempty"`
	AIColor    string        `json:"ai_color,omitempty"`
	Winner     string        `json:"winner,omitempty"` // empty on a draw
	Reason     string        `json:"reason"`
	Moves      int           `json:"moves"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}

func (r GameResult) key() []byte {
	return []byte(fmt.Sprintf("%s%s/%d", resultPrefix, r.GameID, r.Round))
}

func (r GameResult) Draw() bool {
	return r.Winner == ""
}

// GameStats aggregates every recorded result.
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	ComputerWins  int            `json:"computer_wins"`
	HumanWins     int            `json:"human_wins"`
	ByMode        map[string]int `json:"by_mode"`
	ByDifficulty  map[string]int `json:"by_difficulty"`
	TotalMoves    int            `json:"total_moves"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		ByMode:       make(map[string]int),
		ByDifficulty: make(map[string]int),
	}
}

func (s *GameStats) add(r GameResult) {
	s.GamesPlayed++
	s.TotalMoves += r.Moves
	s.TotalPlayTime += r.Duration
	s.ByMode[r.Mode]++
	if r.Difficulty != "" {
		s.ByDifficulty[r.Difficulty]++
	}

	switch r.Winner {
	case "":
		s.Draws++
		return
	case "white":
		s.WhiteWins++
	case "black":
		s.BlackWins++
	}
	if r.AIColor == "" {
		return
	}
	if r.Winner == r.AIColor {
		s.ComputerWins++
	} else {
		s.HumanWins++
	}
}

// AverageMoves is the mean game length in plies.
func (s *GameStats) AverageMoves() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalMoves) / float64(s.GamesPlayed)
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
	mu sync.Mutex // serializes read-modify-write of the stats record
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory keeps everything in memory and loses it on Close.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordGame stores result and folds it into the aggregate stats. Recording
// the same game round twice is a no-op.
func (s *Storage) RecordGame(result GameResult) error {
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now()
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		key := result.key()
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.add(result)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*GameStats, error) {
	stats := NewGameStats()
	item, err := txn.Get([]byte(keyStats))
	if err == badger.ErrKeyNotFound {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}

func (s *Storage) LoadResult(gameID string, round int) (GameResult, error) {
	var result GameResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(GameResult{GameID: gameID, Round: round}.key())
		if err == badger.ErrKeyNotFound {
			return ErrResultNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	return result, err
}

// RecentResults returns up to limit results, newest first.
func (s *Storage) RecentResults(limit int) ([]GameResult, error) {
	return s.scan([]byte(resultPrefix), limit)
}

// GameResults returns every recorded round of one game, newest first.
func (s *Storage) GameResults(gameID string) ([]GameResult, error) {
	return s.scan([]byte(resultPrefix+gameID+"/"), 0)
}

func (s *Storage) scan(prefix []byte, limit int) ([]GameResult, error) {
	results := []GameResult{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var r GameResult
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys are game IDs, so order by finish time here.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinishedAt.After(results[j].FinishedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
