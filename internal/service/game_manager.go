// service/game_manager.go
package service

import (
	"context"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ai"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

type Mode string

const (
	ModeHumanVsHuman    Mode = "hvh"
	ModeHumanVsComputer Mode = "hvc"
)

// Options fix how a session is played. They do not change after creation.
type Options struct {
	Mode       Mode              `json:"mode"`
	AIColor    model.PlayerColor `json:"aiColor,omitempty"`
	Difficulty ai.Difficulty     `json:"difficulty,omitempty"`
	Rules      model.Rules       `json:"rules"`
}

// HumanColor is the side the owner plays in a computer game.
func (o Options) HumanColor() model.PlayerColor {
	return o.AIColor.Opponent()
}

// Session is one game plus what the service needs to drive it.
type Session struct {
	Game    *model.Game
	Options Options

	mu         sync.Mutex
	aiTimer    *time.Timer
	aiGen      uint64 // bumped to invalidate a scheduled reply
	round      int
	recorded   bool
	lastActive time.Time
}

func newSession(game *model.Game, opts Options) *Session {
	return &Session{Game: game, Options: opts, lastActive: time.Now()}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// cancelAI drops any pending reply and returns the generation a new one
// must carry.
func (s *Session) cancelAI() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aiTimer != nil {
		s.aiTimer.Stop()
		s.aiTimer = nil
	}
	s.aiGen++
	return s.aiGen
}

func (s *Session) aiCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aiGen == gen
}

func (s *Session) setTimer(gen uint64, t *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aiGen == gen {
		s.aiTimer = t
	} else {
		t.Stop()
	}
}

// markRecorded reports the round to record, or false if it already was.
func (s *Session) markRecorded() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorded {
		return 0, false
	}
	s.recorded = true
	return s.round, true
}

// unmarkRecorded lets round be recorded again after a failed write. A reset
// in the meantime has already cleared the flag for the next round.
func (s *Session) unmarkRecorded(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == round {
		s.recorded = false
	}
}

func (s *Session) newRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.round++
	s.recorded = false
}

type GameManager struct {
	games map[string]*Session
	mu    sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games: make(map[string]*Session),
	}
}

func (gm *GameManager) AddSession(s *Session) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[s.Game.ID]; exists {
		return ErrGameExists
	}
	gm.games[s.Game.ID] = s
	return nil
}

func (gm *GameManager) GetSession(gameID string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	s, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return s, nil
}

func (gm *GameManager) RemoveSession(gameID string) {
	gm.mu.Lock()
	s, exists := gm.games[gameID]
	delete(gm.games, gameID)
	gm.mu.Unlock()

	if exists {
		s.cancelAI()
	}
}

func (gm *GameManager) Len() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Sweep removes sessions untouched for longer than maxIdle and returns how
// many it dropped.
func (gm *GameManager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	gm.mu.RLock()
	var stale []string
	for id, s := range gm.games {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	gm.mu.RUnlock()

	for _, id := range stale {
		gm.RemoveSession(id)
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (gm *GameManager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := gm.Sweep(maxIdle); n > 0 {
				log.Infof("swept %d idle games, %d left", n, gm.Len())
			}
		}
	}
}
