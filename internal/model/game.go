package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

// The connections observing a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex // one writer per websocket at a time
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game holds the one live GameState of a session. Every mutation and the
// status evaluation that follows it happen under mu, so observers never see
// a half-applied commit.
type Game struct {
	ID    string
	Owner string

	mu          sync.Mutex
	state       *GameState
	status      GameStatus
	sound       string
	seq         uint64
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
}

type Clocks struct {
	White ClientClock `json:"white"`
	Black ClientClock `json:"black"`
}

// GameSnapshot is the client-facing copy of a game.
type GameSnapshot struct {
	ID              string         `json:"id"`
	Seq             uint64         `json:"seq"`
	Sound           string         `json:"sound"`
	Status          GameStatus     `json:"status"`
	IsCheck         bool           `json:"isCheck"`
	Phase           Phase          `json:"phase"`
	ToMove          PlayerColor    `json:"toMove"`
	Board           Board          `json:"board"`
	Castling        CastlingRights `json:"castling"`
	EnPassantTarget *Square        `json:"enPassantTarget"`
	MoveHistory     []string       `json:"moveHistory"`
	CapturedPieces  CapturedPieces `json:"capturedPieces"`
	SelectedSquare  *Square        `json:"selectedSquare"`
	LegalMoves      []Square       `json:"legalMoves"`
	LastMove        *SimpleMove    `json:"lastMove"`
	Clocks          Clocks         `json:"clocks"`
	Rules           Rules          `json:"rules"`
}

func NewGame(id, owner string, rules Rules) *Game {
	g := &Game{
		ID:          id,
		Owner:       owner,
		state:       NewGameStateWithRules(rules),
		status:      StatusNormal,
		connections: NewGameConnections(),
		whiteClock:  NewClock(),
		blackClock:  NewClock(),
	}
	g.whiteClock.Start()
	return g
}

func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) snapshot() GameSnapshot {
	st := g.state.Clone()
	history := make([]string, 0, len(st.MoveHistory))
	for _, m := range st.MoveHistory {
		history = append(history, m.Notation)
	}
	var last *SimpleMove
	if m, ok := st.LastMove(); ok {
		sm := m.Simple()
		last = &sm
	}
	return GameSnapshot{
		ID:              g.ID,
		Seq:             g.seq,
		Sound:           g.sound,
		Status:          g.status,
		IsCheck:         g.status == StatusCheck || g.status == StatusCheckmate,
		Phase:           st.Phase(),
		ToMove:          st.ToMove,
		Board:           st.Board,
		Castling:        st.Castling,
		EnPassantTarget: st.EnPassantTarget,
		MoveHistory:     history,
		CapturedPieces:  st.CapturedPieces,
		SelectedSquare:  st.SelectedSquare,
		LegalMoves:      st.LegalMoves,
		LastMove:        last,
		Clocks:          Clocks{White: g.whiteClock.client(), Black: g.blackClock.client()},
		Rules:           st.Rules,
	}
}

func (g *Game) LegalMovesAt(sq Square) []Square {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.LegalMovesAt(sq)
}

func (g *Game) Status(side PlayerColor) GameStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side == g.state.ToMove {
		return g.status
	}
	return g.state.Status(side)
}

func (g *Game) ToMove() PlayerColor {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.ToMove
}

func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.state.MoveHistory)
}

// Duration is the thinking time both sides have used so far.
func (g *Game) Duration() time.Duration {
	return g.whiteClock.Used() + g.blackClock.Used()
}

// MakeMove commits from-to for the side to move.
func (g *Game) MakeMove(from, to Square) (Move, error) {
	return g.MakeMoveWith(func(*GameState) (SimpleMove, error) {
		return SimpleMove{From: from, To: to}, nil
	})
}

// MakeMoveAs is MakeMove for a caller that may only move side's pieces.
func (g *Game) MakeMoveAs(side PlayerColor, from, to Square) (Move, error) {
	return g.MakeMoveWith(func(s *GameState) (SimpleMove, error) {
		if s.ToMove != side {
			return SimpleMove{}, ErrNotYourTurn
		}
		return SimpleMove{From: from, To: to}, nil
	})
}

// MakeMoveWith lets choose pick the move from the live state and commits it
// in the same critical section. An error from choose is returned as is.
func (g *Game) MakeMoveWith(choose func(*GameState) (SimpleMove, error)) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status.Over() {
		return Move{}, ErrGameOver
	}
	choice, err := choose(g.state)
	if err != nil {
		return Move{}, err
	}
	move, ok := g.state.CommitMove(choice.From, choice.To)
	if !ok {
		return Move{}, ErrIllegalMove
	}
	g.afterCommit(move)
	return move, nil
}

// Click feeds one square press to the selection state machine.
func (g *Game) Click(sq Square) (ClickResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.click(sq)
}

// ClickAs is Click for a caller that only plays side.
func (g *Game) ClickAs(side PlayerColor, sq Square) (ClickResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.ToMove != side && !g.status.Over() {
		return ClickResult{Outcome: ClickIgnored}, ErrNotYourTurn
	}
	return g.click(sq)
}

func (g *Game) click(sq Square) (ClickResult, error) {
	if g.status.Over() {
		return ClickResult{Outcome: ClickIgnored}, ErrGameOver
	}
	res := g.state.Click(sq)
	if res.Outcome == ClickCommitted {
		g.afterCommit(*res.Move)
	} else {
		g.publish()
	}
	return res, nil
}

func (g *Game) Undo() (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	move, ok := g.state.Undo()
	if !ok {
		return Move{}, ErrNothingToUndo
	}
	g.clock(move.Piece.Color.Opponent()).Stop()
	g.clock(move.Piece.Color).Start()
	g.status = g.state.Status(g.state.ToMove)
	g.sound = "move"
	g.publish()
	return move, nil
}

func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.Reset()
	g.status = StatusNormal
	g.sound = ""
	g.whiteClock.Reset()
	g.blackClock.Reset()
	g.whiteClock.Start()
	g.publish()
}

func (g *Game) clock(color PlayerColor) *Clock {
	if color == White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) afterCommit(move Move) {
	g.clock(move.Piece.Color).Stop()
	g.status = g.state.Status(g.state.ToMove)
	if !g.status.Over() {
		g.clock(g.state.ToMove).Start()
	}

	switch {
	case g.status == StatusCheck || g.status == StatusCheckmate:
		g.sound = "check"
	case move.CapturedPiece != nil:
		g.sound = "capture"
	default:
		g.sound = "move"
	}
	log.Debugf("game %s: %s %s, %s to move (%s)", g.ID, move.Piece.Color, move.Notation, g.state.ToMove, g.status)
	g.publish()
}

// publish pushes a snapshot taken under the game lock to every observer.
// Snapshots carry an increasing Seq so clients can drop stale ones.
func (g *Game) publish() {
	g.seq++
	go g.broadcastState(g.snapshot())
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	if playerID != g.Owner {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infof("game %s: registered connection for player %s", g.ID, playerID)

	go g.broadcastState(g.Snapshot())
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	// A newer connection may already have replaced this one.
	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Infof("game %s: unregistered connection for player %s", g.ID, playerID)
	}
}

func (g *Game) broadcastState(snapshot GameSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	for playerID, conn := range active {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Warnf("game %s: send state to player %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
