package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ai"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNotYourGame  = errors.New("game belongs to another player")
	ErrInvalidInput = errors.New("invalid input")

	errAICanceled = errors.New("computer move canceled")
)

// ResultRecorder receives every finished game exactly once.
type ResultRecorder interface {
	RecordGame(result storage.GameResult) error
}

type Settings struct {
	AIDelay        time.Duration // pause before the computer replies; zero replies inline
	StrictCastling bool          // default for games that do not choose
	Seed           uint64        // zero seeds from the clock
}

type GameService struct {
	gameManager *GameManager
	recorder    ResultRecorder
	settings    Settings

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewGameService(gameManager *GameManager, recorder ResultRecorder, settings Settings) *GameService {
	seed := settings.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &GameService{
		gameManager: gameManager,
		recorder:    recorder,
		settings:    settings,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

type NewGameRequest struct {
	Mode           string `json:"mode"`
	AIColor        string `json:"aiColor"`
	Difficulty     string `json:"difficulty"`
	StrictCastling *bool  `json:"strictCastling"`
}

// GameView is a snapshot plus the session options the client renders.
type GameView struct {
	model.GameSnapshot
	Mode       Mode              `json:"mode"`
	AIColor    model.PlayerColor `json:"aiColor,omitempty"`
	Difficulty ai.Difficulty     `json:"difficulty,omitempty"`
}

func (gs *GameService) parseOptions(req NewGameRequest) (Options, error) {
	rules := model.DefaultRules()
	rules.StrictCastling = gs.settings.StrictCastling
	if req.StrictCastling != nil {
		rules.StrictCastling = *req.StrictCastling
	}
	opts := Options{Mode: ModeHumanVsHuman, Rules: rules}

	switch Mode(strings.ToLower(req.Mode)) {
	case "", ModeHumanVsHuman:
		return opts, nil
	case ModeHumanVsComputer:
		opts.Mode = ModeHumanVsComputer
	default:
		return Options{}, fmt.Errorf("%w: mode %q", ErrInvalidInput, req.Mode)
	}

	opts.AIColor = model.Black
	if req.AIColor != "" {
		color, ok := model.ParsePlayerColor(strings.ToLower(req.AIColor))
		if !ok {
			return Options{}, fmt.Errorf("%w: aiColor %q", ErrInvalidInput, req.AIColor)
		}
		opts.AIColor = color
	}
	d, err := ai.ParseDifficulty(req.Difficulty)
	if err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	opts.Difficulty = d
	return opts, nil
}

func (gs *GameService) CreateGame(playerID string, req NewGameRequest) (GameView, error) {
	opts, err := gs.parseOptions(req)
	if err != nil {
		return GameView{}, err
	}

	gameID := uuid.New().String()
	s := newSession(model.NewGame(gameID, playerID, opts.Rules), opts)
	if err := gs.gameManager.AddSession(s); err != nil {
		return GameView{}, fmt.Errorf("failed to create game: %w", err)
	}
	log.Infof("game %s created by %s (mode %s)", gameID, playerID, opts.Mode)

	gs.scheduleAI(s)
	return gs.view(s), nil
}

// session looks a game up for playerID, its owner.
func (gs *GameService) session(gameID, playerID string) (*Session, error) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return nil, err
	}
	if s.Game.Owner != playerID {
		return nil, ErrNotYourGame
	}
	s.touch()
	return s, nil
}

func (gs *GameService) view(s *Session) GameView {
	return GameView{
		GameSnapshot: s.Game.Snapshot(),
		Mode:         s.Options.Mode,
		AIColor:      s.Options.AIColor,
		Difficulty:   s.Options.Difficulty,
	}
}

func (gs *GameService) GetGame(gameID, playerID string) (GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return GameView{}, err
	}
	return gs.view(s), nil
}

func (gs *GameService) LegalMoves(gameID, playerID, square string) ([]model.Square, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return nil, err
	}
	sq, err := model.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	return s.Game.LegalMovesAt(sq), nil
}

// Status evaluates side, or the side to move when side is empty.
func (gs *GameService) Status(gameID, playerID, side string) (model.PlayerColor, model.GameStatus, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return "", "", err
	}
	color := s.Game.ToMove()
	if side != "" {
		var ok bool
		if color, ok = model.ParsePlayerColor(strings.ToLower(side)); !ok {
			return "", "", fmt.Errorf("%w: side %q", ErrInvalidInput, side)
		}
	}
	return color, s.Game.Status(color), nil
}

func (gs *GameService) Select(gameID, playerID, square string) (model.ClickResult, GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return model.ClickResult{}, GameView{}, err
	}
	sq, err := model.ParseSquare(square)
	if err != nil {
		return model.ClickResult{}, GameView{}, err
	}

	var res model.ClickResult
	if s.Options.Mode == ModeHumanVsComputer {
		res, err = s.Game.ClickAs(s.Options.HumanColor(), sq)
	} else {
		res, err = s.Game.Click(sq)
	}
	if err != nil {
		return res, GameView{}, err
	}
	if res.Outcome == model.ClickCommitted {
		gs.afterCommit(s)
	}
	return res, gs.view(s), nil
}

func (gs *GameService) MakeMove(gameID, playerID, from, to string) (model.Move, GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return model.Move{}, GameView{}, err
	}
	fromSq, err := model.ParseSquare(from)
	if err != nil {
		return model.Move{}, GameView{}, err
	}
	toSq, err := model.ParseSquare(to)
	if err != nil {
		return model.Move{}, GameView{}, err
	}

	var move model.Move
	if s.Options.Mode == ModeHumanVsComputer {
		move, err = s.Game.MakeMoveAs(s.Options.HumanColor(), fromSq, toSq)
	} else {
		move, err = s.Game.MakeMove(fromSq, toSq)
	}
	if err != nil {
		return model.Move{}, GameView{}, fmt.Errorf("%s-%s: %w", from, to, err)
	}
	gs.afterCommit(s)
	return move, gs.view(s), nil
}

// PlayAI lets the selector move for the side to move. An empty difficulty
// uses the session's own, or medium.
func (gs *GameService) PlayAI(gameID, playerID, difficulty string) (model.Move, GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return model.Move{}, GameView{}, err
	}
	d := s.Options.Difficulty
	if difficulty != "" || d == "" {
		if d, err = ai.ParseDifficulty(difficulty); err != nil {
			return model.Move{}, GameView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	s.cancelAI()
	move, err := s.Game.MakeMoveWith(func(st *model.GameState) (model.SimpleMove, error) {
		return gs.pick(st, d)
	})
	if err != nil {
		gs.scheduleAI(s)
		return model.Move{}, GameView{}, err
	}
	gs.afterCommit(s)
	return move, gs.view(s), nil
}

// Undo takes back the last move. Against the computer it keeps going until
// the human is to move again.
func (gs *GameService) Undo(gameID, playerID string) (GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return GameView{}, err
	}
	s.cancelAI()
	if _, err := s.Game.Undo(); err != nil {
		gs.scheduleAI(s)
		return GameView{}, err
	}
	if s.Options.Mode == ModeHumanVsComputer && s.Game.ToMove() == s.Options.AIColor {
		if _, err := s.Game.Undo(); errors.Is(err, model.ErrNothingToUndo) {
			// Only the computer's opening move was taken back.
			gs.scheduleAI(s)
		}
	}
	return gs.view(s), nil
}

func (gs *GameService) Reset(gameID, playerID string) (GameView, error) {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return GameView{}, err
	}
	s.cancelAI()
	s.Game.Reset()
	s.newRound()
	gs.scheduleAI(s)
	return gs.view(s), nil
}

func (gs *GameService) RegisterConnection(gameID, playerID string, conn model.Conn) error {
	s, err := gs.session(gameID, playerID)
	if err != nil {
		return err
	}
	return s.Game.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, playerID string, conn model.Conn) {
	s, err := gs.gameManager.GetSession(gameID)
	if err != nil {
		return
	}
	s.Game.UnregisterConnection(playerID, conn)
}

func (gs *GameService) pick(st *model.GameState, d ai.Difficulty) (model.SimpleMove, error) {
	gs.rngMu.Lock()
	defer gs.rngMu.Unlock()

	m, ok := ai.PickMove(st, st.ToMove, d, gs.rng)
	if !ok {
		return model.SimpleMove{}, model.ErrNoLegalMoves
	}
	return m, nil
}

// afterCommit records a finished game or hands the turn to the computer.
func (gs *GameService) afterCommit(s *Session) {
	snap := s.Game.Snapshot()
	if snap.Status.Over() {
		gs.recordResult(s, snap)
		return
	}
	gs.scheduleAI(s)
}

func (gs *GameService) scheduleAI(s *Session) {
	if s.Options.Mode != ModeHumanVsComputer {
		return
	}
	gen := s.cancelAI()
	if s.Game.ToMove() != s.Options.AIColor || s.Game.Status(s.Options.AIColor).Over() {
		return
	}
	if gs.settings.AIDelay <= 0 {
		gs.playAI(s, gen)
		return
	}
	s.setTimer(gen, time.AfterFunc(gs.settings.AIDelay, func() {
		gs.playAI(s, gen)
	}))
}

func (gs *GameService) playAI(s *Session, gen uint64) {
	_, err := s.Game.MakeMoveWith(func(st *model.GameState) (model.SimpleMove, error) {
		if !s.aiCurrent(gen) {
			return model.SimpleMove{}, errAICanceled
		}
		if st.ToMove != s.Options.AIColor {
			return model.SimpleMove{}, model.ErrNotYourTurn
		}
		return gs.pick(st, s.Options.Difficulty)
	})
	switch {
	case err == nil:
		gs.afterCommit(s)
	case errors.Is(err, errAICanceled), errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrGameOver):
		log.Debugf("game %s: computer reply skipped: %v", s.Game.ID, err)
	default:
		log.Warnf("game %s: computer reply failed: %v", s.Game.ID, err)
	}
}

func (gs *GameService) recordResult(s *Session, snap model.GameSnapshot) {
	round, ok := s.markRecorded()
	if !ok || gs.recorder == nil {
		return
	}

	result := storage.GameResult{
		GameID:   s.Game.ID,
		Round:    round,
		Mode:     string(s.Options.Mode),
		Reason:   string(snap.Status),
		Moves:    len(snap.MoveHistory),
		Duration: s.Game.Duration(),
	}
	if snap.Status == model.StatusCheckmate {
		result.Winner = string(snap.ToMove.Opponent())
	}
	if s.Options.Mode == ModeHumanVsComputer {
		result.AIColor = string(s.Options.AIColor)
		result.Difficulty = string(s.Options.Difficulty)
	}
	if err := gs.recorder.RecordGame(result); err != nil {
		s.unmarkRecorded(round)
		log.Errorf("game %s: record result: %v", s.Game.ID, err)
		return
	}
	log.Infof("game %s finished: %s, winner %q", s.Game.ID, result.Reason, result.Winner)
}
