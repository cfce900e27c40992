package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
)

type testServer struct {
	app   *fiber.App
	svc   *service.GameService
	store *storage.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := storage.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := service.NewGameService(service.NewGameManager(), store, service.Settings{StrictCastling: true, Seed: 3})
	app := fiber.New()
	RegisterRoutes(app, NewGameController(svc), NewWebSocketController(svc), NewStatsController(store), nil)
	return &testServer{app: app, svc: svc, store: store}
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (s *testServer) do(t *testing.T, method, target, player, body string, out interface{}) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

type gameBody struct {
	ID          string   `json:"id"`
	ToMove      string   `json:"toMove"`
	Status      string   `json:"status"`
	Phase       string   `json:"phase"`
	Mode        string   `json:"mode"`
	MoveHistory []string `json:"moveHistory"`
}

func (s *testServer) create(t *testing.T, body string) gameBody {
	t.Helper()
	var g gameBody
	if code := s.do(t, "POST", "/api/game", "p1", body, &g); code != fiber.StatusCreated {
		t.Fatalf("create status %d", code)
	}
	if g.ID == "" {
		t.Fatalf("create returned no id")
	}
	return g
}

func TestCreateAndGetGame(t *testing.T) {
	s := newTestServer(t)

	if code := s.do(t, "POST", "/api/game", "", "", nil); code != fiber.StatusUnauthorized {
		t.Fatalf("anonymous create status %d", code)
	}
	if code := s.do(t, "POST", "/api/game", "p1", `{"mode":"online"}`, nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad mode status %d", code)
	}
	if code := s.do(t, "POST", "/api/game", "p1", `{"mode":`, nil); code != fiber.StatusBadRequest {
		t.Fatalf("malformed body status %d", code)
	}

	g := s.create(t, "")
	if g.Mode != "hvh" || g.ToMove != "white" || g.Status != "normal" || len(g.MoveHistory) != 0 {
		t.Fatalf("new game %+v", g)
	}

	var got gameBody
	if code := s.do(t, "GET", "/api/game/"+g.ID, "p1", "", &got); code != fiber.StatusOK || got.ID != g.ID {
		t.Fatalf("get status %d, %+v", code, got)
	}
	if code := s.do(t, "GET", "/api/game/"+g.ID, "p2", "", nil); code != fiber.StatusForbidden {
		t.Fatalf("foreign get status %d", code)
	}
	if code := s.do(t, "GET", "/api/game/missing", "p1", "", nil); code != fiber.StatusNotFound {
		t.Fatalf("missing get status %d", code)
	}
}

func TestOwnerSurvivesLaterRequests(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "").ID

	// Requests from other players reuse the same request buffers.
	if code := s.do(t, "GET", "/api/game/nothing-here", "zz", "", nil); code != fiber.StatusNotFound {
		t.Fatalf("missing game status %d", code)
	}
	for _, player := range []string{"p2", "p3"} {
		if code := s.do(t, "GET", "/api/game/"+id, player, "", nil); code != fiber.StatusForbidden {
			t.Fatalf("%s get status %d", player, code)
		}
		if code := s.do(t, "POST", "/api/game/"+id+"/move", player, `{"from":"e2","to":"e4"}`, nil); code != fiber.StatusForbidden {
			t.Fatalf("%s move status %d", player, code)
		}
	}
	if _, err := s.svc.GetGame(id, "zz"); !errors.Is(err, service.ErrNotYourGame) {
		t.Fatalf("GetGame as zz err = %v", err)
	}
	if _, err := s.svc.GetGame(id, "p1"); err != nil {
		t.Fatalf("GetGame as owner: %v", err)
	}
}

func TestMovesAndStatusRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "").ID

	var moves struct {
		Moves []string `json:"moves"`
	}
	if code := s.do(t, "GET", "/api/game/"+id+"/moves?square=e2", "p1", "", &moves); code != fiber.StatusOK {
		t.Fatalf("moves status %d", code)
	}
	if strings.Join(moves.Moves, ",") != "e3,e4" {
		t.Fatalf("e2 moves %v", moves.Moves)
	}
	if code := s.do(t, "GET", "/api/game/"+id+"/moves?square=k9", "p1", "", nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad square status %d", code)
	}

	if code := s.do(t, "POST", "/api/game/"+id+"/move", "p1", `{"from":"e2","to":"e5"}`, nil); code != fiber.StatusConflict {
		t.Fatalf("illegal move status %d", code)
	}
	for _, m := range [][2]string{{"f2", "f3"}, {"e7", "e5"}, {"g2", "g4"}} {
		body := `{"from":"` + m[0] + `","to":"` + m[1] + `"}`
		if code := s.do(t, "POST", "/api/game/"+id+"/move", "p1", body, nil); code != fiber.StatusOK {
			t.Fatalf("%s-%s status %d", m[0], m[1], code)
		}
	}

	// Finish with the selection state machine.
	var sel struct {
		Outcome string   `json:"outcome"`
		Game    gameBody `json:"game"`
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/select", "p1", `{"square":"d8"}`, &sel); code != fiber.StatusOK || sel.Outcome != "selected" {
		t.Fatalf("select d8: %d %+v", code, sel)
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/select", "p1", `{"square":"h4"}`, &sel); code != fiber.StatusOK || sel.Outcome != "committed" {
		t.Fatalf("select h4: %d %+v", code, sel)
	}
	if sel.Game.Status != "checkmate" {
		t.Fatalf("status after mate %q", sel.Game.Status)
	}

	var st struct {
		Side   string `json:"side"`
		Status string `json:"status"`
		Over   bool   `json:"over"`
	}
	if code := s.do(t, "GET", "/api/game/"+id+"/status?side=white", "p1", "", &st); code != fiber.StatusOK || st.Status != "checkmate" || !st.Over {
		t.Fatalf("white status %d %+v", code, st)
	}
	if code := s.do(t, "GET", "/api/game/"+id+"/status?side=black", "p1", "", &st); code != fiber.StatusOK || st.Status != "normal" {
		t.Fatalf("black status %d %+v", code, st)
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/ai", "p1", "", nil); code != fiber.StatusConflict {
		t.Fatalf("ai after mate status %d", code)
	}

	var stats struct {
		Stats        storage.GameStats `json:"stats"`
		AverageMoves float64           `json:"averageMoves"`
	}
	if code := s.do(t, "GET", "/api/stats", "", "", &stats); code != fiber.StatusOK {
		t.Fatalf("stats status %d", code)
	}
	if stats.Stats.GamesPlayed != 1 || stats.Stats.BlackWins != 1 || stats.AverageMoves != 4 {
		t.Fatalf("stats %+v", stats)
	}
	var results []storage.GameResult
	if code := s.do(t, "GET", "/api/results/"+id, "", "", &results); code != fiber.StatusOK || len(results) != 1 {
		t.Fatalf("results %d %+v", code, results)
	}
	if code := s.do(t, "GET", "/api/results/nope", "", "", nil); code != fiber.StatusNotFound {
		t.Fatalf("missing results status %d", code)
	}
	if code := s.do(t, "GET", "/api/results?limit=0", "", "", nil); code != fiber.StatusBadRequest {
		t.Fatalf("bad limit status %d", code)
	}
}

func TestUndoResetAndAIRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, `{"mode":"hvc","aiColor":"black","difficulty":"hard"}`).ID

	if code := s.do(t, "POST", "/api/game/"+id+"/undo", "p1", "", nil); code != fiber.StatusConflict {
		t.Fatalf("empty undo status %d", code)
	}

	var mv struct {
		Game gameBody `json:"game"`
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/move", "p1", `{"from":"e2","to":"e4"}`, &mv); code != fiber.StatusOK {
		t.Fatalf("move status %d", code)
	}
	if len(mv.Game.MoveHistory) != 2 || mv.Game.ToMove != "white" {
		t.Fatalf("computer did not answer: %+v", mv.Game)
	}

	if code := s.do(t, "POST", "/api/game/"+id+"/ai", "p1", `{"difficulty":"easy"}`, &mv); code != fiber.StatusOK {
		t.Fatalf("ai status %d", code)
	}
	if len(mv.Game.MoveHistory) != 4 {
		t.Fatalf("ai move history %v", mv.Game.MoveHistory)
	}

	var g gameBody
	if code := s.do(t, "POST", "/api/game/"+id+"/undo", "p1", "", &g); code != fiber.StatusOK || len(g.MoveHistory) != 2 {
		t.Fatalf("undo %d %+v", code, g)
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/reset", "p1", "", &g); code != fiber.StatusOK || len(g.MoveHistory) != 0 {
		t.Fatalf("reset %d %+v", code, g)
	}
	if code := s.do(t, "POST", "/api/game/"+id+"/reset", "p2", "", nil); code != fiber.StatusForbidden {
		t.Fatalf("foreign reset status %d", code)
	}
}

func TestWebSocketRouteNeedsUpgrade(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "").ID

	req := httptest.NewRequest("GET", "/ws/game/"+id+"?playerId=p1", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("plain GET status %d", resp.StatusCode)
	}
}

func TestHandleMessage(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "").ID
	wsc := NewWebSocketController(s.svc)

	msg := func(typ ws.MessageType, payload string) ws.Message {
		m := ws.Message{Type: typ}
		if payload != "" {
			m.Payload = json.RawMessage(payload)
		}
		return m
	}

	tests := []struct {
		name    string
		msg     ws.Message
		wantErr error
	}{
		{"select", msg(ws.MessageTypeSelect, `{"square":"g1"}`), nil},
		{"commit by select", msg(ws.MessageTypeSelect, `{"square":"f3"}`), nil},
		{"move", msg(ws.MessageTypeMove, `{"from":"e7","to":"e5"}`), nil},
		{"illegal move", msg(ws.MessageTypeMove, `{"from":"a1","to":"a8"}`), model.ErrIllegalMove},
		{"ai", msg(ws.MessageTypeAIMove, ""), nil},
		{"undo", msg(ws.MessageTypeUndo, ""), nil},
		{"reset", msg(ws.MessageTypeReset, "null"), nil},
		{"bad payload", msg(ws.MessageTypeMove, `[1,2]`), service.ErrInvalidInput},
		{"unknown", msg("castle", ""), service.ErrInvalidInput},
	}
	for _, tt := range tests {
		err := wsc.handleMessage(id, "p1", tt.msg)
		if tt.wantErr == nil && err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	v, err := s.svc.GetGame(id, "p1")
	if err != nil || len(v.MoveHistory) != 0 {
		t.Fatalf("after reset %v, %v", v.MoveHistory, err)
	}

	if err := wsc.handleMessage(id, "p2", msg(ws.MessageTypeUndo, "")); !errors.Is(err, service.ErrNotYourGame) {
		t.Fatalf("foreign message err = %v", err)
	}
}
