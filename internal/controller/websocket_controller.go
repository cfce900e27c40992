package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serializes writes from the read loop and from game broadcasts.
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.LocalPlayerID).(string)
	conn := &lockedConn{conn: c}

	// Register this connection with the game; it receives state pushes from now on.
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnf("game %s: register connection for %s: %v", gameID, playerID, err)
		conn.WriteJSON(ws.NewError(err))
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read: %v", gameID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			conn.WriteJSON(ws.NewError(fmt.Errorf("malformed message: %w", err)))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s from %s: %v", gameID, msg.Type, playerID, err)
			if werr := conn.WriteJSON(ws.NewError(err)); werr != nil {
				return
			}
		}
	}
}

// handleMessage applies one client message. State changes reach the client
// through the game's broadcast, so only failures are answered here.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var p ws.MovePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, _, err := wsc.gameService.MakeMove(gameID, playerID, p.From, p.To)
		return err

	case ws.MessageTypeSelect:
		var p ws.SelectPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, _, err := wsc.gameService.Select(gameID, playerID, p.Square)
		return err

	case ws.MessageTypeUndo:
		_, err := wsc.gameService.Undo(gameID, playerID)
		return err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.Reset(gameID, playerID)
		return err

	case ws.MessageTypeAIMove:
		var p ws.AIMovePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, _, err := wsc.gameService.PlayAI(gameID, playerID, p.Difficulty)
		return err

	default:
		return fmt.Errorf("%w: unknown message type %q", service.ErrInvalidInput, msg.Type)
	}
}

// decodePayload treats a missing payload as the zero value.
func decodePayload(msg ws.Message, out interface{}) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return fmt.Errorf("%w: %s payload: %v", service.ErrInvalidInput, msg.Type, err)
	}
	return nil
}
