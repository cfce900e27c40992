package controller

import (
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the REST API and the websocket endpoint on app.
// origins limits which browser origins may open a websocket.
func RegisterRoutes(app *fiber.App, gc *GameController, wsc *WebSocketController, sc *StatsController, origins []string) {
	// Set up WebSocket routes
	app.Get("/ws/game/:gameId",
		middleware.EnsurePlayerID(),
		middleware.WebSocketUpgrade(),
		websocket.New(wsc.HandleConnection, websocket.Config{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Origins:         origins,
		}))

	// Game routes
	gameRoutes := app.Group("/api/game", middleware.EnsurePlayerID())
	gameRoutes.Post("/", gc.CreateGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/moves", gc.LegalMoves)
	gameRoutes.Get("/:gameId/status", gc.Status)
	gameRoutes.Post("/:gameId/select", gc.Select)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Post("/:gameId/undo", gc.Undo)
	gameRoutes.Post("/:gameId/reset", gc.Reset)
	gameRoutes.Post("/:gameId/ai", gc.PlayAI)

	// Stats are global and need no player.
	app.Get("/api/stats", sc.GetStats)
	app.Get("/api/results", sc.RecentResults)
	app.Get("/api/results/:gameId", sc.GameResults)
}
