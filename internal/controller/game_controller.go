package controller

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps service and engine errors to HTTP codes. Rejected moves
// are ordinary input, so they are conflicts rather than server errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrResultNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotYourGame):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, model.ErrBadSquare):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNothingToUndo),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNoLegalMoves):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// parseBody accepts an empty body as the zero value.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req service.NewGameRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, err)
	}

	view, err := gc.gameService.CreateGame(middleware.PlayerID(c), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	view, err := gc.gameService.GetGame(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square := c.Query("square")
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), middleware.PlayerID(c), square)
	if err != nil {
		return sendError(c, err)
	}

	names := make([]string, 0, len(moves))
	for _, sq := range moves {
		names = append(names, sq.String())
	}
	return c.JSON(fiber.Map{
		"square":  square,
		"moves":   names,
		"squares": moves,
	})
}

func (gc *GameController) Select(c *fiber.Ctx) error {
	var req ws.SelectPayload
	if err := parseBody(c, &req); err != nil {
		return sendError(c, err)
	}

	res, view, err := gc.gameService.Select(c.Params("gameId"), middleware.PlayerID(c), req.Square)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"outcome": res.Outcome,
		"move":    res.Move,
		"game":    view,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req ws.MovePayload
	if err := parseBody(c, &req); err != nil {
		return sendError(c, err)
	}

	move, view, err := gc.gameService.MakeMove(c.Params("gameId"), middleware.PlayerID(c), req.From, req.To)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"move": move,
		"game": view,
	})
}

func (gc *GameController) PlayAI(c *fiber.Ctx) error {
	var req ws.AIMovePayload
	if err := parseBody(c, &req); err != nil {
		return sendError(c, err)
	}

	move, view, err := gc.gameService.PlayAI(c.Params("gameId"), middleware.PlayerID(c), req.Difficulty)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"move": move,
		"game": view,
	})
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	view, err := gc.gameService.Undo(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	view, err := gc.gameService.Reset(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) Status(c *fiber.Ctx) error {
	side, status, err := gc.gameService.Status(c.Params("gameId"), middleware.PlayerID(c), c.Query("side"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"side":   side,
		"status": status,
		"over":   status.Over(),
	})
}
