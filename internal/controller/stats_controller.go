package controller

import (
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// ResultStore is the read side of the results database.
type ResultStore interface {
	LoadStats() (*storage.GameStats, error)
	RecentResults(limit int) ([]storage.GameResult, error)
	GameResults(gameID string) ([]storage.GameResult, error)
}

type StatsController struct {
	store ResultStore
}

func NewStatsController(store ResultStore) *StatsController {
	return &StatsController{store: store}
}

func (sc *StatsController) GetStats(c *fiber.Ctx) error {
	stats, err := sc.store.LoadStats()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"stats":        stats,
		"averageMoves": stats.AverageMoves(),
	})
}

func (sc *StatsController) RecentResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}
	results, err := sc.store.RecentResults(limit)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(results)
}

func (sc *StatsController) GameResults(c *fiber.Ctx) error {
	results, err := sc.store.GameResults(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	if len(results) == 0 {
		return sendError(c, storage.ErrResultNotFound)
	}
	return c.JSON(results)
}
