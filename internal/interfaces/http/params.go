package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// paramID lee el parámetro :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_ID", "id inválido")
}

// queryID lee un filtro numérico opcional; vacío = 0.
func queryID(c *fiber.Ctx, key string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
