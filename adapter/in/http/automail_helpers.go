// Package http wires the Fiber handlers for the processing endpoints.
package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QueryBool reads a boolean query parameter with a default. Accepts
// the usual spellings (true/false, 1/0, yes/no).
func QueryBool(c *fiber.Ctx, key string, def bool) bool {
	switch strings.ToLower(c.Query(key)) {
	case "":
		return def
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// QueryIntClamped reads an int query parameter with a default,
// clamping non-positive values back to the default.
func QueryIntClamped(c *fiber.Ctx, key string, def int) int {
	v := c.QueryInt(key, def)
	if v <= 0 {
		return def
	}
	return v
}
