package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetFeatureFlags returns configured feature flags and their evaluated state
// for the optional userId query parameter.
// @Summary Feature flags
// @Tags features
// @Produce json
// @Param userId query string false "Evaluate flags for this user"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	subject := uuid.Nil
	if raw := c.Query("userId"); raw != "" {
		id, err := parseUUID(c, "userId", raw)
		if err != nil {
			return nil
		}
		subject = id
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(subject),
	})
}
