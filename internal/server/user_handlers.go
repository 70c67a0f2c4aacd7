package server

import (
	"posterr/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
// @Summary List users
// @Description Every user with their lifetime post count.
// @Tags users
// @Produce json
// @Success 200 {array} service.UserView
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, err := s.profiles.ListProfiles(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} service.UserView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseUUID(c, "userId", c.Params("id"))
	if err != nil {
		return nil
	}

	profile, err := s.profiles.GetProfile(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, statusFor(err), err)
	}
	return c.JSON(profile)
}
