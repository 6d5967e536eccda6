package server

import (
	"errors"

	"mentordesk/internal/models"
	"mentordesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMentorRequest handles POST /api/mentor-requests
func (s *Server) CreateMentorRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var input service.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req, err := s.requestService.CreateRequest(ctx, input)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "VALIDATION_ERROR":
				return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
			case "DEPENDENCY_UNAVAILABLE":
				return models.RespondWithError(c, fiber.StatusServiceUnavailable, appErr)
			}
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"requestId": req.ID,
		"status":    req.Status,
	})
}

// GetMentorRequest handles GET /api/mentor-requests/:id
func (s *Server) GetMentorRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	snapshot, err := s.requestService.GetStatus(ctx, id)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(snapshot)
}
