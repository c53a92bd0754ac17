package httpapi

import (
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) listUsers(c *fiber.Ctx) error {
	list, err := s.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": list})
}

func (s *Server) me(c *fiber.Ctx) error {
	u, err := s.users.Get(c.UserContext(), principal(c).SteamID)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) getUser(c *fiber.Ctx) error {
	u, err := s.users.Get(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (s *Server) createUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}

	id, err := s.users.Create(c.UserContext(), principal(c), services.CreateUserInput{
		SteamID:    req.SteamID,
		Name:       req.Name,
		Admin:      req.Admin,
		SuperAdmin: req.SuperAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User successfully inserted.", "id": id})
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}

	err := s.users.Update(c.UserContext(), principal(c), req.SteamID, models.UserUpdate{
		Name:       req.Name,
		Admin:      req.Admin,
		SuperAdmin: req.SuperAdmin,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User successfully updated."})
}
