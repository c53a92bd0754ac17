package httpapi

import (
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) listServers(c *fiber.Ctx) error {
	list, err := s.servers.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"servers": list})
}

func (s *Server) getServer(c *fiber.Ctx) error {
	id, err := paramID(c, "server_id")
	if err != nil {
		return err
	}
	v, err := s.servers.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func (s *Server) createServer(c *fiber.Ctx) error {
	var req createServerRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}

	id, err := s.servers.Create(c.UserContext(), principal(c), services.CreateServerInput{
		IPString:     req.IPString,
		Port:         req.Port,
		DisplayName:  req.DisplayName,
		RCONPassword: req.RCONPassword,
		PublicServer: req.PublicServer,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Server successfully inserted.", "id": id})
}

func (s *Server) updateServer(c *fiber.Ctx) error {
	var req updateServerRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}
	if err := requireID(req.ServerID, "server_id"); err != nil {
		return err
	}

	err := s.servers.Update(c.UserContext(), principal(c), req.ServerID, models.ServerUpdate{
		UserID:            req.UserID,
		IPString:          req.IPString,
		Port:              req.Port,
		DisplayName:       req.DisplayName,
		RCONPassword:      req.RCONPassword,
		ClearRCONPassword: req.ClearRCONPassword,
		PublicServer:      req.PublicServer,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Game server updated successfully."})
}

func (s *Server) deleteServer(c *fiber.Ctx) error {
	var req deleteServerRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}
	if err := requireID(req.ServerID, "server_id"); err != nil {
		return err
	}

	if err := s.servers.Delete(c.UserContext(), principal(c), req.ServerID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Game server deleted successfully."})
}
