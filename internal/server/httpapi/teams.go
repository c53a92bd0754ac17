package httpapi

import (
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/results"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type resultResponse struct {
	results.Outcome
	Result string `json:"result"`
}

func (s *Server) listTeams(c *fiber.Ctx) error {
	list, err := s.teams.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teams": list})
}

func (s *Server) myTeams(c *fiber.Ctx) error {
	list, err := s.teams.ListMine(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"teams": list})
}

func (s *Server) getTeam(c *fiber.Ctx) error {
	id, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	v, err := s.teams.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"team": v})
}

func (s *Server) getTeamBasic(c *fiber.Ctx) error {
	id, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	t, err := s.teams.GetBasic(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"team": t})
}

func (s *Server) recentMatches(c *fiber.Ctx) error {
	id, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	list, err := s.teams.Recent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"matches": list})
}

func (s *Server) matchResult(c *fiber.Ctx) error {
	teamID, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	matchID, err := paramID(c, "match_id")
	if err != nil {
		return err
	}

	o, err := s.teams.Result(c.UserContext(), teamID, matchID)
	if err != nil {
		return err
	}
	return c.JSON(resultResponse{Outcome: o, Result: o.String()})
}

func (s *Server) createTeam(c *fiber.Ctx) error {
	var req createTeamRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}

	id, err := s.teams.Create(c.UserContext(), principal(c), services.CreateTeamInput{
		Name:       req.Name,
		Flag:       req.Flag,
		Logo:       req.Logo,
		Tag:        req.Tag,
		PublicTeam: req.PublicTeam,
		AuthNames:  req.AuthName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Team successfully inserted.", "id": id})
}

func (s *Server) updateTeam(c *fiber.Ctx) error {
	var req updateTeamRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}
	if err := requireID(req.ID, "id"); err != nil {
		return err
	}

	sum, err := s.teams.Update(c.UserContext(), principal(c), req.ID, models.TeamUpdate{
		UserID:     req.UserID,
		Name:       req.Name,
		Flag:       req.Flag,
		Logo:       req.Logo,
		Tag:        req.Tag,
		PublicTeam: req.PublicTeam,
	}, req.AuthName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Team successfully updated.", "roster": sum})
}

func (s *Server) deleteTeam(c *fiber.Ctx) error {
	var req deleteTeamRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}
	if err := requireID(req.TeamID, "team_id"); err != nil {
		return err
	}

	if err := s.teams.Delete(c.UserContext(), principal(c), req.TeamID, req.SteamID); err != nil {
		return err
	}
	if req.SteamID != "" {
		return c.JSON(fiber.Map{"message": "Team member deleted successfully."})
	}
	return c.JSON(fiber.Map{"message": "Team has been deleted successfully."})
}

func (s *Server) uploadLogo(c *fiber.Ctx) error {
	id, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	var req logoRequest
	if err := decodeSingle(c.Body(), &req); err != nil {
		return err
	}

	key, url, err := s.logos.UploadURL(c.UserContext(), principal(c), id, req.Filename)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"key": key, "url": url})
}

func (s *Server) downloadLogo(c *fiber.Ctx) error {
	id, err := paramID(c, "team_id")
	if err != nil {
		return err
	}
	url, err := s.logos.DownloadURL(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}
