package httpapi

import (
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/gofiber/fiber/v2"
)

// requestLogger renders handler errors itself so the recorded status is the
// one sent to the client.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	code := c.Response().StatusCode()
	s.metrics.Request(c.Method(), c.Route().Path, code)
	s.logger.Debug(c.UserContext(), "request", "method", c.Method(), "path", c.Path(), "status", code)
	return nil
}

func bearerToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	return c.Get(common.AccessTokenHeaderName)
}

// authenticate resolves the access token to a principal stored in the user
// context. Without a token the request continues anonymously unless
// required is set; a token that does not verify is always rejected.
func (s *Server) authenticate(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			if required {
				return common.ErrorUnauthorized
			}
			return c.Next()
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			return err
		}

		p, err := s.users.Principal(c.UserContext(), userID)
		if err != nil {
			return err
		}

		c.SetUserContext(guard.WithPrincipal(c.UserContext(), p))
		return c.Next()
	}
}

// principal returns the acting user, or the zero principal for anonymous
// requests.
func principal(c *fiber.Ctx) guard.Principal {
	p, _ := guard.PrincipalFromContext(c.UserContext())
	return p
}
