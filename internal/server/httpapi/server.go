// Package httpapi exposes the match platform over HTTP.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/results"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const shutdownTimeout = 5 * time.Second

type Users interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, idOrSteam string) (*models.User, error)
	Principal(ctx context.Context, userID int64) (guard.Principal, error)
	Create(ctx context.Context, p guard.Principal, in services.CreateUserInput) (int64, error)
	Update(ctx context.Context, p guard.Principal, steamID string, upd models.UserUpdate) error
}

type Servers interface {
	List(ctx context.Context, p guard.Principal) ([]services.ServerView, error)
	Get(ctx context.Context, p guard.Principal, id int64) (services.ServerView, error)
	Create(ctx context.Context, p guard.Principal, in services.CreateServerInput) (int64, error)
	Update(ctx context.Context, p guard.Principal, id int64, upd models.ServerUpdate) error
	Delete(ctx context.Context, p guard.Principal, id int64) error
}

type Teams interface {
	List(ctx context.Context) ([]services.TeamView, error)
	ListMine(ctx context.Context, p guard.Principal) ([]services.TeamView, error)
	Get(ctx context.Context, id int64) (services.TeamView, error)
	GetBasic(ctx context.Context, id int64) (*models.Team, error)
	Recent(ctx context.Context, id int64) ([]*models.Match, error)
	Result(ctx context.Context, teamID, matchID int64) (results.Outcome, error)
	Create(ctx context.Context, p guard.Principal, in services.CreateTeamInput) (int64, error)
	Update(ctx context.Context, p guard.Principal, id int64, upd models.TeamUpdate, authNames map[string]string) (services.RosterSummary, error)
	Delete(ctx context.Context, p guard.Principal, id int64, steamID string) error
}

type Logos interface {
	UploadURL(ctx context.Context, p guard.Principal, teamID int64, filename string) (string, string, error)
	DownloadURL(ctx context.Context, teamID int64) (string, error)
}

type Server struct {
	address   string
	app       *fiber.App
	users     Users
	servers   Servers
	teams     Teams
	logos     Logos
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, mx *metrics.Metrics, secretKey string,
	us Users, ss Servers, ts Teams, ls Logos) *Server {
	s := &Server{
		address:   address,
		users:     us,
		servers:   ss,
		teams:     ts,
		logos:     ls,
		metrics:   mx,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)
	s.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, x-api-key",
	}))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	optional := s.authenticate(false)
	required := s.authenticate(true)

	s.app.Get("/users", optional, s.listUsers)
	s.app.Get("/users/me", required, s.me)
	s.app.Get("/users/:user_id", optional, s.getUser)
	s.app.Post("/users", required, s.createUser)
	s.app.Put("/users", required, s.updateUser)

	s.app.Get("/servers", optional, s.listServers)
	s.app.Get("/servers/:server_id", optional, s.getServer)
	s.app.Post("/servers", required, s.createServer)
	s.app.Put("/servers", required, s.updateServer)
	s.app.Delete("/servers", required, s.deleteServer)

	s.app.Get("/teams", optional, s.listTeams)
	s.app.Get("/teams/myteams", required, s.myTeams)
	s.app.Get("/teams/:team_id", optional, s.getTeam)
	s.app.Get("/teams/:team_id/basic", optional, s.getTeamBasic)
	s.app.Get("/teams/:team_id/recent", optional, s.recentMatches)
	s.app.Get("/teams/:team_id/result/:match_id", optional, s.matchResult)
	s.app.Get("/teams/:team_id/logo", optional, s.downloadLogo)
	s.app.Post("/teams/:team_id/logo", required, s.uploadLogo)
	s.app.Post("/teams", required, s.createTeam)
	s.app.Put("/teams", required, s.updateTeam)
	s.app.Delete("/teams", required, s.deleteTeam)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App { return s.app }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
