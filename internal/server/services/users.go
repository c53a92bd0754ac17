package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/identity"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
)

// steamID64Len is the number of digits of a SteamID64. Shorter numbers are
// database ids.
const steamID64Len = 17

type CreateUserInput struct {
	SteamID    string
	Name       string
	Admin      bool
	SuperAdmin bool
}

type UserService struct {
	db          *sql.DB
	coord       *dbx.Coordinator
	repomanager repomanager.RepositoryManager
	resolver    identity.Resolver
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewUserService(db *sql.DB, coord *dbx.Coordinator, m repomanager.RepositoryManager,
	resolver identity.Resolver, logger logging.Logger, mx *metrics.Metrics) *UserService {
	return &UserService{db: db, coord: coord, repomanager: m, resolver: resolver, logger: logger, metrics: mx}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Get finds a user by database id or by any accepted form of Steam
// identity.
func (s *UserService) Get(ctx context.Context, idOrSteam string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if len(idOrSteam) != steamID64Len {
		if id, err := strconv.ParseInt(idOrSteam, 10, 64); err == nil {
			return repo.GetByID(ctx, id)
		}
	}

	steamID, err := s.resolver.ResolveCanonicalIdentity(ctx, idOrSteam)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return repo.GetBySteamID(ctx, steamID)
}

// Principal loads the acting user for a verified token subject. A subject
// without a user record is common.ErrorUnauthorized.
func (s *UserService) Principal(ctx context.Context, userID int64) (guard.Principal, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return guard.Principal{}, common.ErrorUnauthorized
		}
		return guard.Principal{}, err
	}
	return guard.Principal{
		UserID:     u.ID,
		SteamID:    u.SteamID,
		Admin:      u.Admin,
		SuperAdmin: u.SuperAdmin,
	}, nil
}

// Create registers a user. Only elevated principals may create users. A
// blank name is taken from the identity provider when it answers.
func (s *UserService) Create(ctx context.Context, p guard.Principal, in CreateUserInput) (int64, error) {
	if !p.Elevated() {
		return 0, common.ErrorForbidden
	}
	if in.SteamID == "" {
		return 0, fmt.Errorf("%w: steam_id is required", common.ErrorValidation)
	}

	u := &models.User{
		Name:       normalizeName(in.Name),
		Admin:      in.Admin,
		SuperAdmin: in.SuperAdmin,
	}

	err := s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		steamID, err := s.resolver.ResolveCanonicalIdentity(ctx, in.SteamID)
		if err != nil {
			return err
		}
		u.SteamID = steamID

		if u.Name == "" {
			n, err := s.resolver.LookupDisplayName(ctx, steamID)
			if err != nil {
				s.logger.Warn(ctx, "identity lookup failed", "op", "display_name", "auth", steamID, "error", err)
				s.metrics.IdentityFailure("display_name")
			}
			u.Name = normalizeName(n)
		}

		_, err = s.repomanager.Users(tx).Create(ctx, u)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID, "by", p.UserID)
	return u.ID, nil
}

// Update changes the user identified by steamID. The name may be changed by
// the user itself or an elevated principal; admin flags by elevated
// principals only.
func (s *UserService) Update(ctx context.Context, p guard.Principal, steamID string, upd models.UserUpdate) error {
	if steamID == "" {
		return fmt.Errorf("%w: steam_id is required", common.ErrorValidation)
	}
	if upd.Name != nil {
		n := normalizeName(*upd.Name)
		upd.Name = &n
	}

	return s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		canonical, err := s.resolver.ResolveCanonicalIdentity(ctx, steamID)
		if err != nil {
			return err
		}
		found, err := repo.GetBySteamID(ctx, canonical)
		if err != nil {
			return err
		}
		u, err := repo.GetForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		if err := guard.Authorize(p, u); err != nil {
			return err
		}
		if upd.ChangesPrivileges() && !p.Elevated() {
			return common.ErrorForbidden
		}
		if upd.Empty() {
			return common.ErrNoUpdateData
		}
		return repo.Update(ctx, u.ID, upd)
	})
}
