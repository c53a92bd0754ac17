package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/identity"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/matchkeeper/internal/server/results"
)

// RecentMatchesLimit is how many matches Recent returns.
const RecentMatchesLimit = 5

// TeamView is a team with its roster keyed by canonical identity.
type TeamView struct {
	*models.Team
	AuthName map[string]models.RosterEntry `json:"auth_name"`
}

// CreateTeamInput carries a new team and its initial roster (raw identity
// to display name).
type CreateTeamInput struct {
	Name       string
	Flag       string
	Logo       string
	Tag        string
	PublicTeam bool
	AuthNames  map[string]string
}

type TeamService struct {
	db          *sql.DB
	coord       *dbx.Coordinator
	repomanager repomanager.RepositoryManager
	roster      *RosterReconciler
	resolver    identity.Resolver
	logger      logging.Logger
	metrics     *metrics.Metrics
}

func NewTeamService(db *sql.DB, coord *dbx.Coordinator, m repomanager.RepositoryManager,
	resolver identity.Resolver, logger logging.Logger, mx *metrics.Metrics) *TeamService {
	return &TeamService{
		db:          db,
		coord:       coord,
		repomanager: m,
		roster:      NewRosterReconciler(resolver, logger),
		resolver:    resolver,
		logger:      logger,
		metrics:     mx,
	}
}

// rosterOf loads the roster of teamID. Blank names are filled from the
// identity provider and avatars are added when withImages is set. Provider
// failures leave the field blank.
func (s *TeamService) rosterOf(ctx context.Context, db dbx.DBTX, teamID int64, withImages bool) (map[string]models.RosterEntry, error) {
	list, err := s.repomanager.Members(db).ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.RosterEntry, len(list))
	for _, m := range list {
		e := models.RosterEntry{Name: m.Name}
		if e.Name == "" {
			e.Name = s.lookup(ctx, "display_name", m.Auth, s.resolver.LookupDisplayName)
			e.Derived = true
		}
		if withImages {
			e.Image = s.lookup(ctx, "avatar", m.Auth, s.resolver.LookupAvatar)
		}
		out[m.Auth] = e
	}
	return out, nil
}

func (s *TeamService) lookup(ctx context.Context, op, auth string, fn func(context.Context, string) (string, error)) string {
	v, err := fn(ctx, auth)
	if err != nil {
		s.logger.Warn(ctx, "identity lookup failed", "op", op, "auth", auth, "error", err)
		s.metrics.IdentityFailure(op)
		return ""
	}
	return v
}

func (s *TeamService) views(ctx context.Context, list []*models.Team) ([]TeamView, error) {
	views := make([]TeamView, 0, len(list))
	for _, t := range list {
		r, err := s.rosterOf(ctx, s.db, t.ID, false)
		if err != nil {
			return nil, err
		}
		views = append(views, TeamView{Team: t, AuthName: r})
	}
	return views, nil
}

func (s *TeamService) List(ctx context.Context) ([]TeamView, error) {
	list, err := s.repomanager.Teams(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list)
}

func (s *TeamService) ListMine(ctx context.Context, p guard.Principal) ([]TeamView, error) {
	list, err := s.repomanager.Teams(s.db).ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, list)
}

// Get returns the team with roster names and avatars.
func (s *TeamService) Get(ctx context.Context, id int64) (TeamView, error) {
	t, err := s.repomanager.Teams(s.db).GetByID(ctx, id)
	if err != nil {
		return TeamView{}, err
	}
	r, err := s.rosterOf(ctx, s.db, id, true)
	if err != nil {
		return TeamView{}, err
	}
	return TeamView{Team: t, AuthName: r}, nil
}

// GetBasic returns the team without its roster.
func (s *TeamService) GetBasic(ctx context.Context, id int64) (*models.Team, error) {
	return s.repomanager.Teams(s.db).GetByID(ctx, id)
}

func (s *TeamService) Recent(ctx context.Context, id int64) ([]*models.Match, error) {
	if _, err := s.repomanager.Teams(s.db).GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repomanager.Matches(s.db).ListRecentByTeam(ctx, id, RecentMatchesLimit)
}

// Result computes the outcome of matchID for teamID.
func (s *TeamService) Result(ctx context.Context, teamID, matchID int64) (results.Outcome, error) {
	m, err := s.repomanager.Matches(s.db).GetByID(ctx, matchID)
	if err != nil {
		return results.Outcome{}, err
	}
	if !m.HasTeam(teamID) {
		return results.Outcome{}, common.ErrorNotFound
	}

	v := results.ContestView{Match: m}

	if m.MaxMaps == 1 {
		ms, err := s.repomanager.Matches(s.db).FirstMap(ctx, matchID)
		switch {
		case err == nil:
			v.FirstMap = ms
		case !errors.Is(err, common.ErrorNotFound):
			return results.Outcome{}, err
		}
	}

	if oid := results.OpponentID(m, teamID); oid != nil {
		t, err := s.repomanager.Teams(s.db).GetByID(ctx, *oid)
		switch {
		case err == nil:
			v.Opponent = t
		case !errors.Is(err, common.ErrorNotFound):
			return results.Outcome{}, err
		}
	}

	return results.Compute(v, teamID)
}

// Create inserts the team owned by p together with its roster.
func (s *TeamService) Create(ctx context.Context, p guard.Principal, in CreateTeamInput) (int64, error) {
	name := normalizeName(in.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", common.ErrorValidation)
	}

	t := &models.Team{
		UserID:     p.UserID,
		Name:       name,
		Flag:       strings.TrimSpace(in.Flag),
		Logo:       in.Logo,
		Tag:        strings.TrimSpace(in.Tag),
		PublicTeam: in.PublicTeam,
	}

	err := s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Teams(tx).Create(ctx, t); err != nil {
			return err
		}
		_, err := s.roster.Reconcile(ctx, s.repomanager.Members(tx), t.ID, in.AuthNames)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "team created", "team_id", t.ID, "user_id", p.UserID)
	return t.ID, nil
}

// Update patches the team and upserts the given roster entries atomically.
// A request that changes nothing is common.ErrNoUpdateData.
func (s *TeamService) Update(ctx context.Context, p guard.Principal, id int64, upd models.TeamUpdate, authNames map[string]string) (RosterSummary, error) {
	if upd.Name != nil {
		n := normalizeName(*upd.Name)
		if n == "" {
			return RosterSummary{}, fmt.Errorf("%w: name is required", common.ErrorValidation)
		}
		upd.Name = &n
	}

	var sum RosterSummary
	err := s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Teams(tx)

		t, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := guard.AuthorizeOwnerChange(p, t, upd.UserID); err != nil {
			return err
		}
		if upd.Empty() && len(authNames) == 0 {
			return common.ErrNoUpdateData
		}

		if !upd.Empty() {
			if err := repo.Update(ctx, id, upd); err != nil {
				return err
			}
		}

		sum, err = s.roster.Reconcile(ctx, s.repomanager.Members(tx), id, authNames)
		return err
	})
	if err != nil {
		return RosterSummary{}, err
	}
	return sum, nil
}

// Delete removes one roster entry when steamID is set, otherwise the whole
// team and its roster.
func (s *TeamService) Delete(ctx context.Context, p guard.Principal, id int64, steamID string) error {
	return s.coord.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Teams(tx)

		t, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := guard.Authorize(p, t); err != nil {
			return err
		}

		members := s.repomanager.Members(tx)
		if steamID != "" {
			return s.roster.RemoveMember(ctx, members, id, steamID)
		}
		if _, err := members.DeleteByTeam(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}
