package services

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/matches"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/members"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/servers"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/teams"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/users"
)

// newCoord returns a coordinator over sqlmock. Tests declare the
// Begin/Commit/Rollback they expect on mock.
func newCoord(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *dbx.Coordinator) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock, dbx.NewCoordinator(db, logging.Nop())
}

var id64Re = regexp.MustCompile(`^7656119\d{10}$`)

type fakeResolver struct {
	aliases map[string]string
	names   map[string]string
	avatars map[string]string
	lookErr error
	calls   int
}

func (f *fakeResolver) ResolveCanonicalIdentity(_ context.Context, raw string) (string, error) {
	f.calls++
	if c, ok := f.aliases[raw]; ok {
		return c, nil
	}
	if id64Re.MatchString(raw) {
		return raw, nil
	}
	return "", common.ErrorValidation
}

func (f *fakeResolver) LookupDisplayName(_ context.Context, c string) (string, error) {
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return f.names[c], nil
}

func (f *fakeResolver) LookupAvatar(_ context.Context, c string) (string, error) {
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return f.avatars[c], nil
}

type memMembers struct {
	members.Repository
	rows    map[int64]map[string]string
	inserts int
	updates int
}

func newMemMembers() *memMembers {
	return &memMembers{rows: map[int64]map[string]string{}}
}

func (m *memMembers) ListByTeam(_ context.Context, teamID int64) ([]models.Member, error) {
	auths := make([]string, 0, len(m.rows[teamID]))
	for a := range m.rows[teamID] {
		auths = append(auths, a)
	}
	sort.Strings(auths)
	out := make([]models.Member, 0, len(auths))
	for i, a := range auths {
		out = append(out, models.Member{ID: int64(i + 1), TeamID: teamID, Auth: a, Name: m.rows[teamID][a]})
	}
	return out, nil
}

func (m *memMembers) UpdateName(_ context.Context, teamID int64, auth, name string) (int64, error) {
	if _, ok := m.rows[teamID][auth]; !ok {
		return 0, nil
	}
	m.rows[teamID][auth] = name
	m.updates++
	return 1, nil
}

func (m *memMembers) Insert(_ context.Context, teamID int64, auth, name string) error {
	if m.rows[teamID] == nil {
		m.rows[teamID] = map[string]string{}
	}
	m.rows[teamID][auth] = name
	m.inserts++
	return nil
}

func (m *memMembers) Delete(_ context.Context, teamID int64, auth string) (int64, error) {
	if _, ok := m.rows[teamID][auth]; !ok {
		return 0, nil
	}
	delete(m.rows[teamID], auth)
	return 1, nil
}

func (m *memMembers) DeleteByTeam(_ context.Context, teamID int64) (int64, error) {
	n := int64(len(m.rows[teamID]))
	delete(m.rows, teamID)
	return n, nil
}

type memTeams struct {
	teams.Repository
	rows   map[int64]*models.Team
	nextID int64
}

func newMemTeams(list ...*models.Team) *memTeams {
	m := &memTeams{rows: map[int64]*models.Team{}}
	for _, t := range list {
		m.rows[t.ID] = t
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
	}
	return m
}

func (m *memTeams) Create(_ context.Context, t *models.Team) (*models.Team, error) {
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.rows[t.ID] = &cp
	return t, nil
}

func (m *memTeams) GetByID(_ context.Context, id int64) (*models.Team, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTeams) GetForUpdate(ctx context.Context, id int64) (*models.Team, error) {
	return m.GetByID(ctx, id)
}

func (m *memTeams) List(_ context.Context) ([]*models.Team, error) {
	var out []*models.Team
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.rows[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTeams) ListByOwner(ctx context.Context, userID int64) ([]*models.Team, error) {
	all, _ := m.List(ctx)
	var out []*models.Team
	for _, t := range all {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTeams) Update(_ context.Context, id int64, upd models.TeamUpdate) error {
	t, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.UserID != nil {
		t.UserID = *upd.UserID
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Flag != nil {
		t.Flag = *upd.Flag
	}
	if upd.Logo != nil {
		t.Logo = *upd.Logo
	}
	if upd.Tag != nil {
		t.Tag = *upd.Tag
	}
	if upd.PublicTeam != nil {
		t.PublicTeam = *upd.PublicTeam
	}
	return nil
}

func (m *memTeams) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

type memUsers struct {
	users.Repository
	rows   map[int64]*models.User
	nextID int64
}

func newMemUsers(list ...*models.User) *memUsers {
	m := &memUsers{rows: map[int64]*models.User{}}
	for _, u := range list {
		m.rows[u.ID] = u
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.rows[u.ID] = &cp
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetBySteamID(_ context.Context, steamID string) (*models.User, error) {
	for _, u := range m.rows {
		if u.SteamID == steamID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return m.GetByID(ctx, id)
}

func (m *memUsers) List(_ context.Context) ([]*models.User, error) {
	var out []*models.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.rows[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, id int64, upd models.UserUpdate) error {
	u, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Admin != nil {
		u.Admin = *upd.Admin
	}
	if upd.SuperAdmin != nil {
		u.SuperAdmin = *upd.SuperAdmin
	}
	return nil
}

type memServers struct {
	servers.Repository
	rows        map[int64]*models.Server
	nextID      int64
	listVisible int
}

func newMemServers(list ...*models.Server) *memServers {
	m := &memServers{rows: map[int64]*models.Server{}}
	for _, s := range list {
		m.rows[s.ID] = s
		if s.ID > m.nextID {
			m.nextID = s.ID
		}
	}
	return m
}

func (m *memServers) Create(_ context.Context, s *models.Server) (*models.Server, error) {
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.rows[s.ID] = &cp
	return s, nil
}

func (m *memServers) GetByID(_ context.Context, id int64) (*models.Server, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memServers) GetForUpdate(ctx context.Context, id int64) (*models.Server, error) {
	return m.GetByID(ctx, id)
}

func (m *memServers) List(_ context.Context) ([]*models.Server, error) {
	var out []*models.Server
	for id := int64(1); id <= m.nextID; id++ {
		if s, ok := m.rows[id]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memServers) ListVisible(ctx context.Context, userID int64) ([]*models.Server, error) {
	m.listVisible++
	all, _ := m.List(ctx)
	var out []*models.Server
	for _, s := range all {
		if s.PublicServer || s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memServers) Update(_ context.Context, id int64, upd models.ServerUpdate) error {
	s, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.UserID != nil {
		s.UserID = *upd.UserID
	}
	if upd.IPString != nil {
		s.IPString = *upd.IPString
	}
	if upd.Port != nil {
		s.Port = *upd.Port
	}
	if upd.DisplayName != nil {
		s.DisplayName = *upd.DisplayName
	}
	if upd.RCONPassword != nil {
		v := *upd.RCONPassword
		s.RCONPassword = &v
	}
	if upd.ClearRCONPassword {
		s.RCONPassword = nil
	}
	if upd.PublicServer != nil {
		s.PublicServer = *upd.PublicServer
	}
	return nil
}

func (m *memServers) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memServers) ListSecretsForUpdate(_ context.Context) ([]servers.SecretRef, error) {
	var out []servers.SecretRef
	for id := int64(1); id <= m.nextID; id++ {
		if s, ok := m.rows[id]; ok && s.RCONPassword != nil {
			out = append(out, servers.SecretRef{ID: id, Blob: *s.RCONPassword})
		}
	}
	return out, nil
}

func (m *memServers) SetSecret(_ context.Context, id int64, blob string) error {
	s, ok := m.rows[id]
	if !ok {
		return common.ErrorNotFound
	}
	s.RCONPassword = &blob
	return nil
}

type memMatches struct {
	matches.Repository
	rows map[int64]*models.Match
	maps map[int64]*models.MapScore
}

func (m *memMatches) GetByID(_ context.Context, id int64) (*models.Match, error) {
	mt, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return mt, nil
}

func (m *memMatches) ListRecentByTeam(_ context.Context, teamID int64, limit int) ([]*models.Match, error) {
	var ids []int64
	for id, mt := range m.rows {
		if mt.HasTeam(teamID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*models.Match, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}
	return out, nil
}

func (m *memMatches) FirstMap(_ context.Context, matchID int64) (*models.MapScore, error) {
	ms, ok := m.maps[matchID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return ms, nil
}

// fakeRepoMgr hands out the same in-memory repositories for any DBTX.
type fakeRepoMgr struct {
	repomanager.RepositoryManager
	users   *memUsers
	servers *memServers
	teams   *memTeams
	members *memMembers
	matches *memMatches
}

func (f *fakeRepoMgr) Users(dbx.DBTX) users.Repository     { return f.users }
func (f *fakeRepoMgr) Servers(dbx.DBTX) servers.Repository { return f.servers }
func (f *fakeRepoMgr) Teams(dbx.DBTX) teams.Repository     { return f.teams }
func (f *fakeRepoMgr) Members(dbx.DBTX) members.Repository { return f.members }
func (f *fakeRepoMgr) Matches(dbx.DBTX) matches.Repository { return f.matches }

func ptr[T any](v T) *T { return &v }
