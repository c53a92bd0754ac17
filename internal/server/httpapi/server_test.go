package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/logging"
	"github.com/dmitrijs2005/matchkeeper/internal/server/auth"
	"github.com/dmitrijs2005/matchkeeper/internal/server/guard"
	"github.com/dmitrijs2005/matchkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/dmitrijs2005/matchkeeper/internal/server/results"
	"github.com/dmitrijs2005/matchkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeUsers struct {
	Users
	principals map[int64]guard.Principal
	created    services.CreateUserInput
	err        error
}

func (f *fakeUsers) Principal(_ context.Context, id int64) (guard.Principal, error) {
	p, ok := f.principals[id]
	if !ok {
		return guard.Principal{}, common.ErrorUnauthorized
	}
	return p, nil
}

func (f *fakeUsers) Get(_ context.Context, idOrSteam string) (*models.User, error) {
	for _, p := range f.principals {
		if p.SteamID == idOrSteam || fmt.Sprint(p.UserID) == idOrSteam {
			return &models.User{ID: p.UserID, SteamID: p.SteamID}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Create(_ context.Context, p guard.Principal, in services.CreateUserInput) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if !p.Elevated() {
		return 0, common.ErrorForbidden
	}
	f.created = in
	return 3, nil
}

type fakeTeams struct {
	Teams
	gotPrincipal guard.Principal
	gotCreate    services.CreateTeamInput
	gotAuths     map[string]string
	err          error
}

func (f *fakeTeams) Create(_ context.Context, p guard.Principal, in services.CreateTeamInput) (int64, error) {
	f.gotPrincipal, f.gotCreate = p, in
	return 11, f.err
}

func (f *fakeTeams) Update(_ context.Context, p guard.Principal, id int64, upd models.TeamUpdate, auths map[string]string) (services.RosterSummary, error) {
	f.gotPrincipal, f.gotAuths = p, auths
	return services.RosterSummary{Updated: len(auths)}, f.err
}

func (f *fakeTeams) Delete(_ context.Context, p guard.Principal, id int64, steamID string) error {
	f.gotPrincipal = p
	return f.err
}

func (f *fakeTeams) Result(_ context.Context, teamID, matchID int64) (results.Outcome, error) {
	if f.err != nil {
		return results.Outcome{}, f.err
	}
	return results.Outcome{Status: results.StatusWon, MyScore: 2, OtherName: "Bravo"}, nil
}

type fakeServers struct {
	Servers
	err error
}

func (f *fakeServers) Get(_ context.Context, p guard.Principal, id int64) (services.ServerView, error) {
	if f.err != nil {
		return services.ServerView{}, f.err
	}
	pw := "secret"
	return services.ServerView{Server: &models.Server{ID: id, UserID: p.UserID}, RCONPassword: &pw}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeUsers, *fakeTeams, *fakeServers) {
	t.Helper()
	us := &fakeUsers{principals: map[int64]guard.Principal{
		1: {UserID: 1, SteamID: "76561197960287930"},
		9: {UserID: 9, SteamID: "76561197960265737", SuperAdmin: true},
	}}
	ts := &fakeTeams{}
	ss := &fakeServers{}
	s := NewServer(":0", logging.Nop(), metrics.New(), testSecret, us, ss, ts, nil)
	return s, us, ts, ss
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, body = do(t, s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `matchkeeper_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestAuthenticate(t *testing.T) {
	s, _, ts, _ := newTestServer(t)
	payload := `{"name":"Alpha"}`

	code, body := do(t, s, http.MethodPost, "/teams", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, body)

	code, _ = do(t, s, http.MethodPost, "/teams", payload, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, s, http.MethodPost, "/teams", payload, bearer(token(t, 404)))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = do(t, s, http.MethodPost, "/teams", payload, bearer(token(t, 1)))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Team successfully inserted.","id":11}`, body)
	assert.Equal(t, int64(1), ts.gotPrincipal.UserID)

	code, _ = do(t, s, http.MethodPost, "/teams", payload, map[string]string{common.AccessTokenHeaderName: token(t, 9)})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, ts.gotPrincipal.Elevated())
}

func TestOptionalAuth(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/servers/5", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"user_id":0`)

	code, _ = do(t, s, http.MethodGet, "/servers/5", "", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = do(t, s, http.MethodGet, "/users/me", "", bearer(token(t, 1)))
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"steam_id":"76561197960287930"`)
}

func TestServerView_HidesStoredBlob(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	_, body := do(t, s, http.MethodGet, "/servers/5", "", bearer(token(t, 1)))
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "secret", got["rcon_password"])
	assert.EqualValues(t, 5, got["id"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{err: common.ErrorNotFound, code: http.StatusNotFound, msg: "not found"},
		{err: common.ErrorForbidden, code: http.StatusForbidden, msg: "forbidden"},
		{err: fmt.Errorf("%w: port out of range", common.ErrorValidation), code: http.StatusBadRequest, msg: "validation error: port out of range"},
		{err: common.ErrNoUpdateData, code: http.StatusPreconditionFailed, msg: "no update data has been provided"},
		{err: fmt.Errorf("%w: steam down", common.ErrIdentityLookupFailed), code: http.StatusBadGateway, msg: "identity lookup failed"},
		{err: fmt.Errorf("%w: commit: conn reset", common.ErrTransactionFailed), code: http.StatusInternalServerError, msg: "internal error"},
		{err: errors.New("db error: key 0123456789abcdef"), code: http.StatusInternalServerError, msg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s, _, ts, _ := newTestServer(t)
			ts.err = tt.err

			code, body := do(t, s, http.MethodDelete, "/teams", `{"team_id":1}`, bearer(token(t, 1)))
			assert.Equal(t, tt.code, code)
			assert.JSONEq(t, fmt.Sprintf(`{"message":%q}`, tt.msg), body)
		})
	}
}

func TestCreateUser_ElevatedOnly(t *testing.T) {
	s, us, _, _ := newTestServer(t)
	payload := `[{"steam_id":"76561197969249709","admin":true}]`

	code, _ := do(t, s, http.MethodPost, "/users", payload, bearer(token(t, 1)))
	assert.Equal(t, http.StatusForbidden, code)

	code, body := do(t, s, http.MethodPost, "/users", payload, bearer(token(t, 9)))
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"User successfully inserted.","id":3}`, body)
	assert.Equal(t, services.CreateUserInput{SteamID: "76561197969249709", Admin: true}, us.created)
}

func TestUpdateTeam_AuthNamePayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{name: "strings", body: `{"id":1,"auth_name":{"a":"Alice"}}`, want: map[string]string{"a": "Alice"}},
		{name: "objects", body: `[{"id":1,"auth_name":{"a":{"name":"Alice","captain":1}}}]`, want: map[string]string{"a": "Alice"}},
		{name: "mixed", body: `{"id":1,"auth_name":{"a":"A","b":{"name":"B"},"c":5,"d":{"x":1}}}`, want: map[string]string{"a": "A", "b": "B"}},
		{name: "malformed", body: `{"id":1,"name":"x","auth_name":"oops"}`, want: map[string]string{}},
		{name: "missing", body: `{"id":1,"name":"x"}`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, ts, _ := newTestServer(t)
			code, _ := do(t, s, http.MethodPut, "/teams", tt.body, bearer(token(t, 1)))
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.want, ts.gotAuths)
		})
	}
}

func TestUpdateTeam_RequiresID(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	code, _ := do(t, s, http.MethodPut, "/teams", `{"name":"x"}`, bearer(token(t, 1)))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMatchResult(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	code, body := do(t, s, http.MethodGet, "/teams/1/result/7", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"Won","my_score":2,"other_score":0,"other_name":"Bravo","result":"Won, 2:0 vs Bravo"}`, body)

	code, _ = do(t, s, http.MethodGet, "/teams/x/result/7", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDecodeSingle(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	require.NoError(t, decodeSingle([]byte(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	require.NoError(t, decodeSingle([]byte(` [{"a":2}] `), &v))
	assert.Equal(t, 2, v.A)

	for _, bad := range []string{"", "[]", `[{"a":1},{"a":2}]`, "{", `{"a":"x"}`} {
		assert.ErrorIs(t, decodeSingle([]byte(bad), &v), common.ErrorValidation, bad)
	}
}

func TestStatusFor_Default(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
	assert.Equal(t, http.StatusUnauthorized, statusFor(fmt.Errorf("%w: %w", common.ErrInvalidToken, errors.New("expired"))))
}
