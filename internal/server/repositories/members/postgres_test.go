package members

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestListByTeam(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT id, team_id, auth, name FROM team_auth_names WHERE team_id = \$1 ORDER BY id$`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "auth", "name"}).
			AddRow(int64(1), int64(4), "76561198000000001", "alpha").
			AddRow(int64(2), int64(4), "76561198000000002", ""))

	got, err := repo.ListByTeam(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{
		{ID: 1, TeamID: 4, Auth: "76561198000000001", Name: "alpha"},
		{ID: 2, TeamID: 4, Auth: "76561198000000002", Name: ""},
	}, got)
}

func TestUpdateName_ReportsAffectedRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^UPDATE team_auth_names SET name = \$1 WHERE auth = \$2 AND team_id = \$3$`).
		WithArgs("alpha", "765", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.UpdateName(context.Background(), 4, "765", "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestInsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO team_auth_names \(team_id, auth, name\) VALUES \(\$1, \$2, \$3\)$`).
		WithArgs(int64(4), "765", "alpha").
		WillReturnResult(sqlmock.NewResult(9, 1))

	require.NoError(t, repo.Insert(context.Background(), 4, "765", "alpha"))
}

func TestInsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO team_auth_names`).WillReturnError(errors.New("duplicate key"))

	err := repo.Insert(context.Background(), 4, "765", "alpha")
	assert.ErrorContains(t, err, "db error: duplicate key")
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM team_auth_names WHERE team_id = \$1 AND auth = \$2$`).
		WithArgs(int64(4), "765").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM team_auth_names WHERE team_id = \$1$`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.Delete(context.Background(), 4, "765")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByTeam(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
