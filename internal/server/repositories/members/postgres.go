package members

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID int64) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team_id, auth, name FROM team_auth_names WHERE team_id = $1 ORDER BY id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Auth, &m.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateName(ctx context.Context, teamID int64, auth, name string) (int64, error) {
	return r.exec(ctx, `UPDATE team_auth_names SET name = $1 WHERE auth = $2 AND team_id = $3`, name, auth, teamID)
}

func (r *PostgresRepository) Insert(ctx context.Context, teamID int64, auth, name string) error {
	_, err := r.exec(ctx, `INSERT INTO team_auth_names (team_id, auth, name) VALUES ($1, $2, $3)`, teamID, auth, name)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, teamID int64, auth string) (int64, error) {
	return r.exec(ctx, `DELETE FROM team_auth_names WHERE team_id = $1 AND auth = $2`, teamID, auth)
}

func (r *PostgresRepository) DeleteByTeam(ctx context.Context, teamID int64) (int64, error) {
	return r.exec(ctx, `DELETE FROM team_auth_names WHERE team_id = $1`, teamID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
