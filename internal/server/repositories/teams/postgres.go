package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectTeam = `SELECT id, user_id, name, flag, logo, tag, public_team FROM team`

type scanner interface {
	Scan(dest ...any) error
}

func scanTeam(s scanner) (*models.Team, error) {
	t := &models.Team{}
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Flag, &t.Logo, &t.Tag, &t.PublicTeam)
	return t, err
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Team) (*models.Team, error) {
	query :=
		`INSERT INTO team (user_id, name, flag, logo, tag, public_team)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		t.UserID, t.Name, t.Flag, t.Logo, t.Tag, t.PublicTeam).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	return r.getOne(ctx, selectTeam+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Team, error) {
	return r.getOne(ctx, selectTeam+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, id int64) (*models.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Team, error) {
	return r.list(ctx, selectTeam+` ORDER BY id`)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.Team, error) {
	return r.list(ctx, selectTeam+` WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.TeamUpdate) error {
	var set dbx.SetClause
	if upd.UserID != nil {
		set.Add("user_id", *upd.UserID)
	}
	if upd.Name != nil {
		set.Add("name", *upd.Name)
	}
	if upd.Flag != nil {
		set.Add("flag", *upd.Flag)
	}
	if upd.Logo != nil {
		set.Add("logo", *upd.Logo)
	}
	if upd.Tag != nil {
		set.Add("tag", *upd.Tag)
	}
	if upd.PublicTeam != nil {
		set.Add("public_team", *upd.PublicTeam)
	}
	if set.Len() == 0 {
		return common.ErrNoUpdateData
	}

	return r.exec(ctx, `UPDATE team SET `+set.String()+` WHERE id = `+set.Next(), set.Args(id)...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM team WHERE id = $1`, id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
