package servers

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

const selectServer = `SELECT id, user_id, ip_string, port, display_name, rcon_password, public_server FROM game_server`

type scanner interface {
	Scan(dest ...any) error
}

func scanServer(s scanner) (*models.Server, error) {
	srv := &models.Server{}
	err := s.Scan(&srv.ID, &srv.UserID, &srv.IPString, &srv.Port, &srv.DisplayName, &srv.RCONPassword, &srv.PublicServer)
	return srv, err
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Server) (*models.Server, error) {
	query :=
		`INSERT INTO game_server (user_id, ip_string, port, display_name, rcon_password, public_server)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.IPString, s.Port, s.DisplayName, s.RCONPassword, s.PublicServer).Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	return r.getOne(ctx, selectServer+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Server, error) {
	return r.getOne(ctx, selectServer+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, id int64) (*models.Server, error) {
	srv, err := scanServer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return srv, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Server, error) {
	return r.list(ctx, selectServer+` ORDER BY id`)
}

// ListVisible returns public servers plus those owned by userID.
func (r *PostgresRepository) ListVisible(ctx context.Context, userID int64) ([]*models.Server, error) {
	return r.list(ctx, selectServer+` WHERE public_server OR user_id = $1 ORDER BY id`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Server, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Server
	for rows.Next() {
		srv, err := scanServer(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, upd models.ServerUpdate) error {
	var set dbx.SetClause
	if upd.UserID != nil {
		set.Add("user_id", *upd.UserID)
	}
	if upd.IPString != nil {
		set.Add("ip_string", *upd.IPString)
	}
	if upd.Port != nil {
		set.Add("port", *upd.Port)
	}
	if upd.DisplayName != nil {
		set.Add("display_name", *upd.DisplayName)
	}
	switch {
	case upd.ClearRCONPassword:
		set.Add("rcon_password", nil)
	case upd.RCONPassword != nil:
		set.Add("rcon_password", *upd.RCONPassword)
	}
	if upd.PublicServer != nil {
		set.Add("public_server", *upd.PublicServer)
	}
	if set.Len() == 0 {
		return common.ErrNoUpdateData
	}

	return r.exec(ctx, `UPDATE game_server SET `+set.String()+` WHERE id = `+set.Next(), set.Args(id)...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM game_server WHERE id = $1`, id)
}

// ListSecretsForUpdate returns every stored password blob, locking the rows.
func (r *PostgresRepository) ListSecretsForUpdate(ctx context.Context) ([]SecretRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rcon_password FROM game_server WHERE rcon_password IS NOT NULL ORDER BY id FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []SecretRef
	for rows.Next() {
		var ref SecretRef
		if err := rows.Scan(&ref.ID, &ref.Blob); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetSecret(ctx context.Context, id int64, blob string) error {
	return r.exec(ctx, `UPDATE game_server SET rcon_password = $1 WHERE id = $2`, blob, id)
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
