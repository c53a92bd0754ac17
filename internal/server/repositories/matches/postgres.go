package matches

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

const selectMatch = `SELECT id, user_id, team1_id, team2_id, team1_score, team2_score, winner, max_maps, start_time, end_time, cancelled FROM matches`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (*models.Match, error) {
	m := &models.Match{}
	var cancelled sql.NullBool
	err := s.Scan(&m.ID, &m.UserID, &m.Team1ID, &m.Team2ID, &m.Team1Score, &m.Team2Score,
		&m.Winner, &m.MaxMaps, &m.StartTime, &m.EndTime, &cancelled)
	m.Cancelled = cancelled.Valid && cancelled.Bool
	return m, err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, selectMatch+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListRecentByTeam(ctx context.Context, teamID int64, limit int) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		selectMatch+` WHERE team1_id = $1 OR team2_id = $1 ORDER BY id DESC LIMIT $2`, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) FirstMap(ctx context.Context, matchID int64) (*models.MapScore, error) {
	query :=
		`SELECT id, match_id, map_number, map_name, team1_score, team2_score, winner, start_time, end_time
		 FROM map_stats WHERE match_id = $1 ORDER BY map_number, id LIMIT 1`

	ms := &models.MapScore{}
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(&ms.ID, &ms.MatchID, &ms.MapNumber, &ms.MapName,
		&ms.Team1Score, &ms.Team2Score, &ms.Winner, &ms.StartTime, &ms.EndTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ms, nil
}
