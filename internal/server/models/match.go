package models

import "time"

// MatchState is derived from the stored timestamps, never persisted.
type MatchState string

const (
	MatchOngoing   MatchState = "ongoing"
	MatchFinished  MatchState = "finished"
	MatchCancelled MatchState = "cancelled"
)

// Match is a contest between two teams. Team ids are nil when the team
// record was removed after the match.
type Match struct {
	ID         int64      `json:"id"`
	UserID     *int64     `json:"user_id"`
	Team1ID    *int64     `json:"team1_id"`
	Team2ID    *int64     `json:"team2_id"`
	Team1Score int        `json:"team1_score"`
	Team2Score int        `json:"team2_score"`
	Winner     *int64     `json:"winner"`
	MaxMaps    int        `json:"max_maps"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Cancelled  bool       `json:"cancelled"`
}

func (m *Match) State() MatchState {
	switch {
	case m.Cancelled:
		return MatchCancelled
	case m.EndTime != nil:
		return MatchFinished
	default:
		return MatchOngoing
	}
}

// HasTeam reports whether teamID played in m.
func (m *Match) HasTeam(teamID int64) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) || (m.Team2ID != nil && *m.Team2ID == teamID)
}

// MapScore is the per-map result of a match.
type MapScore struct {
	ID         int64      `json:"id"`
	MatchID    int64      `json:"match_id"`
	MapNumber  int        `json:"map_number"`
	MapName    string     `json:"map_name"`
	Team1Score int        `json:"team1_score"`
	Team2Score int        `json:"team2_score"`
	Winner     *int64     `json:"winner"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
}
