// Package results derives a team's result line for one match.
package results

import (
	"fmt"

	"github.com/dmitrijs2005/matchkeeper/internal/common"
	"github.com/dmitrijs2005/matchkeeper/internal/server/models"
)

type Status string

const (
	StatusLive       Status = "Live"
	StatusLost       Status = "Lost"
	StatusWon        Status = "Won"
	StatusForfeitWin Status = "Forfeit win"
	StatusTied       Status = "Tied"
)

// ContestView is what Compute needs to know about a match. FirstMap is nil
// when no map was recorded; Opponent is nil when the other team record is
// gone.
type ContestView struct {
	Match    *models.Match
	FirstMap *models.MapScore
	Opponent *models.Team
}

// Outcome is a match result seen from one team.
type Outcome struct {
	Status     Status `json:"status"`
	MyScore    int    `json:"my_score"`
	OtherScore int    `json:"other_score"`
	OtherName  string `json:"other_name"`
}

// String renders the outcome as a single result line, e.g.
// "Won, 2:0 vs Ninjas" or "Forfeit win vs Ninjas".
func (o Outcome) String() string {
	if o.Status == StatusForfeitWin {
		return fmt.Sprintf("%s vs %s", o.Status, o.OtherName)
	}
	return fmt.Sprintf("%s, %d:%d vs %s", o.Status, o.MyScore, o.OtherScore, o.OtherName)
}

// Compute returns the outcome of v.Match from the side of teamID.
// A team that did not play in the match yields common.ErrorNotFound.
//
// Scores come from the match aggregates, except in a best-of-one with a
// recorded map, where the map score is used. The first matching status
// wins: Live, Lost, Won, Forfeit win, Tied.
func Compute(v ContestView, teamID int64) (Outcome, error) {
	m := v.Match
	if m == nil || !m.HasTeam(teamID) {
		return Outcome{}, common.ErrorNotFound
	}

	first := m.Team1ID != nil && *m.Team1ID == teamID

	var o Outcome
	if first {
		o.MyScore, o.OtherScore = m.Team1Score, m.Team2Score
	} else {
		o.MyScore, o.OtherScore = m.Team2Score, m.Team1Score
	}

	if m.MaxMaps == 1 && v.FirstMap != nil {
		if first {
			o.MyScore, o.OtherScore = v.FirstMap.Team1Score, v.FirstMap.Team2Score
		} else {
			o.MyScore, o.OtherScore = v.FirstMap.Team2Score, v.FirstMap.Team1Score
		}
	}

	o.OtherName = common.RemovedTeamName
	if v.Opponent != nil {
		o.OtherName = v.Opponent.Name
	}

	switch {
	case m.EndTime == nil && !m.Cancelled && m.StartTime != nil:
		o.Status = StatusLive
	case o.MyScore < o.OtherScore:
		o.Status = StatusLost
	case o.MyScore > o.OtherScore:
		o.Status = StatusWon
	case m.Winner != nil:
		o.Status = StatusForfeitWin
	default:
		o.Status = StatusTied
	}

	return o, nil
}

// OpponentID returns the id of the team teamID played against, or nil when
// that team was removed.
func OpponentID(m *models.Match, teamID int64) *int64 {
	if m.Team1ID != nil && *m.Team1ID == teamID {
		return m.Team2ID
	}
	return m.Team1ID
}
