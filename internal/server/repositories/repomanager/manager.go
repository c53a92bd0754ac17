package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/matchkeeper/internal/dbx"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/matches"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/members"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/servers"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/teams"
	"github.com/dmitrijs2005/matchkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside a unit of work.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Servers(db dbx.DBTX) servers.Repository
	Teams(db dbx.DBTX) teams.Repository
	Members(db dbx.DBTX) members.Repository
	Matches(db dbx.DBTX) matches.Repository
}
