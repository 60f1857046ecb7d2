package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_question_sets.sql
var createQuestionSetsSQL string

//go:embed 0002_create_leaderboards.sql
var createLeaderboardsSQL string

var Migrations = migrate.NewMigrations()
