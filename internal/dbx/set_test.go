package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetClause(t *testing.T) {
	var s SetClause
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "$1", s.Next())

	s.Add("name", "x")
	s.Add("public_team", true)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "name = $1, public_team = $2", s.String())
	assert.Equal(t, "$3", s.Next())
	assert.Equal(t, []any{"x", true, int64(9)}, s.Args(int64(9)))
}
