package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-engine/internal/models"
)

func TestManticoreTranslate_Basic(t *testing.T) {
	d := NewManticoreDialect("trademarks")
	stmt, err := d.Translate(models.NewSearchQuery("NIKE"))
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "FROM trademarks")
	assert.Contains(t, stmt.SQL, "MATCH(?)")
	assert.Contains(t, stmt.SQL, "status IN (?)")
	assert.Contains(t, stmt.SQL, "LIMIT 100")
	assert.NotContains(t, stmt.SQL, "NIKE", "user text never lands in the SQL")

	require.Len(t, stmt.Params, 2)
	assert.Equal(t, "NIKE", stmt.Params[0])
	assert.Equal(t, "LIVE", stmt.Params[1], "absent status filter means live-only")
}

func TestManticoreTranslate_ClassesAndStatuses(t *testing.T) {
	d := NewManticoreDialect("trademarks")
	q := models.NewSearchQuery("ACME").
		WithClasses(35, 25).
		WithStatusFilter(models.StatusLive, models.StatusPending)

	stmt, err := d.Translate(q)
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "status IN (?, ?)")
	assert.Contains(t, stmt.SQL, "classes IN (?, ?)")
	// match text, two statuses, two classes
	require.Len(t, stmt.Params, 5)
	assert.Equal(t, "LIVE", stmt.Params[1])
	assert.Equal(t, "PENDING", stmt.Params[2])
	assert.Equal(t, 25, stmt.Params[3], "classes arrive canonicalized")
	assert.Equal(t, 35, stmt.Params[4])
}

func TestManticoreTranslate_LimitHandling(t *testing.T) {
	d := NewManticoreDialect("")

	stmt, err := d.Translate(models.NewSearchQuery("NIKE").WithLimit(5000))
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "LIMIT 1000", "hard ceiling applies")

	stmt, err = d.Translate(models.NewSearchQuery("NIKE").WithLimit(0))
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "LIMIT 100", "zero falls back to the default")

	_, err = d.Translate(models.NewSearchQuery("NIKE").WithLimit(-5))
	assert.ErrorIs(t, err, ErrLimitOutOfRange)
}

func TestManticoreTranslate_EmptyMarkText(t *testing.T) {
	d := NewManticoreDialect("trademarks")

	for _, text := range []string{"", "   ", "!!! ---"} {
		_, err := d.Translate(models.NewSearchQuery(text))
		assert.ErrorIs(t, err, ErrEmptyMarkText, "input %q", text)
	}
}

func TestManticoreTranslate_PhoneticExpansion(t *testing.T) {
	d := NewManticoreDialect("trademarks")
	d.PhoneticExpansion = true

	stmt, err := d.Translate(models.NewSearchQuery("NIKE"))
	require.NoError(t, err)
	match := stmt.Params[0].(string)
	assert.Contains(t, match, "@phonetic_codes")
	assert.Contains(t, match, "N200")

	// widening is gated on the query flag
	q := models.NewSearchQuery("NIKE")
	q.Phonetic = false
	stmt, err = d.Translate(q)
	require.NoError(t, err)
	assert.NotContains(t, stmt.Params[0].(string), "@phonetic_codes")
}

func TestEscapeMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NIKE", "NIKE"},
		{"a!b", `a\!b`},
		{"x|y", `x\|y`},
		{"user@host", `user\@host`},
		{"semi~colon", `semi\~colon`},
		{"a/b", `a\/b`},
		{"(group)", `\(group\)`},
		{`back\slash`, `back\\slash`},
		{`O'Reilly`, `O\'Reilly`},
		{`say "hi"`, `say \"hi\"`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EscapeMatch(tt.input), "input %q", tt.input)
	}
}

func TestStatementRender(t *testing.T) {
	stmt := &Statement{SQL: "SELECT ? AS a WHERE x = ? LIMIT ?", Params: []interface{}{"NIKE", 25, 10}}
	rendered, err := stmt.Render()
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'NIKE' AS a WHERE x = 25 LIMIT 10", rendered)
}

func TestStatementRender_QuotesStrings(t *testing.T) {
	stmt := &Statement{SQL: "MATCH(?)", Params: []interface{}{EscapeMatch("O'Reilly")}}
	rendered, err := stmt.Render()
	require.NoError(t, err)
	// match-level escape then literal-level escape
	assert.Equal(t, `MATCH('O\\\'Reilly')`, rendered)
}

func TestStatementRender_ParamMismatch(t *testing.T) {
	_, err := (&Statement{SQL: "a = ?", Params: nil}).Render()
	assert.Error(t, err)

	_, err = (&Statement{SQL: "a = 1", Params: []interface{}{"extra"}}).Render()
	assert.Error(t, err)
}

func TestPostgresTranslate(t *testing.T) {
	d := NewPostgresDialect("trademarks")
	q := models.NewSearchQuery("APPLE").WithClasses(9).WithLimit(50)

	stmt, err := d.Translate(q)
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "plainto_tsquery('simple', $1)")
	assert.Contains(t, stmt.SQL, "ts_rank")
	assert.Contains(t, stmt.SQL, "status = ANY($2)")
	assert.Contains(t, stmt.SQL, "classes && $3")
	assert.Contains(t, stmt.SQL, "LIMIT $4")

	require.Len(t, stmt.Params, 4)
	assert.Equal(t, "APPLE", stmt.Params[0])
	assert.Equal(t, []string{"LIVE"}, stmt.Params[1])
	assert.Equal(t, []int64{9}, stmt.Params[2])
	assert.Equal(t, 50, stmt.Params[3])
}

func TestPostgresTranslate_NoClasses(t *testing.T) {
	d := NewPostgresDialect("")
	stmt, err := d.Translate(models.NewSearchQuery("APPLE"))
	require.NoError(t, err)

	assert.NotContains(t, stmt.SQL, "classes &&")
	assert.Contains(t, stmt.SQL, "LIMIT $3")
	require.Len(t, stmt.Params, 3)
}

func TestPostgresTranslate_Errors(t *testing.T) {
	d := NewPostgresDialect("trademarks")

	_, err := d.Translate(models.NewSearchQuery("   "))
	assert.ErrorIs(t, err, ErrEmptyMarkText)

	_, err = d.Translate(models.NewSearchQuery("APPLE").WithLimit(-1))
	assert.True(t, errors.Is(err, ErrLimitOutOfRange))
}
