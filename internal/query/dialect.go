// internal/query/dialect.go
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trademark-engine/internal/models"
)

// HardLimitCeiling is the largest candidate count any dialect will
// request from a backend, regardless of what the query asks for.
const HardLimitCeiling = 1000

var (
	ErrEmptyMarkText      = errors.New("EMPTY_MARK_TEXT")
	ErrUnsupportedFeature = errors.New("UNSUPPORTED_DIALECT_FEATURE")
	ErrLimitOutOfRange    = errors.New("LIMIT_OUT_OF_RANGE")
)

// Statement is a backend-specific retrieval request: SQL-like text with
// placeholders (`?` from the Manticore dialect, `$n` from the Postgres
// dialect) plus the parameter values, in order. User text never appears
// in the SQL itself.
type Statement struct {
	SQL    string
	Params []interface{}
}

// Dialect translates the neutral SearchQuery into a Statement for one
// particular backend.
type Dialect interface {
	Name() string
	Translate(q *models.SearchQuery) (*Statement, error)
}

// Render interpolates the parameters into the `?` placeholder positions,
// quoting strings for transports that cannot carry bind parameters
// (the Manticore HTTP /sql endpoint takes one literal statement).
func (s *Statement) Render() (string, error) {
	var b strings.Builder
	params := s.Params
	for i := 0; i < len(s.SQL); i++ {
		if s.SQL[i] != '?' {
			b.WriteByte(s.SQL[i])
			continue
		}
		if len(params) == 0 {
			return "", fmt.Errorf("statement has more placeholders than parameters")
		}
		lit, err := renderParam(params[0])
		if err != nil {
			return "", err
		}
		b.WriteString(lit)
		params = params[1:]
	}
	if len(params) != 0 {
		return "", fmt.Errorf("statement has %d unused parameters", len(params))
	}
	return b.String(), nil
}

func renderParam(p interface{}) (string, error) {
	switch v := p.(type) {
	case string:
		// literal-level escaping; any MATCH-level escaping the dialect
		// applied survives the round trip
		escaped := strings.ReplaceAll(v, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `'`, `\'`)
		return "'" + escaped + "'", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported parameter type %T", p)
	}
}

// ResolveLimit applies the default and the hard ceiling. A negative
// limit is the caller's error; zero means "use the default".
func ResolveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: %d", ErrLimitOutOfRange, limit)
	case limit == 0:
		return models.DefaultLimit, nil
	case limit > HardLimitCeiling:
		return HardLimitCeiling, nil
	default:
		return limit, nil
	}
}
