package expr_test

import (
	"testing"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Evaluates(t *testing.T) {
	tests := []struct {
		src      string
		expected any
	}{
		{`age > 30`, true},
		{`age >= 34 && name == "Alice"`, true},
		{`age < 30 or active`, true},
		{`not active`, false},
		{`!(age == 34)`, false},
		{`age + 1 * 2`, int64(36)},
		{`(age + 1) * 2`, int64(70)},
		{`salary / 2 > 2500`, true},
		{`-age`, int64(-34)},
		{`meta.score != 7`, false},
		{"`name` == \"Alice\"", true},
		{`has(meta.team) and lower(name) == "alice"`, true},
		{`len(tags)`, int64(2)},
		{`active == true`, true},
		{`name != null`, true},
		{`1.5 * 2`, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := expr.Parse(tt.src)
			require.NoError(t, err)
			got, err := expr.Evaluate(e, employee)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	e := expr.MustParse(`a == 1 || b == 2 && c == 3`)
	assert.Equal(t, `((col(a) == lit(1)) || ((col(b) == lit(2)) && (col(c) == lit(3))))`, e.String())
}

func TestParse_Errors(t *testing.T) {
	tests := []string{
		``,
		`age >`,
		`age = 3`,
		`(age > 3`,
		`age > 3 )`,
		`meta.`,
		`unknown(age)`,
		`"unterminated`,
		`age & 1`,
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := expr.Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrArgument)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { expr.MustParse(`age >`) })
}
