package calculation

import (
	"testing"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundUnit(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0.4", "0"},
		{"0.5", "1"},
		{"2.5", "3"},
		{"214834.95", "214835"},
		{"334134.225", "334134"},
		{"-2.5", "-2"},
		{"-2.6", "-3"},
	}
	for _, tt := range tests {
		got := RoundUnit(decimal.RequireFromString(tt.in))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "RoundUnit(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestResolveBracket_RCBase(t *testing.T) {
	table := DefaultRateTables().Auto.RCBase

	tests := []struct {
		name     string
		value    string
		want     string
		key      string
		fallback bool
	}{
		{"fiscal power 7", "7", "45000", "6-10 CV", false},
		{"lower bound inclusive", "6", "45000", "6-10 CV", false},
		{"upper bound inclusive", "10", "45000", "6-10 CV", false},
		{"next bracket", "11", "58000", "11-14 CV", false},
		{"fractional stays in lower bracket", "10.7", "45000", "6-10 CV", false},
		{"top bracket unbounded", "60", "92000", "24+ CV", false},
		{"below first floor", "0", "32000", "1-2 CV", true},
		{"negative", "-3", "32000", "1-2 CV", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveBracket(table, decimal.RequireFromString(tt.value))
			assert.True(t, res.Value.Equal(decimal.RequireFromString(tt.want)), "got %s", res.Value)
			assert.Equal(t, tt.key, res.Key)
			assert.Equal(t, tt.fallback, res.Fallback)
			assert.Equal(t, "rc_base", res.Table)
		})
	}
}

func TestResolveBracket_AboveBoundedCeiling(t *testing.T) {
	max := int64(10)
	table := domain.BracketTable{Name: "bounded", Brackets: []domain.Bracket{
		{Min: 1, Max: &max, Value: decimal.NewFromInt(3)},
	}}

	res := ResolveBracketInt(table, 50)
	assert.True(t, res.Value.Equal(decimal.NewFromInt(3)))
	assert.True(t, res.Fallback)
	assert.Equal(t, "1-10", res.Key)
}

func TestResolveBracket_EmptyTableIsExplicitDefault(t *testing.T) {
	res := ResolveBracketInt(domain.BracketTable{Name: "empty"}, 4)
	assert.True(t, res.Fallback)
	assert.True(t, res.Value.Equal(decimal.NewFromInt(1)), "never a silent zero")
}

func TestResolveKey(t *testing.T) {
	table := DefaultRateTables().Auto.Usage

	res := ResolveKey(table, "taxi")
	assert.True(t, res.Value.Equal(decimal.RequireFromString("1.75")))
	assert.False(t, res.Fallback)

	res = ResolveKey(table, "  Prive ")
	assert.True(t, res.Value.Equal(decimal.NewFromInt(1)))
	assert.False(t, res.Fallback)
	assert.Equal(t, "prive", res.Key)

	for _, key := range []string{"", "corbillard"} {
		res = ResolveKey(table, key)
		assert.True(t, res.Fallback, "key %q", key)
		assert.True(t, res.Value.Equal(decimal.NewFromInt(1)), "key %q", key)
	}
}

func TestResolveKey_ZeroDefaultFallsBackToOne(t *testing.T) {
	table := domain.KeyedTable{Name: "k", Values: map[string]decimal.Decimal{"a": decimal.NewFromInt(2)}}

	res := ResolveKey(table, "b")
	assert.True(t, res.Fallback)
	assert.True(t, res.Value.Equal(decimal.NewFromInt(1)))
}
