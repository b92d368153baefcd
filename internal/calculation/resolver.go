package calculation

import (
	"strconv"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundUnit rounds to the nearest franc, halves rounding up (floor(x + 0.5))
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// ResolveBracket returns the bracket applying to v.
//
// The chosen bracket is the last one whose floor is at or below v, so
// fractional values fall into the lower bracket and values past a bounded
// ceiling stay in the last bracket. Values below the first floor resolve to
// the first bracket. Whenever v lies outside the chosen bracket the
// resolution is flagged as a fallback.
func ResolveBracket(table domain.BracketTable, v decimal.Decimal) domain.Resolution {
	if len(table.Brackets) == 0 {
		return domain.Resolution{Table: table.Name, Key: "default", Value: decimal.NewFromInt(1), Fallback: true}
	}

	iv := v.Floor().IntPart()
	chosen := table.Brackets[0]
	for _, b := range table.Brackets {
		if b.Min <= iv {
			chosen = b
		}
	}

	return domain.Resolution{
		Table:    table.Name,
		Key:      bracketKey(chosen),
		Value:    chosen.Value,
		Fallback: !chosen.Contains(iv),
	}
}

// ResolveBracketInt is ResolveBracket for integer inputs
func ResolveBracketInt(table domain.BracketTable, v int) domain.Resolution {
	return ResolveBracket(table, decimal.NewFromInt(int64(v)))
}

// ResolveKey returns the coefficient for a category key. Unknown or empty
// keys resolve to the table default (1 when none is configured) and are
// flagged as a fallback.
func ResolveKey(table domain.KeyedTable, key string) domain.Resolution {
	norm := strings.ToLower(strings.TrimSpace(key))
	if v, ok := table.Values[norm]; ok {
		return domain.Resolution{Table: table.Name, Key: norm, Value: v}
	}

	def := table.Default
	if def.IsZero() {
		def = decimal.NewFromInt(1)
	}
	return domain.Resolution{Table: table.Name, Key: norm, Value: def, Fallback: true}
}

func bracketKey(b domain.Bracket) string {
	if b.Label != "" {
		return b.Label
	}
	if b.Max == nil {
		return strconv.FormatInt(b.Min, 10) + "+"
	}
	if *b.Max == b.Min {
		return strconv.FormatInt(b.Min, 10)
	}
	return strconv.FormatInt(b.Min, 10) + "-" + strconv.FormatInt(*b.Max, 10)
}
