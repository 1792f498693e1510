package payoff

import (
	"fmt"
	"strings"
)

// Strategy selects which open loan receives the month's surplus budget and the
// order loans are listed in each month.
type Strategy int

const (
	// StrategyNone keeps the input order.
	StrategyNone Strategy = iota
	// StrategyAvalanche targets the highest annual rate first.
	StrategyAvalanche
	// StrategySnowball targets the lowest current balance first.
	StrategySnowball
	// StrategyPriority targets the lowest priority value first.
	StrategyPriority
	// StrategySmart orders by priority, then rate, then balance.
	StrategySmart
	// StrategyLowestPriority targets the highest priority value first.
	StrategyLowestPriority
)

var strategyNames = map[Strategy]string{
	StrategyNone:           "none",
	StrategyAvalanche:      "avalanche",
	StrategySnowball:       "snowball",
	StrategyPriority:       "priority",
	StrategySmart:          "smart",
	StrategyLowestPriority: "lowest-priority",
}

// Alternate spellings and the short codes sent by web form submissions.
var strategyAliases = map[string]Strategy{
	"lowestpriority": StrategyLowestPriority,
	"1n":             StrategyNone,
	"2s":             StrategySmart,
	"3a":             StrategyAvalanche,
	"4s":             StrategySnowball,
	"5h":             StrategyPriority,
	"6l":             StrategyLowestPriority,
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyNone,
		StrategyAvalanche,
		StrategySnowball,
		StrategyPriority,
		StrategySmart,
		StrategyLowestPriority,
	}
}

// ParseStrategy resolves a strategy name or form code, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == key {
			return s, nil
		}
	}
	if s, ok := strategyAliases[key]; ok {
		return s, nil
	}
	return StrategyNone, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, name)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidInput, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// comparator returns a negative number when a should be paid before b.
type comparator func(a, b *workingLoan) int

func (s Strategy) comparator() comparator {
	switch s {
	case StrategyAvalanche:
		return byRateDesc
	case StrategySnowball:
		return byBalanceAsc
	case StrategyPriority:
		return chain(byPriorityAsc, byIDAsc)
	case StrategySmart:
		return chain(byPriorityAsc, byRateDesc, byBalanceAsc)
	case StrategyLowestPriority:
		return chain(byPriorityDesc, byIDAsc)
	default:
		return func(a, b *workingLoan) int { return 0 }
	}
}

func chain(cmps ...comparator) comparator {
	return func(a, b *workingLoan) int {
		for _, cmp := range cmps {
			if c := cmp(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func byRateDesc(a, b *workingLoan) int {
	return compareFloat(b.AnnualRate, a.AnnualRate)
}

func byBalanceAsc(a, b *workingLoan) int {
	return compareFloat(a.Principal, b.Principal)
}

func byIDAsc(a, b *workingLoan) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// Loans without a priority sort after every loan that has one, in both
// directions.
func comparePriority(a, b *workingLoan, desc bool) int {
	switch {
	case a.Priority == nil && b.Priority == nil:
		return 0
	case a.Priority == nil:
		return 1
	case b.Priority == nil:
		return -1
	}
	c := compareFloat(float64(*a.Priority), float64(*b.Priority))
	if desc {
		return -c
	}
	return c
}

func byPriorityAsc(a, b *workingLoan) int {
	return comparePriority(a, b, false)
}

func byPriorityDesc(a, b *workingLoan) int {
	return comparePriority(a, b, true)
}
