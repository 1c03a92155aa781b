package tagweave

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DuplicatePolicy decides what happens when a tag repeats an attribute key.
type DuplicatePolicy int

const (
	DuplicateReject   DuplicatePolicy = iota // strict: the whole tag head is demoted to text
	DuplicateLastWins                        // later value replaces the earlier one in place
)

// String returns the config spelling of the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateLastWins:
		return "last-wins"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "reject" or "last-wins".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return DuplicateReject, nil
	case "last-wins", "lastwins", "last_wins":
		return DuplicateLastWins, nil
	default:
		return DuplicateReject, fmt.Errorf("unknown duplicate policy %q", s)
	}
}

type Engine struct {
	log        *zap.Logger
	duplicates DuplicatePolicy
}
