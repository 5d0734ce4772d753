package table

import (
	"regexp"
	"strings"
)

var joinCodePattern = regexp.MustCompile(`^[A-Z]{4}$`)

type RefKind int

const (
	RefByID RefKind = iota
	RefByJoinCode
)

// Ref addresses a table either by durable id or by join code.
type Ref struct {
	Kind  RefKind
	Value string
}

// ParseRef classifies a path segment. Exactly four uppercase letters is a
// join code; anything else is treated as a table id.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, ErrInvalidRequest
	}
	if joinCodePattern.MatchString(raw) {
		return Ref{Kind: RefByJoinCode, Value: raw}, nil
	}
	return Ref{Kind: RefByID, Value: raw}, nil
}

// NormalizeJoinCode upper-cases user input and checks its shape.
func NormalizeJoinCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !joinCodePattern.MatchString(code) {
		return "", ErrInvalidRequest
	}
	return code, nil
}
