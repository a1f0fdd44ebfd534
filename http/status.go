package http

import (
	"fmt"
	"regexp"
	"strconv"
)

type statusKind int

const (
	statusUnset statusKind = iota
	statusExact
	statusPattern
	statusPredicate
)

// StatusPolicy decides which response statuses resolve a dispatch.
// It holds exactly one of: an exact code, a pattern matched against the
// decimal status, or a predicate.
type StatusPolicy struct {
	kind      statusKind
	code      int
	pattern   *regexp.Regexp
	predicate func(int) bool
}

var default2xx = regexp.MustCompile(`^2[0-9]{2}$`)

// DefaultStatusPolicy accepts any 2xx status.
func DefaultStatusPolicy() StatusPolicy {
	return PatternStatus(default2xx)
}

// ExactStatus accepts only code.
func ExactStatus(code int) StatusPolicy {
	return StatusPolicy{kind: statusExact, code: code}
}

// PatternStatus accepts statuses whose decimal form matches re.
func PatternStatus(re *regexp.Regexp) StatusPolicy {
	return StatusPolicy{kind: statusPattern, pattern: re}
}

// PredicateStatus accepts statuses for which fn returns true.
func PredicateStatus(fn func(status int) bool) StatusPolicy {
	return StatusPolicy{kind: statusPredicate, predicate: fn}
}

// Allows reports whether status passes the policy. The zero policy behaves
// like DefaultStatusPolicy.
func (p StatusPolicy) Allows(status int) bool {
	switch p.kind {
	case statusExact:
		return status == p.code
	case statusPattern:
		return p.pattern.MatchString(strconv.Itoa(status))
	case statusPredicate:
		return p.predicate(status)
	case statusUnset:
		return default2xx.MatchString(strconv.Itoa(status))
	}
	return false
}

// IsZero reports whether the policy was never set.
func (p StatusPolicy) IsZero() bool {
	return p.kind == statusUnset
}

func (p StatusPolicy) String() string {
	switch p.kind {
	case statusExact:
		return fmt.Sprintf("exact %d", p.code)
	case statusPattern:
		return fmt.Sprintf("pattern %s", p.pattern.String())
	case statusPredicate:
		return "predicate"
	}
	return "default"
}

// toStatusPolicy converts the accepted argument shapes of SetAllowedStatusCode.
func toStatusPolicy(spec interface{}) (StatusPolicy, error) {
	switch v := spec.(type) {
	case int:
		return ExactStatus(v), nil
	case *regexp.Regexp:
		if v == nil {
			break
		}
		return PatternStatus(v), nil
	case string:
		re, err := regexp.Compile(v)
		if err != nil {
			return StatusPolicy{}, &RequestError{
				Kind:    KindInvalidArgument,
				Message: fmt.Sprintf("Invalid status pattern %q", v),
				Cause:   err,
			}
		}
		return PatternStatus(re), nil
	case func(int) bool:
		if v == nil {
			break
		}
		return PredicateStatus(v), nil
	case StatusPolicy:
		if v.IsZero() {
			break
		}
		return v, nil
	}
	return StatusPolicy{}, invalidArgument("Expected a number, a regex or a function in SetAllowedStatusCode")
}
