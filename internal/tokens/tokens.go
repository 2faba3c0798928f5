// SPDX-License-Identifier: MIT

// Package tokens implements the first tier of the parsing utilities: a
// regex-driven tokenizer that splits raw input into a flat sequence of
// payload-carrying tokens.
//
// This is not a high-throughput lexer; it is meant for small ad-hoc formats
// such as logical formulas and model descriptions. Rules are matched in
// declaration order, so more specific rules must come first; no ambiguity
// checking is performed.
package tokens

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Token is a fragment of input text labeled with payload data.
type Token[P any] struct {
	// StartsAt is the byte offset of the token in the original input.
	StartsAt int
	// Data is the matched text.
	Data string
	// Payload carries rule-specific data constructed from the match.
	Payload P
}

// Error describes a position in the input that no rule could match.
type Error struct {
	Position int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("position %d: %s", e.Position, e.Message)
}

func newError(data string, position int) *Error {
	r, _ := utf8.DecodeRuneInString(data[position:])
	return &Error{
		Position: position,
		Message:  fmt.Sprintf("unexpected character %q", r),
	}
}

// Rule matches one kind of token: an anchored regular expression plus a
// factory that builds the token payload from the regex submatches.
type Rule[P any] struct {
	re      *regexp.Regexp
	factory func(match []string) P
}

// NewRule compiles a token rule. The pattern is anchored at the start of
// the inspected position; the factory receives the full submatch slice
// (index 0 is the whole match). Panics when the pattern does not compile,
// mirroring regexp.MustCompile: rules are static program data.
func NewRule[P any](pattern string, factory func(match []string) P) Rule[P] {
	return Rule[P]{
		re:      regexp.MustCompile("^(?:" + pattern + ")"),
		factory: factory,
	}
}

// Const builds a rule whose payload does not depend on the matched text.
func Const[P any](pattern string, payload P) Rule[P] {
	return NewRule(pattern, func([]string) P { return payload })
}

// TryMatch attempts to match the rule at the start of data. On success it
// returns the submatches and the constructed payload.
func (r Rule[P]) TryMatch(data string) (match []string, payload P, ok bool) {
	match = r.re.FindStringSubmatch(data)
	if match == nil {
		var zero P
		return nil, zero, false
	}
	return match, r.factory(match), true
}

// Tokenizer transforms an input string into a sequence of tokens using an
// ordered list of rules, optionally skipping input matched by an ignore
// pattern (whitespace, comments and similar non-semantic content).
type Tokenizer[P any] struct {
	ignore *regexp.Regexp
	rules  []Rule[P]
}

// New creates a tokenizer with a custom ignore pattern. The pattern is
// anchored; it may match repeatedly between tokens (consecutive comments).
func New[P any](ignore string, rules []Rule[P]) *Tokenizer[P] {
	return &Tokenizer[P]{
		ignore: regexp.MustCompile("^(?:" + ignore + ")"),
		rules:  rules,
	}
}

// IgnoringWhitespace creates a tokenizer that skips whitespace between
// tokens.
func IgnoringWhitespace[P any](rules []Rule[P]) *Tokenizer[P] {
	return New(`\s+`, rules)
}

// IgnoreNothing creates a tokenizer that matches every character of the
// input.
func IgnoreNothing[P any](rules []Rule[P]) *Tokenizer[P] {
	return &Tokenizer[P]{rules: rules}
}

// Read splits data into tokens, failing on the first position where no rule
// matches.
func (t *Tokenizer[P]) Read(data string) ([]Token[P], error) {
	var out []Token[P]
	position := t.skipIgnored(data, 0)
	for position < len(data) {
		next, ok := t.matchToken(data, position, &out)
		if !ok {
			return nil, newError(data, position)
		}
		position = next
	}
	return out, nil
}

// ReadWithRecovery tokenizes data, recovering after unmatched characters.
// For each consecutive run of unmatched characters exactly one Error is
// emitted, and scanning resumes at the next position where a rule matches.
func (t *Tokenizer[P]) ReadWithRecovery(data string) ([]Token[P], []Error) {
	var out []Token[P]
	var errs []Error
	position := t.skipIgnored(data, 0)
	recovering := false
	for position < len(data) {
		next, ok := t.matchToken(data, position, &out)
		if ok {
			recovering = false
			position = next
			continue
		}
		if !recovering {
			errs = append(errs, *newError(data, position))
		}
		recovering = true
		_, width := utf8.DecodeRuneInString(data[position:])
		position = t.skipIgnored(data, position+width)
	}
	return out, errs
}

// matchToken tries all rules at the given position and appends the matched
// token, returning the position to continue from (ignored input skipped).
func (t *Tokenizer[P]) matchToken(data string, position int, out *[]Token[P]) (int, bool) {
	for _, rule := range t.rules {
		match, payload, ok := rule.TryMatch(data[position:])
		if !ok {
			continue
		}
		*out = append(*out, Token[P]{
			StartsAt: position,
			Data:     match[0],
			Payload:  payload,
		})
		return t.skipIgnored(data, position+len(match[0])), true
	}
	return 0, false
}

// skipIgnored moves position past any input matched by the ignore pattern.
func (t *Tokenizer[P]) skipIgnored(data string, position int) int {
	if t.ignore == nil {
		return position
	}
	for position < len(data) {
		loc := t.ignore.FindStringIndex(data[position:])
		if loc == nil || loc[1] == 0 {
			break
		}
		position += loc[1]
	}
	return position
}
