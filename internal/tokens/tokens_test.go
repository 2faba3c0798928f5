// SPDX-License-Identifier: MIT

package tokens

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	kind  string
	key   string
	value string
}

func makeRules() []Rule[payload] {
	return []Rule[payload]{
		Const(`\(`, payload{kind: "par-open"}),
		Const(`\)`, payload{kind: "par-close"}),
		Const(`!`, payload{kind: "neg"}),
		Const(`¬`, payload{kind: "neg"}),
		Const(`&`, payload{kind: "and"}),
		Const(`\|`, payload{kind: "or"}),
		Const(`\s`, payload{kind: "whitespace"}),
		NewRule(`([a-z]+):([a-z]+)`, func(m []string) payload {
			return payload{kind: "key-value", key: m[1], value: m[2]}
		}),
		NewRule(`[a-zA-Z_]+`, func(m []string) payload {
			return payload{kind: "identifier", value: m[0]}
		}),
	}
}

func TestTokenizerSimple(t *testing.T) {
	tokenizer := IgnoringWhitespace(makeRules())

	tks, err := tokenizer.Read("(a & ¬b) & !hello:world")
	require.NoError(t, err)
	require.Len(t, tks, 9)

	assert.Equal(t, "par-open", tks[0].Payload.kind)
	assert.Equal(t, payload{kind: "identifier", value: "a"}, tks[1].Payload)
	assert.Equal(t, "and", tks[2].Payload.kind)
	assert.Equal(t, "neg", tks[3].Payload.kind)
	assert.Equal(t, payload{kind: "identifier", value: "b"}, tks[4].Payload)
	assert.Equal(t, "par-close", tks[5].Payload.kind)
	assert.Equal(t, "and", tks[6].Payload.kind)
	assert.Equal(t, "neg", tks[7].Payload.kind)
	assert.Equal(t, payload{kind: "key-value", key: "hello", value: "world"}, tks[8].Payload)
}

func TestTokenizerIgnoresComments(t *testing.T) {
	tokenizer := New(`\s+|#.*\n`, []Rule[int]{
		Const(`\+`, 0),
		Const(`\*`, 0),
		NewRule(`-?\d+`, func(m []string) int {
			v, _ := strconv.Atoi(m[0])
			return v
		}),
	})

	tks, err := tokenizer.Read("3 + 4 # line comment\n\t\t * 5")
	require.NoError(t, err)
	require.Len(t, tks, 5)
	assert.Equal(t, "3", tks[0].Data)
	assert.Equal(t, "+", tks[1].Data)
	assert.Equal(t, "4", tks[2].Data)
	assert.Equal(t, "*", tks[3].Data)
	assert.Equal(t, "5", tks[4].Data)
	assert.Equal(t, 3, tks[0].Payload)
	assert.Equal(t, 5, tks[4].Payload)
}

func TestTokenizerIgnoreNothing(t *testing.T) {
	tokenizer := IgnoreNothing(makeRules())

	tks, err := tokenizer.Read("(a & ¬b) & !hello:world")
	require.NoError(t, err)
	require.Len(t, tks, 13)
	assert.Equal(t, "whitespace", tks[2].Payload.kind)
	assert.Equal(t, "whitespace", tks[4].Payload.kind)
	assert.Equal(t, payload{kind: "key-value", key: "hello", value: "world"}, tks[12].Payload)
}

func TestTokenizerError(t *testing.T) {
	tokenizer := IgnoringWhitespace(makeRules())

	_, err := tokenizer.Read("(a - b)")
	require.Error(t, err)
	var tokErr *Error
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, 3, tokErr.Position)
}

func TestTokenizerRecovery(t *testing.T) {
	tokenizer := IgnoringWhitespace(makeRules())

	tks, errs := tokenizer.ReadWithRecovery("!a + b:c ... |z)")
	require.Len(t, tks, 6)
	assert.Equal(t, "neg", tks[0].Payload.kind)
	assert.Equal(t, payload{kind: "identifier", value: "a"}, tks[1].Payload)
	assert.Equal(t, payload{kind: "key-value", key: "b", value: "c"}, tks[2].Payload)
	assert.Equal(t, "or", tks[3].Payload.kind)
	assert.Equal(t, payload{kind: "identifier", value: "z"}, tks[4].Payload)
	assert.Equal(t, "par-close", tks[5].Payload.kind)

	// one error per consecutive run of unmatched characters
	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Position)
	assert.Equal(t, 9, errs[1].Position)
}

func TestTokenizerTokenOffsets(t *testing.T) {
	tokenizer := IgnoringWhitespace(makeRules())

	tks, err := tokenizer.Read("  a & b")
	require.NoError(t, err)
	require.Len(t, tks, 3)
	assert.Equal(t, 2, tks[0].StartsAt)
	assert.Equal(t, 4, tks[1].StartsAt)
	assert.Equal(t, 6, tks[2].StartsAt)
}
