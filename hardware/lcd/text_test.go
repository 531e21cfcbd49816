package lcd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	t.Parallel()

	type Case struct {
		input  string
		expect []string
	}
	cases := []Case{
		{"", []string{}},
		{"abc", []string{"abc"}},
		{"abc\ndef", []string{"abc", "def"}},
		{"abc\ndef\nghi", []string{"abc", "def"}},
		{strings.Repeat("a", 17), []string{strings.Repeat("a", 16), "a"}},
		{strings.Repeat("a", 40), []string{strings.Repeat("a", 16), strings.Repeat("a", 16)}},
		{"\n\nthird", []string{}},
		{"ёжик ёжик ёжик ёжик", []string{"ёжик ёжик ёжик ё", "жик"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.expect, Chunks(c.input, Width), "input=%q", c.input)
	}
	assert.Nil(t, Chunks("abc", 0))
	assert.Nil(t, Chunks("abc", -1))
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	raw, err := NewTranslator("")
	require.NoError(t, err)
	b, err := raw.Translate("7.53 c")
	require.NoError(t, err)
	assert.Equal(t, []byte("7.53 c"), b)

	cp, err := NewTranslator("windows-1251")
	require.NoError(t, err)
	b, err = cp.Translate("ёж")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xb8, 0xe6}, b)

	_, err = NewTranslator("no-such-codepage")
	assert.Error(t, err)
}
