package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreviewMessage(t *testing.T) {
	t.Run("short message in full", func(t *testing.T) {
		assert.Equal(t, "hello\n", previewMessage("hello", false))
	})

	t.Run("verbose shows everything", func(t *testing.T) {
		long := strings.Repeat("x", 1000)
		assert.Equal(t, long+"\n", previewMessage(long, true))
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		// 'é' is two bytes, so a byte cut at 200 would land mid-rune.
		long := "a" + strings.Repeat("é", 600) + "z"
		out := previewMessage(long, false)

		assert.True(t, utf8.ValidString(out))
		assert.Contains(t, out, "[202 more characters]")
		assert.True(t, strings.HasPrefix(out, "a"+strings.Repeat("é", 199)+"\n"))
		assert.Contains(t, out, strings.Repeat("é", 199)+"z\n")
	})

	t.Run("length counted in runes", func(t *testing.T) {
		// 400 runes, 800 bytes: short enough to print whole.
		msg := strings.Repeat("é", 400)
		assert.Equal(t, msg+"\n", previewMessage(msg, false))
	})
}
