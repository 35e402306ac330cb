package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/markdown"
)

func TestRender(t *testing.T) {
	r := markdown.New()

	t.Run("basic formatting", func(t *testing.T) {
		out, err := r.Render("**update** posted")
		require.NoError(t, err)
		assert.Contains(t, out, "<strong>update</strong>")
	})

	t.Run("hard wraps", func(t *testing.T) {
		out, err := r.Render("line one\nline two")
		require.NoError(t, err)
		assert.Contains(t, out, "<br")
	})

	t.Run("autolink", func(t *testing.T) {
		out, err := r.Render("see https://example.com/project/1")
		require.NoError(t, err)
		assert.Contains(t, out, `<a href="https://example.com/project/1"`)
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := r.Render("")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
