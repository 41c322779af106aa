package markdown_test

import (
	"testing"

	"taskboard/internal/markdown"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := markdown.New()

	out, err := r.Render("# Plan\n\n- [x] draft\n- [ ] review")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Plan</h1>")
	assert.Contains(t, out, `type="checkbox"`)
}

func TestRender_DropsRawHTML(t *testing.T) {
	out, err := markdown.New().Render("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRender_Empty(t *testing.T) {
	out, err := markdown.New().Render("")
	require.NoError(t, err)
	assert.Empty(t, out)
}
