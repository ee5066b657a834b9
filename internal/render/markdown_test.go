package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML(t *testing.T) {
	m := NewMarkdown()

	out, err := m.ToHTML("**bold** and `code`")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<code>code</code>")

	out, err = m.ToHTML("```go\nfmt.Println(1)\n```")
	require.NoError(t, err)
	assert.Contains(t, out, `<pre><code class="language-go">`)

	out, err = m.ToHTML("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")

	out, err = m.ToHTML("~~gone~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<del>gone</del>")
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out, err := NewMarkdown().ToHTML("<script>alert(1)</script>\n\nhi")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<p>hi</p>")
}
