package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWithoutNumberShowsPlaceholder(t *testing.T) {
	r, err := NewLetterRenderer()
	require.NoError(t, err)

	html, err := r.Render(map[string]interface{}{"nama": "Budi"}, nil, "")
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Nomor: ________")
	assert.Contains(t, out, "Budi")
	assert.NotContains(t, out, "<img")
}

func TestRenderMergesNumberAndSignature(t *testing.T) {
	r, err := NewLetterRenderer()
	require.NoError(t, err)

	number := "007/E-OFF/PKL/VIII/2026"
	html, err := r.Render(map[string]interface{}{"nama": "Budi"}, &number, "http://files.test/signatures/sig.png")
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Nomor: 007/E-OFF/PKL/VIII/2026")
	assert.Contains(t, out, `<img src="http://files.test/signatures/sig.png"`)
}

func TestRenderSortsFieldsDeterministically(t *testing.T) {
	r, err := NewLetterRenderer()
	require.NoError(t, err)

	values := map[string]interface{}{
		"tujuan":  "PT Maju",
		"nama":    "Budi",
		"periode": "Agustus",
	}

	first, err := r.Render(values, nil, "")
	require.NoError(t, err)
	second, err := r.Render(values, nil, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	out := string(first)
	assert.Less(t, strings.Index(out, "nama"), strings.Index(out, "periode"))
	assert.Less(t, strings.Index(out, "periode"), strings.Index(out, "tujuan"))
}

func TestRenderEscapesValues(t *testing.T) {
	r, err := NewLetterRenderer()
	require.NoError(t, err)

	html, err := r.Render(map[string]interface{}{"nama": "<script>alert(1)</script>"}, nil, "")
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
}
