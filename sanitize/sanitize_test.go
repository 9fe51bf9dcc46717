package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_StripsDeclarationsAndNonContent(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>Chapter</title>
  <meta charset="utf-8"/>
  <link rel="stylesheet" href="style.css"/>
  <style>p { color: red; }</style>
</head>
<body>
  <h1>Title</h1>
  <script>alert(1)</script>
  <p>Body text.</p>
</body>
</html>`

	got := Sanitize(raw)

	assert.NotContains(t, got, "<?xml")
	assert.NotContains(t, got, "DOCTYPE")
	assert.NotContains(t, got, "<script")
	assert.NotContains(t, got, "<style")
	assert.NotContains(t, got, "<meta")
	assert.NotContains(t, got, "<link")
	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, "<p>Body text.</p>")
}

func TestSanitize_HidesInternalImagesOnly(t *testing.T) {
	raw := `<body>
<img src="../images/fig1.png" alt="fig"/>
<img src="https://example.com/remote.png"/>
<img src="images/fig2.png" style="width: 10px; display: block"/>
</body>`

	got := Sanitize(raw)

	assert.Contains(t, got, `<img src="../images/fig1.png" alt="fig" style="display: none"/>`)
	assert.Contains(t, got, `<img src="https://example.com/remote.png"/>`)
	assert.Contains(t, got, `<img src="images/fig2.png" style="width: 10px; display: none"/>`)
}

func TestSanitize_HidesSVGImage(t *testing.T) {
	got := Sanitize(`<body><svg><image xlink:href="cover.jpg"></image></svg></body>`)
	assert.Contains(t, got, `display: none`)
	assert.Contains(t, got, `xlink:href="cover.jpg"`)
}

func TestSanitize_StripsEventHandlersAndUnsafeURIs(t *testing.T) {
	got := Sanitize(`<body><p onclick="steal()">x</p><a href="javascript:void(0)">y</a><a href="#n1">z</a></body>`)

	assert.NotContains(t, got, "onclick")
	assert.NotContains(t, got, "javascript:")
	assert.Contains(t, got, `<a href="#n1">z</a>`)
}

func TestSanitize_NoBodyContent(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
	assert.Equal(t, "", Sanitize(`<?xml version="1.0"?><html><head><title>x</title></head><body></body></html>`))
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text only",
		`<p>a</p><p>b</p>`,
		`<?xml version="1.0"?><!DOCTYPE html><html><head><title>t</title></head><body><p>x</p></body></html>`,
		`<body><img src="a.png" style="display:block;color:red"/><img src="http://x/y.png"/></body>`,
		`<body><table><tr><td>cell</td></tr>stray</table></body>`,
		`<body><p>unclosed <b>bold <i>both</p> tail</body>`,
		`<title>lead</title><p>after</p>`,
		`<noscript><p>fallback</p></noscript><p>rest</p>`,
		`<body><pre>
indented
</pre><!-- note --><?pi data?></body>`,
		`<body><svg><image href="c.jpg"/></svg><a href="vbscript:x" onmouseover="y">l</a></body>`,
		`<p>&lt;?not a pi?&gt; &amp; text</p>`,
		`<p>a</p><!-- <<?x?>?y?> -->`,
		`<iframe><<?x?>?y?></iframe>`,
		`<!-- <!DOC<!DOCTYPE x>TYPE y> -->`,
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		require.Equal(t, once, twice, "input %q", in)
	}
}

func TestWithDisplayNone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "display: none"},
		{"display:block", "display: none"},
		{"width: 1px;", "width: 1px; display: none"},
		{"width: 1px; DISPLAY : inline ; color: red", "width: 1px; color: red; display: none"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withDisplayNone(tt.in), "input %q", tt.in)
		assert.Equal(t, tt.want, withDisplayNone(withDisplayNone(tt.in)), "repeat %q", tt.in)
	}
}

func TestIsSafeURI(t *testing.T) {
	safe := []string{"", "#a", "ch1.xhtml", "../img/x.png", "https://a.b", "mailto:a@b", "data:image/png;base64,AAA"}
	unsafe := []string{"javascript:alert(1)", "vbscript:x", "data:text/html,<p>"}
	for _, s := range safe {
		assert.True(t, isSafeURI(s), s)
	}
	for _, s := range unsafe {
		assert.False(t, isSafeURI(s), s)
	}
	assert.True(t, strings.HasPrefix(withDisplayNone("a:b"), "a:b"))
}
