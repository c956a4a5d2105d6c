package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegexClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"builder div", `<div class="elementor-widget">x</div><p>keep</p>`, "<p>keep</p>"},
		{"empty paragraph", "<p>a</p><p>  </p>", "<p>a</p>"},
		{"shortcode", `[gallery ids="1,2"]<p>text</p>[/gallery]`, "<p>text</p>"},
		{"entities", "<p>Tom &amp; Jerry&#8217;s</p>", "<p>Tom & Jerry’s</p>"},
		{"trim", "  <p>x</p>\n", "<p>x</p>"},
		{"malformed kept", "<p>unclosed <b>bold", "<p>unclosed <b>bold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Regex{}.Clean(tt.in))
		})
	}
}

func TestTreeCleanUnwrapsBuilderContainers(t *testing.T) {
	in := `<div class="elementor elementor-42"><div class="elementor-widget-container"><p>Hello</p></div></div><p></p>`
	require.Equal(t, "<p>Hello</p>", Tree{}.Clean(in))
}

func TestTreeCleanKeepsLookalikeClasses(t *testing.T) {
	in := `<div class="not-elementor-ish">body</div>`
	require.Equal(t, in, Tree{}.Clean(in))
	require.Equal(t, "", Regex{}.Clean(in))
}

func TestTreeCleanStripsShortcodes(t *testing.T) {
	require.Equal(t, "<p>a b</p>", Tree{}.Clean(`<p>a [caption]b</p>`))
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "Hello world & friends", StripTags("<p>Hello <b>world</b>\n &amp; friends</p>"))
	require.Equal(t, "", StripTags("   "))
}

func TestNew(t *testing.T) {
	s, err := New("tree")
	require.NoError(t, err)
	require.IsType(t, Tree{}, s)
	s, err = New("")
	require.NoError(t, err)
	require.IsType(t, Regex{}, s)
	_, err = New("bogus")
	require.Error(t, err)
}
