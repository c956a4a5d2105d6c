// Package sanitize cleans WordPress rendered HTML before it is stored.
package sanitize

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	KindRegex = "regex"
	KindTree  = "tree"
)

// Sanitizer removes page builder wrappers, empty paragraphs and shortcodes.
// Clean never fails; input it cannot make sense of is returned mostly as is.
type Sanitizer interface {
	Clean(s string) string
}

func New(kind string) (Sanitizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindRegex:
		return Regex{}, nil
	case KindTree:
		return Tree{}, nil
	default:
		return nil, fmt.Errorf("unknown sanitizer: %s", kind)
	}
}

var (
	builderDivRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*elementor[^"]*"[^>]*>.*?</div>`)
	emptyParaRe  = regexp.MustCompile(`(?i)<p>\s*</p>`)
	shortcodeRe  = regexp.MustCompile(`\[([^\]]+)\]`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// Regex is the pattern based cleaner. A builder div is dropped up to its
// first closing tag, so nested markup can be cut short.
type Regex struct{}

func (Regex) Clean(s string) string {
	if s == "" {
		return ""
	}
	s = builderDivRe.ReplaceAllString(s, "")
	s = emptyParaRe.ReplaceAllString(s, "")
	s = shortcodeRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

// Tree parses the fragment and unwraps builder containers instead of
// deleting them, so the content they hold survives.
type Tree struct{}

func (Tree) Clean(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return Regex{}.Clean(s)
	}
	body := doc.Find("body")
	body.Find("div").Each(func(_ int, sel *goquery.Selection) {
		if hasBuilderClass(sel.AttrOr("class", "")) {
			sel.ReplaceWithSelection(sel.Contents())
		}
	})
	body.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() == 0 && strings.TrimSpace(sel.Text()) == "" {
			sel.Remove()
		}
	})
	out, err := body.Html()
	if err != nil {
		return Regex{}.Clean(s)
	}
	out = shortcodeRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func hasBuilderClass(class string) bool {
	for _, name := range strings.Fields(class) {
		if name == "elementor" || strings.HasPrefix(name, "elementor-") {
			return true
		}
	}
	return false
}

// StripTags returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed.
func StripTags(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var text string
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		text = html.UnescapeString(tagRe.ReplaceAllString(s, ""))
	} else {
		text = doc.Text()
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
