package sanitizer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// youtubeEmbed matches the only iframe sources editor content may carry.
var youtubeEmbed = regexp.MustCompile(`^https://www\.youtube(-nocookie)?\.com/embed/[A-Za-z0-9_-]+`)

// HTMLSanitizer removes dangerous HTML elements and attributes.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer for foreign HTML such as fetched web
// pages. It uses the UGC policy: common formatting, links, images and tables
// survive; scripts, event handlers and javascript: URLs do not.
func NewHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.UGCPolicy()}
}

// NewContentSanitizer creates a sanitizer that also keeps the markup the
// editor itself produces: task lists, math, mentions, emoji, highlight
// colors and YouTube embeds.
func NewContentSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("data-type").Matching(regexp.MustCompile(`^(taskList|taskItem|inline-math|block-math|mention|emoji)$`)).OnElements("ul", "li", "span", "div")
	policy.AllowAttrs("data-checked").Matching(regexp.MustCompile(`^(true|false)$`)).OnElements("li")
	policy.AllowAttrs("data-latex").OnElements("span", "div")
	policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")
	policy.AllowAttrs("data-id", "data-label", "data-name").OnElements("span")
	policy.AllowAttrs("data-color").OnElements("mark")
	policy.AllowAttrs("data-youtube-video").OnElements("div")
	policy.AllowElements("mark", "u", "s")
	policy.AllowStyles("color").OnElements("span")
	policy.AllowAttrs("src").Matching(youtubeEmbed).OnElements("iframe")
	policy.AllowElements("iframe")
	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer strips all HTML.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns html with everything outside the policy removed.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
