package htmlcleaner

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Policy decides what survives cleaning. It is consulted once per element
// tag, once per attribute, and once per element for mandated attributes.
// Implementations must be stateless (or at least immutable once built) so a
// single Policy can serve many concurrent cleaning passes.
type Policy interface {
	// IsSafeTag reports whether elements with the given tag name are
	// permitted in cleaned output. Tag names are passed in lower case.
	IsSafeTag(tag string) bool

	// IsSafeAttribute reports whether attr is permitted on the given source
	// element. Implementations may inspect the attribute value and the
	// element itself for contextual rules, such as URL scheme checks.
	IsSafeAttribute(tag string, el *html.Node, attr html.Attribute) bool

	// EnforcedAttributes returns attributes that must be present on every
	// cleaned element with the given tag, overriding anything the source
	// supplied. Returning nil means no attributes are mandated.
	EnforcedAttributes(tag string) []html.Attribute
}

// Whitelist is a rule-based Policy. Callers populate it with the tags and
// attributes they expect; everything else is removed.
//
// A Whitelist must not be mutated after first use.
type Whitelist struct {
	// Tags is the list of tag names (lower case) that are kept in output.
	Tags []string

	// Attributes maps tag names to the attribute names kept on that tag.
	// Use "*" as a key to allow attributes on every tag.
	Attributes map[string][]string

	// AllowedSchemes lists the URL schemes (e.g. "http", "https",
	// "mailto") permitted in href, src, and action attribute values. Any
	// URL whose scheme is not in this list fails IsSafeAttribute.
	// Relative URLs always pass.
	AllowedSchemes []string

	// Enforced maps tag names to attributes that are set on every cleaned
	// element of that tag, regardless of what the source carried.
	Enforced map[string]map[string]string
}

// IsSafeTag reports whether tag is in the Tags list. Matching is
// case-insensitive.
func (w *Whitelist) IsSafeTag(tag string) bool {
	for _, t := range w.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IsSafeAttribute reports whether attr is allowed on tag. URL-bearing
// attributes (href, src, action) additionally have their value checked
// against AllowedSchemes.
func (w *Whitelist) IsSafeAttribute(tag string, el *html.Node, attr html.Attribute) bool {
	key := strings.ToLower(attr.Key)
	if !attrAllowed(key, strings.ToLower(tag), w.Attributes) {
		return false
	}
	if key == "href" || key == "src" || key == "action" {
		return schemeAllowed(attr.Val, w.AllowedSchemes)
	}
	return true
}

// EnforcedAttributes returns the mandated attributes for tag in a stable
// (name-sorted) order.
func (w *Whitelist) EnforcedAttributes(tag string) []html.Attribute {
	vals := w.Enforced[strings.ToLower(tag)]
	if len(vals) == 0 {
		return nil
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]html.Attribute, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, html.Attribute{Key: k, Val: vals[k]})
	}
	return attrs
}

func attrAllowed(attr, tag string, allowed map[string][]string) bool {
	if list, ok := allowed["*"]; ok {
		for _, a := range list {
			if a == attr {
				return true
			}
		}
	}
	if list, ok := allowed[tag]; ok {
		for _, a := range list {
			if a == attr {
				return true
			}
		}
	}
	return false
}

func schemeAllowed(raw string, schemes []string) bool {
	raw = strings.TrimSpace(raw)
	// Decode HTML entities to prevent &#106;avascript: bypasses.
	decoded := decodeAttrEntities(raw)
	decoded = strings.ToLower(strings.TrimSpace(decoded))

	// Strip zero-width / control chars that can confuse parsers.
	decoded = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, decoded)

	u, err := url.Parse(decoded)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		// Relative URL — allow.
		return true
	}
	for _, s := range schemes {
		if strings.EqualFold(s, u.Scheme) {
			return true
		}
	}
	return false
}

// decodeAttrEntities decodes entity tricks used to smuggle schemes
// (&#x6A; etc.) by wrapping the value in an attribute and letting the
// parser decode it.
func decodeAttrEntities(s string) string {
	fragment := "<a href=\"" + s + "\">"
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return s
	}
	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					found = a.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if found != "" {
		return found
	}
	return s
}
