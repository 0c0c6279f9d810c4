package htmlcleaner

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Caller-contract errors. These indicate programmer misuse and are
// returned before any cleaning work starts; hostile input is never an
// error, it is recorded in the CleaningResult instead.
var (
	ErrNilPolicy   = errors.New("htmlcleaner: nil policy")
	ErrNilDocument = errors.New("htmlcleaner: nil document")
)

// Cleaner sanitizes parsed HTML documents against a Policy. It only ever
// reads the input tree; the cleaned output is built from fresh nodes.
//
// Input is assumed to be a body fragment: the clean methods pull from the
// source document's body only.
type Cleaner struct {
	policy Policy
}

// New returns a Cleaner that sanitizes documents using p.
func New(p Policy) (*Cleaner, error) {
	if p == nil {
		return nil, ErrNilPolicy
	}
	return &Cleaner{policy: p}, nil
}

// Clean creates a new document from the untrusted doc, containing only
// nodes and attributes the policy allows. doc is not modified; only its
// body is used. Everything discarded is recorded in the result.
func (c *Cleaner) Clean(doc *html.Node) (*CleaningResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	shell := createShell()
	res := &CleaningResult{}
	// Frameset documents have no body; the clean doc keeps an empty one.
	if body := findElement(doc, atom.Body); body != nil {
		c.copySafeNodes(body, findElement(shell, atom.Body), res)
	}
	res.cleanedDocument = shell
	return res, nil
}

// IsValid reports whether doc's body is already acceptable to the policy:
// cleaning it discards nothing and the document's head has no children.
// The head clause matters because cleaning only looks at the body; content
// smuggled into the head would otherwise pass unnoticed.
//
// An invalid document still cleans successfully via Clean.
func (c *Cleaner) IsValid(doc *html.Node) (bool, error) {
	res, err := c.Clean(doc)
	if err != nil {
		return false, err
	}
	head := findElement(doc, atom.Head)
	return res.Clean() && (head == nil || head.FirstChild == nil), nil
}

// IsValidBodyHTML reports whether the markup fragment parses without
// errors and cleans without discarding anything. A syntactically
// malformed fragment is never valid, even if its parseable portion would
// clean losslessly.
func (c *Cleaner) IsValidBodyHTML(fragment string) (bool, error) {
	errs := scanParseErrors(fragment, 1)
	dirty, err := parseBodyFragment(fragment)
	if err != nil {
		return false, err
	}
	shell := createShell()
	res := &CleaningResult{}
	c.copySafeNodes(findElement(dirty, atom.Body), findElement(shell, atom.Body), res)
	return res.Clean() && len(errs) == 0, nil
}

// Sanitize parses input as a body fragment, cleans it with p, and returns
// the cleaned body's inner HTML.
func Sanitize(input string, p Policy) (string, error) {
	c, err := New(p)
	if err != nil {
		return "", err
	}
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return "", err
	}
	res, err := c.Clean(doc)
	if err != nil {
		return "", err
	}
	return res.BodyHTML()
}

// StripTags removes all markup from input and returns the plain text.
// Raw payloads such as script and style bodies are not text and are
// dropped. Entity references are decoded.
func StripTags(input string) (string, error) {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && !isRawData(n) {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findElement(doc, atom.Body); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return sb.String(), nil
}

// ParseBodyFragment parses markup as body content and returns a full
// document with the fragment grafted into its body, together with any
// parse errors found in the markup. The error list is capped; a
// non-empty list means the markup is malformed, not that parsing failed.
func ParseBodyFragment(fragment string) (*html.Node, []ParseError, error) {
	doc, err := parseBodyFragment(fragment)
	if err != nil {
		return nil, nil, err
	}
	return doc, scanParseErrors(fragment, maxTrackedErrors), nil
}

// copySafeNodes walks src's children depth-first, reconstructing every
// policy-approved node under dest. src itself is a fixed container: it is
// never copied, discarded, or modified.
func (c *Cleaner) copySafeNodes(src, dest *html.Node, res *CleaningResult) {
	if src == nil || dest == nil {
		return
	}
	for child := src.FirstChild; child != nil; child = child.NextSibling {
		c.copyNode(child, dest, res)
	}
}

// copyNode classifies one source node and either copies it under dest or
// records it as removed. dest is the current append target; it advances
// only when descending into an element the policy accepts, so children of
// a rejected element are unwrapped into the nearest kept ancestor rather
// than deleted with their parent.
func (c *Cleaner) copyNode(src, dest *html.Node, res *CleaningResult) {
	switch {
	case src.Type == html.ElementNode:
		if tag := strings.ToLower(src.Data); c.policy.IsSafeTag(tag) {
			el := c.createSafeElement(src, res)
			dest.AppendChild(el)
			c.copySafeNodes(src, el, res)
		} else {
			res.removedNodes = append(res.removedNodes, src)
			c.copySafeNodes(src, dest, res)
		}
	case isRawData(src):
		// Raw payloads are kept only when their own parent tag is safe.
		// A safe ancestor further up is not enough: script content must
		// not survive merely because its container was unwrapped.
		parent := src.Parent
		if parent != nil && parent.Type == html.ElementNode && c.policy.IsSafeTag(strings.ToLower(parent.Data)) {
			dest.AppendChild(&html.Node{Type: src.Type, Data: src.Data})
		} else {
			res.removedNodes = append(res.removedNodes, src)
		}
	case src.Type == html.TextNode:
		// Text is always kept; only tags and attributes are filtered.
		dest.AppendChild(&html.Node{Type: html.TextNode, Data: src.Data})
	default:
		// Comments, doctypes, and anything else opaque never survive.
		res.removedNodes = append(res.removedNodes, src)
	}
}

// createSafeElement copies src's tag and policy-approved attributes into
// a fresh element, then overlays the policy's enforced attributes last so
// they win over anything the source supplied (or omitted).
func (c *Cleaner) createSafeElement(src *html.Node, res *CleaningResult) *html.Node {
	tag := strings.ToLower(src.Data)
	dest := &html.Node{Type: html.ElementNode, DataAtom: src.DataAtom, Data: tag}
	for _, attr := range src.Attr {
		if c.policy.IsSafeAttribute(tag, src, attr) {
			dest.Attr = append(dest.Attr, attr)
		} else {
			res.removedAttributes = append(res.removedAttributes, RemovedAttribute{Element: src, Attr: attr})
		}
	}
	for _, attr := range c.policy.EnforcedAttributes(tag) {
		SetAttr(dest, attr.Key, attr.Val)
	}
	return dest
}

// SetAttr sets (or adds) the attribute key=val on node n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// GetAttr returns the value of the named attribute on n, or "" if not
// present.
func GetAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// RemoveAttr removes the named attribute from n if present.
func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// --- helpers ---------------------------------------------------------

// rawDataTags are the elements whose text children are raw payloads:
// the renderer writes them verbatim, so they must never reach the output
// under an unapproved parent.
var rawDataTags = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}

// isRawData reports whether n carries a raw data payload: either an
// explicit raw node or a text node inside a raw-text element.
func isRawData(n *html.Node) bool {
	if n.Type == html.RawNode {
		return true
	}
	return n.Type == html.TextNode && n.Parent != nil &&
		n.Parent.Type == html.ElementNode && rawDataTags[strings.ToLower(n.Parent.Data)]
}

// createShell builds an empty <html><head></head><body></body></html>
// document for the cleaned output to be grafted onto.
func createShell() *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Html, Data: "html"}
	head := &html.Node{Type: html.ElementNode, DataAtom: atom.Head, Data: "head"}
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	doc.AppendChild(root)
	root.AppendChild(head)
	root.AppendChild(body)
	return doc
}

// parseBodyFragment parses markup in body context and grafts the parsed
// nodes into a fresh shell document's body.
func parseBodyFragment(fragment string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, err
	}
	doc := createShell()
	body := findElement(doc, atom.Body)
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return doc, nil
}

// findElement returns the first element matching a in a depth-first walk
// of n, or nil if none exists.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && (n.DataAtom == a || n.Data == a.String()) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r := findElement(c, a); r != nil {
			return r
		}
	}
	return nil
}

func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
