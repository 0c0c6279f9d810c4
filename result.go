package htmlcleaner

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RemovedAttribute records an attribute that was dropped from an element
// which itself survived cleaning, together with the source element that
// carried it.
type RemovedAttribute struct {
	Element *html.Node
	Attr    html.Attribute
}

// CleaningResult describes one cleaning pass: the cleaned document and
// everything that was discarded on the way. Removed nodes and attributes
// are recorded in discovery order. The nodes in RemovedNodes point into
// the untrusted source tree and must be treated as read-only.
//
// A CleaningResult belongs to the single pass that produced it and must
// not be shared across concurrent cleans.
type CleaningResult struct {
	removedNodes      []*html.Node
	removedAttributes []RemovedAttribute
	cleanedDocument   *html.Node
}

// Document returns the cleaned document produced by the pass.
func (r *CleaningResult) Document() *html.Node { return r.cleanedDocument }

// RemovedNodes returns all nodes from the source tree that produced no
// counterpart in the cleaned output.
func (r *CleaningResult) RemovedNodes() []*html.Node { return r.removedNodes }

// RemovedAttributes returns all attributes removed from elements that
// were themselves kept.
func (r *CleaningResult) RemovedAttributes() []RemovedAttribute { return r.removedAttributes }

// Clean reports whether the pass discarded nothing, i.e. the source body
// was already fully acceptable to the policy.
func (r *CleaningResult) Clean() bool {
	return len(r.removedNodes)+len(r.removedAttributes) == 0
}

// BodyHTML renders the inner HTML of the cleaned document's body.
func (r *CleaningResult) BodyHTML() (string, error) {
	body := findElement(r.cleanedDocument, atom.Body)
	if body == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
