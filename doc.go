// Package htmlcleaner sanitizes untrusted, parsed HTML trees against a
// caller-supplied policy and reports everything it removed.
//
// # Overview
//
// htmlcleaner takes a document parsed with golang.org/x/net/html, walks
// its body, and builds a new document containing only the elements,
// attributes, and content the [Policy] permits. The untrusted input tree
// is never modified. Every node and attribute that does not make it into
// the output is recorded in the returned [CleaningResult], so callers can
// audit exactly what was stripped — or use [Cleaner.IsValid] to treat any
// removal as a validation failure.
//
// # Policies
//
// A [Policy] answers three questions for the cleaner:
//   - Is an element tag permitted? ([Policy.IsSafeTag])
//   - Is an attribute permitted on a given element, considering its value? ([Policy.IsSafeAttribute])
//   - Which attributes must be forced onto a tag regardless of input? ([Policy.EnforcedAttributes])
//
// [Whitelist] is the standard rule-based implementation: allowed tags,
// per-tag allowed attributes, a URL scheme allow list for href/src/action
// values, and enforced attributes per tag. No canned rule sets are
// shipped; callers declare exactly the markup they expect.
//
// # Cleaning behavior
//
// Disallowed elements are unwrapped, not deleted: the element itself is
// removed and recorded, but its children are re-attached under the
// nearest kept ancestor. Text is always preserved. Raw payloads (script
// and style bodies) are preserved only when their own parent tag is
// allowed. Comments, doctypes, and processing instructions never survive.
// Hostile input is never an error; cleaning always produces a result.
//
// # Security
//
// htmlcleaner defends against common XSS vectors including:
//   - Script injection via <script> tags and orphaned script payloads
//   - Event handler attributes (onclick, onerror, etc.) — simply never allow them
//   - javascript: and data: URL schemes (including entity-encoded forms)
//   - Content smuggled into the document head (rejected by [Cleaner.IsValid])
//
// # Thread Safety
//
// A Cleaner holds no per-call state and is safe for concurrent use, as
// long as its Policy is immutable. Each call produces its own
// CleaningResult and output tree.
//
// # Example
//
//	w := &htmlcleaner.Whitelist{Tags: []string{"p", "b", "i"}}
//	clean, err := htmlcleaner.Sanitize(userInput, w)
package htmlcleaner
