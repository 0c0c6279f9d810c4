package htmlcleaner

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseError describes one syntax problem found while scanning markup.
type ParseError struct {
	// Offset is the byte position in the input where the problem was
	// detected.
	Offset  int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
}

// maxTrackedErrors caps how many errors CheckForParseErrors collects for
// a single input.
const maxTrackedErrors = 64

// CheckForParseErrors scans markup as a body fragment and returns the
// syntax problems found, up to an internal cap. The underlying parser is
// error-tolerant and will still produce a tree for any input; a non-empty
// list means the input needed error recovery, which IsValidBodyHTML
// treats as invalid.
func CheckForParseErrors(fragment string) []ParseError {
	return scanParseErrors(fragment, maxTrackedErrors)
}

// eofClosable lists elements that may legally remain open when the input
// ends; anything else still open at EOF is a parse error.
var eofClosable = map[string]bool{
	"body": true, "dd": true, "dt": true, "html": true, "li": true,
	"optgroup": true, "option": true, "p": true, "rb": true, "rp": true,
	"rt": true, "rtc": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "tr": true,
}

// impliedEnd lists elements whose end tags may be implied by surrounding
// markup; closing one of these implicitly is not an error.
var impliedEnd = map[string]bool{
	"caption": true, "colgroup": true, "dd": true, "dt": true, "li": true,
	"optgroup": true, "option": true, "p": true, "rb": true, "rp": true,
	"rt": true, "rtc": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "tr": true,
}

// literalTextTags are elements whose content the tokenizer consumes as
// text, where a literal '<' is not an error.
var literalTextTags = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "textarea": true,
	"title": true, "xmp": true,
}

// scanParseErrors tokenizes src and records malformed constructs, up to
// max errors. It tracks open elements so it can flag stray end tags,
// misnested elements, and elements left open at EOF.
func scanParseErrors(src string, max int) []ParseError {
	var errs []ParseError
	add := func(off int, msg string) bool {
		if len(errs) >= max {
			return false
		}
		errs = append(errs, ParseError{Offset: off, Message: msg})
		return true
	}

	tz := html.NewTokenizer(strings.NewReader(src))
	var open []string
	offset := 0
	for len(errs) < max {
		tt := tz.Next()
		rawLen := len(tz.Raw())

		switch tt {
		case html.ErrorToken:
			if err := tz.Err(); err != io.EOF {
				add(offset, err.Error())
				return errs
			}
			for i := len(open) - 1; i >= 0; i-- {
				if !eofClosable[open[i]] {
					if !add(offset, "unexpected end of input: unclosed element <"+open[i]+">") {
						break
					}
				}
			}
			return errs

		case html.TextToken:
			inLiteral := len(open) > 0 && literalTextTags[open[len(open)-1]]
			if !inLiteral {
				if i := strings.IndexByte(string(tz.Raw()), '<'); i >= 0 {
					add(offset+i, "unescaped '<' in character data")
				}
			}

		case html.StartTagToken:
			name, _ := tz.TagName()
			if tag := string(name); !isVoidElement(tag) {
				open = append(open, tag)
			}

		case html.EndTagToken:
			name, _ := tz.TagName()
			tag := string(name)
			idx := -1
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tag {
					idx = i
					break
				}
			}
			if idx < 0 {
				add(offset, "stray end tag </"+tag+">")
				break
			}
			for i := len(open) - 1; i > idx; i-- {
				if !impliedEnd[open[i]] {
					add(offset, "misnested element: <"+open[i]+"> closed by </"+tag+">")
				}
			}
			open = open[:idx]

		case html.CommentToken:
			r := string(tz.Raw())
			switch {
			case !strings.HasPrefix(r, "<!--"):
				add(offset, "bogus comment")
			case !strings.HasSuffix(r, "-->"):
				add(offset, "unexpected end of input: unterminated comment")
			}

		case html.DoctypeToken:
			add(offset, "unexpected doctype in body fragment")
		}

		offset += rawLen
	}
	return errs
}
