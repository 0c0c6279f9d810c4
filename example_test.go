package htmlcleaner_test

import (
	"fmt"

	"github.com/umb/htmlcleaner"
)

func ExampleSanitize() {
	w := &htmlcleaner.Whitelist{Tags: []string{"b", "i"}}
	clean, _ := htmlcleaner.Sanitize(`<b>Hello</b> <script>alert('xss')</script>`, w)
	fmt.Println(clean)
	// Output: <b>Hello</b>
}

func ExampleCleaner_Clean() {
	w := &htmlcleaner.Whitelist{Tags: []string{"div", "b"}}
	c, _ := htmlcleaner.New(w)

	doc, _, _ := htmlcleaner.ParseBodyFragment(`<div title="x"><script>alert(1)</script><b>ok</b></div>`)
	res, _ := c.Clean(doc)

	body, _ := res.BodyHTML()
	fmt.Println(body)
	fmt.Println(len(res.RemovedNodes()), len(res.RemovedAttributes()))
	// Output:
	// <div><b>ok</b></div>
	// 2 1
}

func ExampleCleaner_IsValidBodyHTML() {
	w := &htmlcleaner.Whitelist{Tags: []string{"b"}}
	c, _ := htmlcleaner.New(w)

	wellFormed, _ := c.IsValidBodyHTML(`<b>ok</b>`)
	truncated, _ := c.IsValidBodyHTML(`<b>ok`)
	fmt.Println(wellFormed, truncated)
	// Output: true false
}

func ExampleSanitize_enforcedAttributes() {
	w := &htmlcleaner.Whitelist{
		Tags:           []string{"a"},
		Attributes:     map[string][]string{"a": {"href"}},
		AllowedSchemes: []string{"https"},
		Enforced:       map[string]map[string]string{"a": {"rel": "nofollow"}},
	}
	clean, _ := htmlcleaner.Sanitize(`<a href="https://example.com">link</a>`, w)
	fmt.Println(clean)
	// Output: <a href="https://example.com" rel="nofollow">link</a>
}

func ExampleStripTags() {
	text, _ := htmlcleaner.StripTags(`<p>Hello <b>world</b></p>`)
	fmt.Println(text)
	// Output: Hello world
}
