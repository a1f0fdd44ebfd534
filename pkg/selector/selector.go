// Package selector extracts values from HTML responses with CSS selectors
// and XPath expressions.
package selector

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// Selection is a set of matched nodes. Query methods return a new
// Selection; an error sticks to every Selection derived from it.
type Selection struct {
	nodes []*html.Node
	err   error
}

// Parse parses an HTML document and selects its root.
func Parse(body string) *Selection {
	root, err := htmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return &Selection{err: fmt.Errorf("parsing HTML: %w", err)}
	}
	return &Selection{nodes: []*html.Node{root}}
}

// CSS selects descendants of the current nodes matching selector.
func (s *Selection) CSS(selector string) *Selection {
	if s.err != nil {
		return s
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return &Selection{err: fmt.Errorf("invalid CSS selector: %v", err)}
	}
	return s.css(sel)
}

func (s *Selection) css(sel cascadia.Selector) *Selection {
	if s.err != nil {
		return s
	}
	var results []*html.Node
	for _, node := range s.nodes {
		results = append(results, cascadia.QueryAll(node, sel)...)
	}
	return &Selection{nodes: results}
}

// XPath selects nodes matching expr relative to the current nodes.
func (s *Selection) XPath(expr string) *Selection {
	if s.err != nil {
		return s
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return &Selection{err: fmt.Errorf("invalid XPath expression: %v", err)}
	}
	return s.xpath(compiled)
}

func (s *Selection) xpath(expr *xpath.Expr) *Selection {
	if s.err != nil {
		return s
	}
	var results []*html.Node
	for _, node := range s.nodes {
		results = append(results, htmlquery.QuerySelectorAll(node, expr)...)
	}
	return &Selection{nodes: results}
}

// First narrows the selection to its first node.
func (s *Selection) First() *Selection {
	if s.err != nil || len(s.nodes) == 0 {
		return s
	}
	return &Selection{nodes: s.nodes[:1]}
}

// Len returns the number of matched nodes.
func (s *Selection) Len() int {
	return len(s.nodes)
}

// Err returns the first error met while building the selection.
func (s *Selection) Err() error {
	return s.err
}

// Texts returns the trimmed inner text of each node.
func (s *Selection) Texts() ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	texts := make([]string, len(s.nodes))
	for i, node := range s.nodes {
		texts[i] = strings.TrimSpace(htmlquery.InnerText(node))
	}
	return texts, nil
}

// Text joins the texts of all nodes with newlines.
func (s *Selection) Text() (string, error) {
	texts, err := s.Texts()
	if err != nil {
		return "", err
	}
	return strings.Join(texts, "\n"), nil
}

// Attr returns the named attribute of the first node.
func (s *Selection) Attr(name string) (string, bool) {
	if s.err != nil || len(s.nodes) == 0 {
		return "", false
	}
	for _, attr := range s.nodes[0].Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// HTML renders the matched nodes, one per line.
func (s *Selection) HTML() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	var buf bytes.Buffer
	for i, node := range s.nodes {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// CSSField returns a response transformer storing the texts matched by
// selector under Fields[name]. The selector is compiled once, here.
func CSSField(name, selector string) (yeahttp.ResponseTransformer, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid CSS selector: %v", err)
	}
	return yeahttp.FieldTransformer(name, func(resp *yeahttp.Response) (interface{}, error) {
		return Parse(resp.Body).css(sel).Texts()
	}), nil
}

// XPathField is CSSField for an XPath expression.
func XPathField(name, expr string) (yeahttp.ResponseTransformer, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %v", err)
	}
	return yeahttp.FieldTransformer(name, func(resp *yeahttp.Response) (interface{}, error) {
		return Parse(resp.Body).xpath(compiled).Texts()
	}), nil
}
