// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutil provides small permissive-HTML-parsing helpers shared
// by the room ingester, built on golang.org/x/net/html rather than a
// regex-based scraper, since the archived pages carry unclosed tags.
package htmlutil

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses r into an HTML document tree.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Text collects the visible text of n and its descendants, collapsing
// runs of whitespace to single spaces.
func Text(n *html.Node) string {
	var sb strings.Builder

	collectText(n, &sb)

	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp != "" {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}

// Attr returns the value of attribute key on n, or "" if absent.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// classes returns the whitespace-separated tokens of n's class attribute.
func classes(n *html.Node) map[string]bool {
	val, _ := Attr(n, "class")
	set := make(map[string]bool)

	for _, c := range strings.Fields(val) {
		set[c] = true
	}

	return set
}

// HasClasses reports whether n carries every class in want.
func HasClasses(n *html.Node, want ...string) bool {
	set := classes(n)

	for _, w := range want {
		if !set[w] {
			return false
		}
	}

	return true
}

// FindAll walks n's subtree collecting every element node named tag.
func FindAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node

	var walk func(*html.Node)

	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(n)

	return out
}

// FindFirst returns the first descendant element node named tag
// satisfying pred, depth-first, or nil if none matches.
func FindFirst(n *html.Node, tag string, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && (pred == nil || pred(n)) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := FindFirst(child, tag, pred); found != nil {
			return found
		}
	}

	return nil
}

// TableHasClassedCells reports whether table contains at least one
// descendant cell carrying every class in want — used to identify "the
// table that looks like a building/room listing" the way the source
// identifies it, by class fingerprint rather than position.
func TableHasClassedCells(table *html.Node, want ...string) bool {
	for _, tag := range []string{"td", "th"} {
		for _, cell := range FindAll(table, tag) {
			if HasClasses(cell, want...) {
				return true
			}
		}
	}

	return false
}

// Unescape replaces the handful of HTML entities that survive into cell
// text after parsing (e.g. inside an attribute copied verbatim rather
// than parsed as markup).
func Unescape(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)

	return replacer.Replace(s)
}
