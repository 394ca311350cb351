// /home/krylon/go/src/github.com/blicero/skylight/recipe/page.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 12:30:14 krylon>

package recipe

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var recipePath = regexp.MustCompile(`^/recipes/\d+`)

// page holds what we extract from an HTML document.
type page struct {
	links   []string
	ldJSON  []string
	ogTitle string
	ogImage string
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return ""
} // func attr(n *html.Node, key string) string

// parsePage walks the document and collects recipe links, JSON-LD blocks and
// OpenGraph tags. Links are resolved against base, only links to recipes
// on the same host are kept, in document order without duplicates.
func parsePage(r io.Reader, base *url.URL) (*page, error) {
	var (
		err  error
		doc  *html.Node
		p    = new(page)
		seen = make(map[string]bool)
		walk func(n *html.Node)
	)

	if doc, err = html.Parse(r); err != nil {
		return nil, fmt.Errorf("cannot parse HTML: %w", err)
	}

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.A:
				if link := recipeLink(base, attr(n, "href")); link != "" && !seen[link] {
					seen[link] = true
					p.links = append(p.links, link)
				}
			case atom.Script:
				if strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json") &&
					n.FirstChild != nil {
					p.ldJSON = append(p.ldJSON, n.FirstChild.Data)
				}
			case atom.Meta:
				switch attr(n, "property") {
				case "og:title":
					if p.ogTitle == "" {
						p.ogTitle = attr(n, "content")
					}
				case "og:image":
					if p.ogImage == "" {
						p.ogImage = attr(n, "content")
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return p, nil
} // func parsePage(r io.Reader, base *url.URL) (*page, error)

func recipeLink(base *url.URL, href string) string {
	if href == "" {
		return ""
	}

	var ref, err = url.Parse(href)
	if err != nil {
		return ""
	}

	var abs = base.ResolveReference(ref)
	if abs.Host != base.Host || !recipePath.MatchString(abs.Path) {
		return ""
	}

	abs.Fragment = ""
	return abs.String()
} // func recipeLink(base *url.URL, href string) string

// findRecipe looks for an object of type Recipe in a decoded JSON-LD
// value. It may be the value itself, an element of a list or part of an
// @graph.
func findRecipe(v any) map[string]any {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if r := findRecipe(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isType(x["@type"], "Recipe") {
			return x
		} else if g, ok := x["@graph"]; ok {
			return findRecipe(g)
		}
	}

	return nil
} // func findRecipe(v any) map[string]any

func isType(t any, name string) bool {
	switch x := t.(type) {
	case string:
		return x == name
	case []any:
		for _, s := range x {
			if str, ok := s.(string); ok && str == name {
				return true
			}
		}
	}

	return false
} // func isType(t any, name string) bool

// text returns the first usable string in v. Objects contribute their
// field key, lists their first usable element.
func text(v any, key string) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any:
		if key != "" {
			return text(x[key], "")
		}
	case []any:
		for _, item := range x {
			if s := text(item, key); s != "" {
				return s
			}
		}
	}

	return ""
} // func text(v any, key string) string

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+S)?)?$`)

// humanDuration turns an ISO 8601 duration like PT1H30M into "1 hr 30 min".
// Strings that are not durations are returned unchanged.
func humanDuration(s string) string {
	var m = isoDuration.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}

	var (
		parts = make([]string, 0, 3)
		units = []string{"day", "hr", "min"}
	)

	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}

		var n, _ = strconv.Atoi(m[i+1])
		if n == 0 {
			continue
		}

		if unit == "day" && n != 1 {
			unit = "days"
		}

		parts = append(parts, fmt.Sprintf("%d %s", n, unit))
	}

	return strings.Join(parts, " ")
} // func humanDuration(s string) string
