// Package parser reads org documents into outline trees.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conorfennell/orgdrill/internal/outline"
)

const (
	drawerStart = ":PROPERTIES:"
	drawerEnd   = ":END:"
	titleKey    = "#+TITLE:"
	maxLineSize = 1 << 20
)

var (
	headlineRe = regexp.MustCompile(`^(\*+)(?:[ \t]+(.*))?$`)
	propertyRe = regexp.MustCompile(`^:(\S+?):(?:[ \t]+(.*))?$`)
	planningRe = regexp.MustCompile(`^\s*(SCHEDULED|DEADLINE|CLOSED):`)
	tagsRe     = regexp.MustCompile(`[ \t]+:([[:alnum:]_@#%]+:)+[ \t]*$`)
	keywordRe  = regexp.MustCompile(`^(TODO|DONE)[ \t]+`)
	priorityRe = regexp.MustCompile(`^\[#[A-Z0-9]\][ \t]+`)
	descLinkRe = regexp.MustCompile(`\[\[[^\]]*\]\[([^\]]*)\]\]`)
	linkRe     = regexp.MustCompile(`\[\[([^\]]*)\]\]`)
)

type state int

const (
	readingBody state = iota
	readingDrawer
)

// ParseFile reads the org file at path. The document title falls back to the
// file name when the file has no #+TITLE keyword.
func ParseFile(path string) (*outline.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Title == "" {
		base := filepath.Base(path)
		doc.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

// Parse reads an org document from r.
func Parse(r io.Reader) (*outline.Node, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	doc := &outline.Node{Kind: outline.Document}
	stack := []*outline.Node{doc}
	current := doc
	currentState := readingBody
	drawerAllowed := true // a file-level drawer may open the document
	drawerLine := 0
	lineNo := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if currentState == readingDrawer {
			trimmed := strings.TrimSpace(line)
			if strings.EqualFold(trimmed, drawerEnd) {
				currentState = readingBody
				continue
			}
			m := propertyRe.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("line %d: malformed property line %q", lineNo, trimmed)
			}
			setProperty(current, m[1], m[2])
			continue
		}

		if m := headlineRe.FindStringSubmatch(line); m != nil {
			node := &outline.Node{
				Kind:     outline.Heading,
				Level:    len(m[1]),
				Headline: strings.TrimSpace(m[2]),
			}
			node.Title = cleanTitle(node.Headline)

			for len(stack) > 1 && stack[len(stack)-1].Level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
			stack = append(stack, node)
			current = node
			drawerAllowed = true
			continue
		}

		trimmed := strings.TrimSpace(line)
		if drawerAllowed && strings.EqualFold(trimmed, drawerStart) {
			currentState = readingDrawer
			drawerLine = lineNo
			drawerAllowed = false
			continue
		}

		if current == doc && len(trimmed) >= len(titleKey) && strings.EqualFold(trimmed[:len(titleKey)], titleKey) {
			doc.Title = strings.TrimSpace(trimmed[len(titleKey):])
			drawerAllowed = false
			continue
		}

		switch {
		case current == doc && trimmed == "":
			// blank lines keep the file-level drawer slot open
		case current != doc && planningRe.MatchString(line):
		default:
			drawerAllowed = false
		}
		current.Body = append(current.Body, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if currentState == readingDrawer {
		return nil, fmt.Errorf("line %d: property drawer is never closed", drawerLine)
	}

	trimBody(doc)
	return doc, nil
}

func setProperty(n *outline.Node, key, value string) {
	if n.Properties == nil {
		n.Properties = make(map[string]string)
	}
	key = strings.ToUpper(key)
	value = strings.TrimSpace(value)
	if base, ok := strings.CutSuffix(key, "+"); ok {
		if prev, exists := n.Properties[base]; exists && prev != "" {
			n.Properties[base] = prev + " " + value
			return
		}
		key = base
	}
	n.Properties[key] = value
}

// cleanTitle strips todo keywords, priority cookies, tags and link markup.
func cleanTitle(headline string) string {
	t := keywordRe.ReplaceAllString(headline, "")
	t = priorityRe.ReplaceAllString(t, "")
	t = tagsRe.ReplaceAllString(t, "")
	t = descLinkRe.ReplaceAllString(t, "$1")
	t = linkRe.ReplaceAllString(t, "$1")
	return strings.TrimSpace(t)
}

// trimBody drops leading and trailing blank lines from every body.
func trimBody(n *outline.Node) {
	body := n.Body
	for len(body) > 0 && strings.TrimSpace(body[0]) == "" {
		body = body[1:]
	}
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}
	if len(body) == 0 {
		body = nil
	}
	n.Body = body
	for _, c := range n.Children {
		trimBody(c)
	}
}
