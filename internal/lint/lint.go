// Package lint statically analyses a suite against its local HTML page,
// reporting checks that cannot match before a browser ever starts.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pagecheck/pagecheck/internal/check"
)

type Finding struct {
	CheckIndex int    `json:"checkIndex"`
	Desc       string `json:"desc"`
	Message    string `json:"message"`
}

// Implicit ARIA roles for the elements a role locator can target
// statically. Dynamic roles (role= attribute) are matched separately.
var roleTags = map[string][]string{
	"link":     {"a[href]"},
	"button":   {"button", "input[type=button]", "input[type=submit]"},
	"textbox":  {"input[type=text]", "textarea"},
	"checkbox": {"input[type=checkbox]"},
	"radio":    {"input[type=radio]"},
	"img":      {"img"},
	"heading":  {"h1", "h2", "h3", "h4", "h5", "h6"},
}

// Suite lints every check of a suite against the page document. Remote
// pages cannot be linted statically and yield a single informational
// finding.
func Suite(s *check.Suite, baseDir string) ([]Finding, error) {
	lower := strings.ToLower(s.Page)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return []Finding{{CheckIndex: -1, Message: "remote page, static lint skipped"}}, nil
	}

	path := strings.TrimPrefix(s.Page, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var findings []Finding
	for i := range s.Checks {
		c := &s.Checks[i]
		if msg := lintCheck(doc, c); msg != "" {
			findings = append(findings, Finding{
				CheckIndex: i,
				Desc:       c.Describe(),
				Message:    msg,
			})
		}
	}
	return findings, nil
}

func lintCheck(doc *goquery.Document, c *check.Check) string {
	var node *goquery.Selection
	if c.Selector != "" {
		sel := doc.Find(c.Selector)
		if sel.Length() == 0 {
			return "selector matches nothing in the static document"
		}
		node = sel.First()
	} else {
		node = findByRole(doc, c.Role, c.Name)
		if node == nil {
			return fmt.Sprintf("no static %s with accessible name %q", c.Role, c.Name)
		}
	}

	if c.Attribute != "" {
		if _, ok := node.Attr(c.Attribute); !ok {
			return fmt.Sprintf("attribute %q absent in the static document", c.Attribute)
		}
		return ""
	}

	// No attribute: equals/contains assert the element's trimmed text.
	text := strings.TrimSpace(node.Text())
	if c.Equals != nil && text != *c.Equals {
		return fmt.Sprintf("static text is %q", text)
	}
	if c.Contains != "" && !strings.Contains(text, c.Contains) {
		return fmt.Sprintf("static text %q does not contain %q", text, c.Contains)
	}
	return ""
}

// findByRole approximates accessible-name computation: aria-label wins,
// otherwise the element's trimmed text.
func findByRole(doc *goquery.Document, role, name string) *goquery.Selection {
	selectors := append([]string{fmt.Sprintf("[role=%s]", role)}, roleTags[role]...)

	needle := strings.ToLower(name)
	var match *goquery.Selection
	for _, sel := range selectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.Contains(strings.ToLower(accessibleName(s)), needle) {
				match = s
				return false
			}
			return true
		})
		if match != nil {
			return match
		}
	}
	return nil
}

func accessibleName(s *goquery.Selection) string {
	if label, ok := s.Attr("aria-label"); ok && label != "" {
		return label
	}
	return strings.TrimSpace(s.Text())
}
