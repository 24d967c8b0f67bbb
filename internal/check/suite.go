// Package check defines declarative page verification suites and the
// runner that evaluates them against a browser tab.
package check

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Suite is one page plus the checks to run against it.
type Suite struct {
	Name       string  `yaml:"name" json:"name"`
	Page       string  `yaml:"page" json:"page"`
	Screenshot string  `yaml:"screenshot,omitempty" json:"screenshot,omitempty"`
	WaitFor    string  `yaml:"waitFor,omitempty" json:"waitFor,omitempty"`
	TimeoutSec int     `yaml:"timeoutSec,omitempty" json:"timeoutSec,omitempty"`
	Checks     []Check `yaml:"checks" json:"checks"`
}

// Check locates one element, by CSS selector or by ARIA role plus
// accessible name, and optionally asserts an attribute value on it.
// With an attribute, equals/contains compare the attribute value;
// without one they compare the element's trimmed text. No attribute
// and no expectation asserts existence only.
type Check struct {
	Selector  string  `yaml:"selector,omitempty" json:"selector,omitempty"`
	Role      string  `yaml:"role,omitempty" json:"role,omitempty"`
	Name      string  `yaml:"name,omitempty" json:"name,omitempty"`
	Attribute string  `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Equals    *string `yaml:"equals,omitempty" json:"equals,omitempty"`
	Contains  string  `yaml:"contains,omitempty" json:"contains,omitempty"`
}

// LoadSuite reads and validates a YAML suite file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) Validate() error {
	if s.Page == "" {
		return fmt.Errorf("suite %q: page is required", s.Name)
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("suite %q: at least one check is required", s.Name)
	}
	for i := range s.Checks {
		if err := s.Checks[i].Validate(); err != nil {
			return fmt.Errorf("suite %q: check %d: %w", s.Name, i, err)
		}
	}
	return nil
}

func (c *Check) Validate() error {
	switch {
	case c.Selector == "" && c.Role == "":
		return fmt.Errorf("selector or role is required")
	case c.Selector != "" && c.Role != "":
		return fmt.Errorf("selector and role are mutually exclusive")
	case c.Role != "" && c.Name == "":
		return fmt.Errorf("role locator requires name")
	case c.Selector != "" && c.Name != "":
		return fmt.Errorf("name is only valid with role")
	}
	if c.Equals != nil && c.Contains != "" {
		return fmt.Errorf("equals and contains are mutually exclusive")
	}
	return nil
}

// Describe renders the check for result output, e.g.
// `#solutionsContainer [aria-busy="false"]` or `link "Inspect source code"`.
func (c *Check) Describe() string {
	var b strings.Builder
	if c.Selector != "" {
		b.WriteString(c.Selector)
	} else {
		b.WriteString(c.Role)
		b.WriteString(` "`)
		b.WriteString(c.Name)
		b.WriteByte('"')
	}
	switch {
	case c.Attribute != "" && c.Equals != nil:
		fmt.Fprintf(&b, " [%s=%q]", c.Attribute, *c.Equals)
	case c.Attribute != "" && c.Contains != "":
		fmt.Fprintf(&b, " [%s~=%q]", c.Attribute, c.Contains)
	case c.Attribute != "":
		fmt.Fprintf(&b, " [%s]", c.Attribute)
	case c.Equals != nil:
		fmt.Fprintf(&b, " [text=%q]", *c.Equals)
	case c.Contains != "":
		fmt.Fprintf(&b, " [text~=%q]", c.Contains)
	}
	return b.String()
}
