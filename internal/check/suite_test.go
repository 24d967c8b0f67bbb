package check

import (
	"path/filepath"
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }

func TestLoadSuite(t *testing.T) {
	s, err := LoadSuite(filepath.Join("testdata", "suggestions.yaml"))
	if err != nil {
		t.Fatalf("LoadSuite: %v", err)
	}
	if s.Name != "suggestions" {
		t.Errorf("name: got %q", s.Name)
	}
	if s.Page != "index.html" {
		t.Errorf("page: got %q", s.Page)
	}
	if len(s.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(s.Checks))
	}
	if s.Checks[0].Selector != "#solutionsContainer" || s.Checks[0].Attribute != "aria-busy" {
		t.Errorf("unexpected first check: %+v", s.Checks[0])
	}
	if s.Checks[1].Role != "link" || s.Checks[1].Name != "Inspect source code" {
		t.Errorf("unexpected second check: %+v", s.Checks[1])
	}
	if s.Checks[1].Equals == nil || *s.Checks[1].Equals != "Inspect source code (opens in a new window)" {
		t.Errorf("second check equals: %+v", s.Checks[1].Equals)
	}
}

func TestLoadSuiteMissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSuiteValidate(t *testing.T) {
	valid := Suite{
		Page:   "index.html",
		Checks: []Check{{Selector: "#x"}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid suite rejected: %v", err)
	}

	tests := []struct {
		name  string
		suite Suite
	}{
		{"no page", Suite{Checks: []Check{{Selector: "#x"}}}},
		{"no checks", Suite{Page: "index.html"}},
		{"bad check", Suite{Page: "index.html", Checks: []Check{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.suite.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCheckValidate(t *testing.T) {
	tests := []struct {
		name    string
		check   Check
		wantErr string
	}{
		{"selector only", Check{Selector: "#x"}, ""},
		{"role and name", Check{Role: "link", Name: "Docs"}, ""},
		{"selector with attribute", Check{Selector: "#x", Attribute: "href", Contains: "example"}, ""},
		{"neither locator", Check{Attribute: "href"}, "selector or role"},
		{"both locators", Check{Selector: "#x", Role: "link", Name: "Docs"}, "mutually exclusive"},
		{"role without name", Check{Role: "link"}, "requires name"},
		{"name with selector", Check{Selector: "#x", Name: "Docs"}, "only valid with role"},
		{"equals and contains", Check{Selector: "#x", Attribute: "href", Equals: strptr("a"), Contains: "b"}, "mutually exclusive"},
		{"text equals", Check{Selector: "#x", Equals: strptr("a")}, ""},
		{"text contains", Check{Role: "heading", Name: "Title", Contains: "Tit"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCheckDescribe(t *testing.T) {
	tests := []struct {
		name  string
		check Check
		want  string
	}{
		{
			"selector equals",
			Check{Selector: "#solutionsContainer", Attribute: "aria-busy", Equals: strptr("false")},
			`#solutionsContainer [aria-busy="false"]`,
		},
		{
			"role equals",
			Check{Role: "link", Name: "Inspect source code", Attribute: "aria-label", Equals: strptr("Inspect source code (opens in a new window)")},
			`link "Inspect source code" [aria-label="Inspect source code (opens in a new window)"]`,
		},
		{
			"contains",
			Check{Selector: "a", Attribute: "href", Contains: "example"},
			`a [href~="example"]`,
		},
		{
			"presence",
			Check{Selector: "#x", Attribute: "hidden"},
			`#x [hidden]`,
		},
		{
			"existence only",
			Check{Selector: "#x"},
			"#x",
		},
		{
			"text equals",
			Check{Selector: "h1", Equals: strptr("Suggested Solutions")},
			`h1 [text="Suggested Solutions"]`,
		},
		{
			"text contains",
			Check{Selector: "h1", Contains: "Solutions"},
			`h1 [text~="Solutions"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check.Describe(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
