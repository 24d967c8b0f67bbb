package check

import (
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	if (&RunResult{Passed: true}).ExitCode() != 0 {
		t.Error("passed run should exit 0")
	}
	if (&RunResult{Passed: false}).ExitCode() != 1 {
		t.Error("failed run should exit 1")
	}
}

func TestRenderPass(t *testing.T) {
	res := RunResult{
		Suite:  "suggestions",
		Passed: true,
		Checks: []CheckResult{
			{Desc: `#solutionsContainer [aria-busy="false"]`, Status: StatusPass},
			{Desc: `link "Inspect source code"`, Status: StatusPass},
		},
		Screenshot: "out/suggestions.png",
	}

	var b strings.Builder
	res.Render(&b)
	out := b.String()

	want := []string{
		"✅ Verified #solutionsContainer",
		`✅ Verified link "Inspect source code"`,
		"✅ Screenshot captured: out/suggestions.png",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in output:\n%s", w, out)
		}
	}
	if strings.Contains(out, FailMark) {
		t.Errorf("unexpected failure marker:\n%s", out)
	}
}

func TestRenderFailAndSkip(t *testing.T) {
	res := RunResult{
		Suite: "suggestions",
		Checks: []CheckResult{
			{Desc: "#a", Status: StatusFail, Got: "true", Want: "false"},
			{Desc: "#b", Status: StatusSkip},
		},
	}

	var b strings.Builder
	res.Render(&b)
	out := b.String()

	if !strings.Contains(out, `❌ #a: got "true", want "false"`) {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "-- skipped #b") {
		t.Errorf("missing skip line:\n%s", out)
	}
}

func TestRenderFailWithError(t *testing.T) {
	res := RunResult{
		Suite: "suggestions",
		Checks: []CheckResult{
			{Desc: "#a", Status: StatusFail, Error: "element not found"},
		},
	}

	var b strings.Builder
	res.Render(&b)
	if !strings.Contains(b.String(), "❌ #a: element not found") {
		t.Errorf("missing error line:\n%s", b.String())
	}
}

func TestRenderRunError(t *testing.T) {
	res := RunResult{
		Suite: "suggestions",
		Error: "navigate file:///x: timeout",
	}

	var b strings.Builder
	res.Render(&b)
	out := b.String()

	if !strings.HasPrefix(out, "❌ suggestions failed: navigate") {
		t.Errorf("unexpected run error line:\n%s", out)
	}
}
