package check

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PageURL resolves a suite's page to a navigable URL. Absolute and
// relative local paths become file:// URLs; http(s) and file URLs pass
// through untouched. Relative paths resolve against baseDir, or the
// working directory when baseDir is empty.
func PageURL(page, baseDir string) (string, error) {
	if page == "" {
		return "", fmt.Errorf("empty page")
	}

	lower := strings.ToLower(page)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "file://") {
		return page, nil
	}

	p := page
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", page, err)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("page file: %w", err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
