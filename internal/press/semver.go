package press

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// canonical turns "1.2.3" or "v1.2" into the canonical "v1.2.3" form.
func canonical(s string) (string, error) {
	v := strings.TrimSpace(s)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version %q", s)
	}
	return semver.Canonical(v), nil
}

// CompareVersions returns -1, 0 or 1 as a is older than, equal to or newer
// than b. A leading "v" is optional.
func CompareVersions(a, b string) (int, error) {
	ca, err := canonical(a)
	if err != nil {
		return 0, err
	}
	cb, err := canonical(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(ca, cb), nil
}

// Outdated reports whether current is older than minimum.
func Outdated(current, minimum string) (bool, error) {
	n, err := CompareVersions(current, minimum)
	if err != nil {
		return false, err
	}
	return n < 0, nil
}
