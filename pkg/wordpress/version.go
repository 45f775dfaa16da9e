package wordpress

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sandpress/sandpress/pkg/errors"
)

// wpVersionRe matches the version assignment in wp-includes/version.php
var wpVersionRe = regexp.MustCompile(`\$wp_version\s*=\s*'([^']+)'`)

// parseVersionFile extracts the version string from the contents of
// wp-includes/version.php.
func parseVersionFile(contents []byte) (string, error) {
	match := wpVersionRe.FindSubmatch(contents)
	if match == nil {
		return "", errors.New(errors.ErrInvalidInput, "no $wp_version assignment in version file")
	}
	return string(match[1]), nil
}

// compareVersions compares two dotted numeric versions. WordPress uses
// both two-part (6.5) and three-part (6.5.2) versions; missing parts
// compare as zero. It returns -1 if a < b, 0 if equal, 1 if a > b.
func compareVersions(a, b string) (int, error) {
	aParts, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	bParts, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < 3; i++ {
		if aParts[i] < bParts[i] {
			return -1, nil
		}
		if aParts[i] > bParts[i] {
			return 1, nil
		}
	}
	return 0, nil
}

func parseVersion(raw string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return out, errors.Newf(errors.ErrInvalidInput, "invalid version %q", raw)
	}
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return out, errors.Newf(errors.ErrInvalidInput, "invalid version segment %q in %q", part, raw)
		}
		out[i] = value
	}
	return out, nil
}
