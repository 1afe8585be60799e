package varkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse creates a new Address by parsing its canonical string representation.
// Only the last segment may carry an index.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("variable name cannot be empty")
	}

	addr := &Address{}
	segments := strings.Split(raw, ".")
	for i, segmentStr := range segments {
		if segmentStr == "" {
			return nil, fmt.Errorf("variable path contains empty segment")
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}

		segment := NewPathSegment(matches[1])
		if matches[2] != "" {
			if i != len(segments)-1 {
				return nil, fmt.Errorf("only the variable segment may be indexed: %q", segmentStr)
			}
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to regex `\d+`
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		addr.Path = append(addr.Path, segment)
	}

	return addr, nil
}
