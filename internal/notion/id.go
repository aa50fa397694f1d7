// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// NormalizeID returns the dashed UUID form of a Notion page or block id.
// It accepts dashed and undashed ids as well as page URLs such as
// https://www.notion.so/team/My-Page-0123456789abcdef0123456789abcdef?pvs=4,
// where the id is the trailing 32 hex characters of the last path segment.
func NormalizeID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty page id")
	}
	if id, err := uuid.Parse(s); err == nil {
		return id.String(), nil
	}

	candidate := s
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		candidate = path.Base(u.Path)
	}
	if len(candidate) >= 32 {
		if id, err := uuid.Parse(candidate[len(candidate)-32:]); err == nil {
			return id.String(), nil
		}
	}
	return "", fmt.Errorf("not a Notion page id or URL: %q", s)
}
