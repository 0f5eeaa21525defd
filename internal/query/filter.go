package query

import (
	"strings"

	"github.com/gopak/dcs-cli/internal/dcs"
)

// Excluder drops chunks whose path contains any of its substrings.
type Excluder []string

func (e Excluder) Excluded(c dcs.Chunk) bool {
	for _, s := range e {
		if s != "" && strings.Contains(c.Path, s) {
			return true
		}
	}
	return false
}

// Identity is the (path, line) pair a match is known by across both phases.
type Identity struct {
	Path string
	Line int
}

func IdentityOf(c dcs.Chunk) Identity { return Identity{Path: c.Path, Line: c.Line} }
