package console

import (
	"strings"
	"testing"

	"github.com/gopak/dcs-cli/internal/query"
)

func TestFilesGrepped(t *testing.T) {
	if got := FilesGrepped(query.Stats{FilesTotal: 1234}); got != "--\nFiles grepped: 1234" {
		t.Fatalf("got %q", got)
	}
}

func TestDiscrepancy(t *testing.T) {
	if out := Discrepancy(query.Stats{Reported: 5, Printed: 3, Excluded: 2}); out != "" {
		t.Fatalf("excluded matches account for the difference, got %q", out)
	}

	out := Discrepancy(query.Stats{Reported: 40, Printed: 31, Excluded: 2, Duplicates: 4, Pages: 2})
	if out == "" {
		t.Fatalf("expected a report")
	}
	for _, want := range []string{"Result count mismatch", "reported by service", "40", "printed", "31", "excluded", "repeated", "pages fetched"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report misses %q:\n%s", want, out)
		}
	}
}
