//go:build blackbox

package blackbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// line is one ledger line in exchange table format.
type line struct {
	typ     string
	at      time.Time
	delta   string
	balance string
	asset   string
	id      string
}

func writeTable(t *testing.T, dir, asset string, lines ...line) string {
	t.Helper()

	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s amount %s balance %s %s %s\n",
			l.typ, l.at.UTC().Format("2006-01-02 15:04:05"), l.delta, l.balance, l.asset, l.id)
	}
	path := filepath.Join(dir, "table_"+strings.ToLower(asset))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
