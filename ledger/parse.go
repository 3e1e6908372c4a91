package ledger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ulikunitz/xz"
)

// Account table lines look like
//
//	match 2017-06-01 12:00:00 amount -0.50 balance 0.50 BTC 5b1c...
//
// Fields 3 and 5 are labels and are ignored.
const (
	fieldType = iota
	fieldDate
	fieldClock
	_
	fieldDelta
	_
	fieldBalance
	fieldAsset
	fieldID
	minFields
)

const timeLayout = "2006-01-02 15:04:05"

// ParseError reports a malformed table line.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine parses one non-blank table line.
func ParseLine(line string) (LineItem, error) {
	f := strings.Fields(line)
	if len(f) < minFields {
		return LineItem{}, fmt.Errorf("expected at least %d fields, got %d", minFields, len(f))
	}

	typ, err := ParseItemType(f[fieldType])
	if err != nil {
		return LineItem{}, err
	}
	ts, err := time.ParseInLocation(timeLayout, f[fieldDate]+" "+f[fieldClock], time.UTC)
	if err != nil {
		return LineItem{}, fmt.Errorf("time: %w", err)
	}
	delta, err := decimal.NewFromString(f[fieldDelta])
	if err != nil {
		return LineItem{}, fmt.Errorf("delta %q: %w", f[fieldDelta], err)
	}
	bal, err := decimal.NewFromString(f[fieldBalance])
	if err != nil {
		return LineItem{}, fmt.Errorf("balance %q: %w", f[fieldBalance], err)
	}

	return LineItem{
		Type:    typ,
		Asset:   strings.ToUpper(f[fieldAsset]),
		Delta:   delta,
		Balance: bal,
		ID:      f[fieldID],
		Time:    ts,
	}, nil
}

// Parse reads a whole table. A line repeating an earlier (type, id) pair
// replaces it in place.
func Parse(r io.Reader, path string) ([]LineItem, error) {
	type key struct {
		typ ItemType
		id  string
	}

	var items []LineItem
	seen := make(map[key]int)

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		li, err := ParseLine(line)
		if err != nil {
			return nil, &ParseError{Path: path, Line: n, Err: err}
		}
		k := key{li.Type, li.ID}
		if i, ok := seen[k]; ok {
			items[i] = li
			continue
		}
		seen[k] = len(items)
		items = append(items, li)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return items, nil
}

// ReadTable parses the table at path, decompressing ".xz" files.
func ReadTable(path string) ([]LineItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz %s: %w", path, err)
		}
		r = xr
	}
	return Parse(r, path)
}

// DiscoverTables returns the files in dir matching pattern, sorted.
func DiscoverTables(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "table_*"
	}
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Load reads every table and returns the normalized transaction stream.
func Load(paths ...string) ([]Transaction, error) {
	var all []LineItem
	for _, p := range paths {
		items, err := ReadTable(p)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return Normalize(all)
}
