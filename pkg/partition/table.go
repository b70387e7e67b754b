package partition

import (
	"fmt"
	"strconv"
	"strings"

	"rangekv/pkg/types"
)

// Entry maps one inclusive byte range to its owning node.
type Entry struct {
	Lo    byte
	Hi    byte
	Owner types.NodeID
}

func (e Entry) contains(v byte) bool {
	return e.Lo <= v && v <= e.Hi
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s-%s]->%s", fmtByte(e.Lo), fmtByte(e.Hi), e.Owner)
}

// Table is an ordered sequence of range entries. Order is authoritative:
// Lookup returns the first entry containing the value, so with overlapping
// ranges the earlier entry wins. The table itself never validates overlap.
type Table []Entry

// Lookup scans entries in table order and returns the owner of the first
// range containing v. ok is false when no entry matches.
//
// Linear scan is fine for the table sizes we run (tens of entries); a large
// topology would want a sorted search here, the contract stays the same.
func (t Table) Lookup(v byte) (owner types.NodeID, ok bool) {
	for _, e := range t {
		if e.contains(v) {
			return e.Owner, true
		}
	}
	return "", false
}

// Nodes returns the distinct owners in table order, first occurrence wins.
func (t Table) Nodes() []types.NodeID {
	seen := make(map[types.NodeID]struct{}, len(t))
	var res []types.NodeID
	for _, e := range t {
		if _, ok := seen[e.Owner]; !ok {
			seen[e.Owner] = struct{}{}
			res = append(res, e.Owner)
		}
	}
	return res
}

// String renders the whole table; NoRoute diagnostics embed this verbatim.
func (t Table) String() string {
	if len(t) == 0 {
		return "{}"
	}
	parts := make([]string, len(t))
	for i, e := range t {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func fmtByte(b byte) string {
	if b >= '!' && b <= '~' {
		return string(b)
	}
	return "0x" + strconv.FormatUint(uint64(b), 16)
}

// ParseRange parses the config form of a range: either a single bound or
// "lo-hi", each bound being a printable character ("a") or a decimal byte
// value ("97"). A single bound means lo == hi.
func ParseRange(s string) (lo, hi byte, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("partition: empty range")
	}

	loPart, hiPart, found := cutRange(s)
	lo, err = parseBound(loPart)
	if err != nil {
		return 0, 0, fmt.Errorf("partition: range %q: %w", s, err)
	}
	if !found {
		return lo, lo, nil
	}
	hi, err = parseBound(hiPart)
	if err != nil {
		return 0, 0, fmt.Errorf("partition: range %q: %w", s, err)
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("partition: range %q: hi below lo", s)
	}
	return lo, hi, nil
}

// cutRange splits on the separating dash. A leading dash belongs to the
// first bound only when the bound is a single character ("--z" is 0x2d..z).
func cutRange(s string) (lo, hi string, found bool) {
	for i := 1; i < len(s); i++ {
		if s[i] == '-' && i != len(s)-1 {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func parseBound(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return s[0], nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad bound %q", s)
	}
	return byte(n), nil
}
