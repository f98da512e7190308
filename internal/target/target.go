// Package target implements the membership test that decides whether an
// allocated floating IP qualifies as a win. A RangeSet is the union of one
// or more CIDR prefixes; an address matches if any prefix contains it.
package target

import (
	"fmt"
	"net/netip"
	"strings"
)

// RangeSet is an immutable union of CIDR prefixes.
// The zero value matches nothing; construct with Parse or ParseList.
type RangeSet struct {
	prefixes []netip.Prefix
}

// Parse builds a RangeSet from CIDR strings such as "95.163.248.0/22".
// At least one range is required.
func Parse(cidrs []string) (*RangeSet, error) {
	if len(cidrs) == 0 {
		return nil, fmt.Errorf("target: at least one CIDR range is required")
	}

	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("target: invalid CIDR range %q: %w", c, err)
		}
		prefixes = append(prefixes, p.Masked())
	}

	return &RangeSet{prefixes: prefixes}, nil
}

// ParseList builds a RangeSet from a single comma-separated string,
// the form the configuration surface uses ("a.b.c.d/n, e.f.g.h/m").
// Empty elements are skipped.
func ParseList(list string) (*RangeSet, error) {
	var cidrs []string
	for _, part := range strings.Split(list, ",") {
		if p := strings.TrimSpace(part); p != "" {
			cidrs = append(cidrs, p)
		}
	}
	return Parse(cidrs)
}

// Contains reports whether addr falls inside any of the set's ranges.
// Malformed addresses never match.
func (s *RangeSet) Contains(addr string) bool {
	if s == nil {
		return false
	}
	a, err := netip.ParseAddr(strings.TrimSpace(addr))
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range s.prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// Len returns the number of ranges in the set.
func (s *RangeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.prefixes)
}

// String returns the ranges as a comma-separated list, for logs and
// notifications.
func (s *RangeSet) String() string {
	if s == nil || len(s.prefixes) == 0 {
		return ""
	}
	parts := make([]string, len(s.prefixes))
	for i, p := range s.prefixes {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
