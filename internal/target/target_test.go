package target

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		cidrs   []string
		wantErr bool
		wantLen int
	}{
		{
			name:    "single range",
			cidrs:   []string{"95.163.248.0/22"},
			wantLen: 1,
		},
		{
			name:    "multiple ranges",
			cidrs:   []string{"95.163.248.0/22", "10.0.0.0/8"},
			wantLen: 2,
		},
		{
			name:    "whitespace tolerated",
			cidrs:   []string{"  95.163.248.0/22 "},
			wantLen: 1,
		},
		{
			name:    "empty list",
			cidrs:   nil,
			wantErr: true,
		},
		{
			name:    "not a CIDR",
			cidrs:   []string{"95.163.248.5"},
			wantErr: true,
		},
		{
			name:    "garbage",
			cidrs:   []string{"not-a-network"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.cidrs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%v) expected error, got nil", tt.cidrs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.cidrs, err)
			}
			if s.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", s.Len(), tt.wantLen)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	s, err := ParseList("95.163.248.0/22, 185.86.144.0/22,")
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if _, err := ParseList(" , "); err == nil {
		t.Error("ParseList() with only separators expected error, got nil")
	}
}

func TestContains(t *testing.T) {
	s, err := Parse([]string{"95.163.248.0/22"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		addr string
		want bool
	}{
		{"95.163.248.5", true},
		{"95.163.251.255", true},
		{"95.163.252.1", false},
		{"95.163.247.255", false},
		{"10.0.0.1", false},
		{"", false},
		{"not-an-ip", false},
		{"95.163.248", false},
		{"95.163.248.5/32", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := s.Contains(tt.addr); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestContainsUnion(t *testing.T) {
	s, err := Parse([]string{"95.163.248.0/22", "185.86.144.0/22"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !s.Contains("185.86.147.20") {
		t.Error("Contains() = false for address in second range")
	}
	if !s.Contains("95.163.249.1") {
		t.Error("Contains() = false for address in first range")
	}
	if s.Contains("185.86.148.1") {
		t.Error("Contains() = true for address outside both ranges")
	}
}

func TestNilAndZeroRangeSet(t *testing.T) {
	var s *RangeSet
	if s.Contains("95.163.248.5") {
		t.Error("nil RangeSet matched an address")
	}
	if s.Len() != 0 {
		t.Errorf("nil RangeSet Len() = %d, want 0", s.Len())
	}
	if s.String() != "" {
		t.Errorf("nil RangeSet String() = %q, want empty", s.String())
	}
}

func TestString(t *testing.T) {
	s, err := Parse([]string{"95.163.248.0/22", "10.0.0.0/8"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := "95.163.248.0/22, 10.0.0.0/8"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
