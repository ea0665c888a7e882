package util

import "testing"

func TestSplitCommaSeparated(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"1=22", 1},
		{"1=22,5=16", 2},
		{"1=22, 5=16, ,9=14", 3},
	}

	for _, tt := range tests {
		got := SplitCommaSeparated(tt.input)
		if len(got) != tt.want {
			t.Errorf("SplitCommaSeparated(%q) = %v (len %d), want len %d", tt.input, got, len(got), tt.want)
		}
	}
}

func TestJoinInts(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{8}, "8"},
		{[]int{9, 8, 11, 10}, "9,8,11,10"},
	}
	for _, tt := range tests {
		if got := JoinInts(tt.in); got != tt.want {
			t.Errorf("JoinInts(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitKeyValue(t *testing.T) {
	tests := []struct {
		in       string
		key, val string
		ok       bool
	}{
		{"1=22", "1", "22", true},
		{"eth1/1/1 = 18", "eth1/1/1", "18", true},
		{"=22", "", "", false},
		{"1=", "", "", false},
		{"122", "", "", false},
	}
	for _, tt := range tests {
		k, v, ok := SplitKeyValue(tt.in)
		if k != tt.key || v != tt.val || ok != tt.ok {
			t.Errorf("SplitKeyValue(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.in, k, v, ok, tt.key, tt.val, tt.ok)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateString("a-very-long-platform-description", 10); got != "a-very-..." {
		t.Errorf("got %q", got)
	}
}
