package utils

import "testing"

func TestSplitCategory(t *testing.T) {
	cases := []struct {
		in, rest, category string
	}{
		{"buy milk +home", "buy milk", "home"},
		{"+work  write report", "write report", "work"},
		{"a +x b +y", "a b +y", "x"},
		{"no tag", "no tag", ""},
		{"lonely +", "lonely +", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		rest, category := SplitCategory(tc.in)
		if rest != tc.rest || category != tc.category {
			t.Fatalf("SplitCategory(%q): expected (%q, %q), got (%q, %q)", tc.in, tc.rest, tc.category, rest, category)
		}
	}
}
