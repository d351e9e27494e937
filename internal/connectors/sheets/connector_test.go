package sheets

import "testing"

func TestSpreadsheetIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0": "1AbC-d_9",
		"  1AbC-d_9 ":                      "1AbC-d_9",
		"https://example.com/not-a-sheet": "",
		"":                                "",
	}
	for in, want := range cases {
		if got := SpreadsheetIDFromURL(in); got != want {
			t.Fatalf("SpreadsheetIDFromURL(%q)=%q want %q", in, got, want)
		}
	}
}

func TestQuoteRange(t *testing.T) {
	if got := quoteRange("Bob's SAP"); got != "'Bob''s SAP'" {
		t.Fatalf("got %s", got)
	}
}
