package wurdz

import "testing"

func pl(letter byte, row, col int) Placement {
	return Placement{Letter: letter, Row: row, Col: col}
}

func TestCheckConnected(t *testing.T) {
	cases := []struct {
		name  string
		board []Placement
		want  bool
	}{
		{"empty", nil, true},
		{"single tile", []Placement{pl('A', 0, 0)}, true},
		{"horizontal run", []Placement{pl('C', 0, 0), pl('A', 0, 1), pl('T', 0, 2)}, true},
		{"L shape", []Placement{pl('C', 0, 0), pl('A', 0, 1), pl('T', 1, 1)}, true},
		{"two clusters", []Placement{pl('C', 0, 0), pl('A', 0, 1), pl('T', 5, 5)}, false},
		{"diagonal only", []Placement{pl('A', 0, 0), pl('B', 1, 1)}, false},
		{"negative coords", []Placement{pl('A', -1, -1), pl('B', -1, 0), pl('C', 0, 0)}, true},
	}
	for _, tc := range cases {
		if got := CheckConnected(tc.board); got != tc.want {
			t.Errorf("%s: CheckConnected = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExtractWords_CrossingWords(t *testing.T) {
	// CAT across row 0, CAR down col 0, sharing the C.
	board := []Placement{
		pl('C', 0, 0), pl('A', 0, 1), pl('T', 0, 2),
		pl('A', 1, 0), pl('R', 2, 0),
	}

	words := ExtractWords(board)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(words), words)
	}

	// Horizontal rows come first.
	if words[0].Word != "cat" || words[0].Direction != Horizontal {
		t.Fatalf("expected horizontal cat first, got %+v", words[0])
	}
	if words[1].Word != "car" || words[1].Direction != Vertical {
		t.Fatalf("expected vertical car second, got %+v", words[1])
	}

	wantPos := []Coord{{0, 0}, {0, 1}, {0, 2}}
	for i, pos := range words[0].Positions {
		if pos != wantPos[i] {
			t.Fatalf("cat position %d = %v, want %v", i, pos, wantPos[i])
		}
	}
}

func TestExtractWords_IgnoresSingleLetters(t *testing.T) {
	// A lone crossing letter produces no 1-letter words.
	board := []Placement{pl('A', 0, 0), pl('T', 0, 1), pl('X', 1, 0)}
	words := ExtractWords(board)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(words), words)
	}
	if words[0].Word != "at" || words[1].Word != "ax" {
		t.Fatalf("unexpected words: %+v", words)
	}
}

func TestExtractWords_GapSplitsRuns(t *testing.T) {
	// Tiles in the same row with a gap form two separate runs.
	board := []Placement{
		pl('O', 0, 0), pl('N', 0, 1),
		pl('G', 0, 3), pl('O', 0, 4),
	}
	words := ExtractWords(board)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(words), words)
	}
	if words[0].Word != "on" || words[1].Word != "go" {
		t.Fatalf("unexpected words: %+v", words)
	}
}

func TestExtractWords_Empty(t *testing.T) {
	if words := ExtractWords(nil); words != nil {
		t.Fatalf("expected nil for empty board, got %+v", words)
	}
}
