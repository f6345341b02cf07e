package pipeline

import (
	"testing"
	"unicode/utf8"
)

func TestCommonHanzi(t *testing.T) {
	chars := CommonHanzi(10)
	if len(chars) != 10 {
		t.Fatalf("got %d characters, want 10", len(chars))
	}
	if chars[0] != "啊" {
		t.Errorf("got first character %q, want 啊", chars[0])
	}
	for i, c := range chars {
		if utf8.RuneCountInString(c) != 1 {
			t.Errorf("character %d: got %q, want a single rune", i, c)
		}
	}
}

func TestCommonHanzi_ZeroLimit(t *testing.T) {
	if got := CommonHanzi(0); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestCommonHanzi_FullBlock(t *testing.T) {
	// A limit past the end of level-1 returns the whole block, with no
	// repeats and no replacement characters.
	chars := CommonHanzi(100000)
	if len(chars) < 3000 || len(chars) > 4000 {
		t.Fatalf("got %d characters, want the full level-1 block", len(chars))
	}
	seen := make(map[string]bool, len(chars))
	for _, c := range chars {
		if seen[c] {
			t.Fatalf("character %q repeated", c)
		}
		seen[c] = true
		if c == string(utf8.RuneError) {
			t.Fatal("replacement character leaked into the corpus")
		}
	}
}
