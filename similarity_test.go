package poster

import (
	"testing"
)

func TestDedupeResults(t *testing.T) {
	solid := func() *Image {
		i, err := newImageFromBuffer(dummyPNG(t))
		if err != nil {
			t.Fatal(err)
		}
		return i
	}

	t.Run("keeps distinct backgrounds in order", func(t *testing.T) {
		a := &RenderResult{Background: solid(), Query: "a"}
		b := &RenderResult{Background: newCheckerImage(t), Query: "b"}
		got := dedupeResults([]*RenderResult{a, b})
		if len(got) != 2 || got[0].Query != "a" || got[1].Query != "b" {
			t.Errorf("got %d results", len(got))
		}
	})

	t.Run("drops repeated backgrounds", func(t *testing.T) {
		a := &RenderResult{Background: solid(), Query: "a"}
		b := &RenderResult{Background: solid(), Query: "b"}
		c := &RenderResult{Background: newCheckerImage(t), Query: "c"}
		got := dedupeResults([]*RenderResult{a, b, c})
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2", len(got))
		}
		if got[0].Query != "a" || got[1].Query != "c" {
			t.Errorf("kept %q and %q, want the first occurrence of each background", got[0].Query, got[1].Query)
		}
	})

	t.Run("keeps one fallback at most", func(t *testing.T) {
		got := dedupeResults([]*RenderResult{
			{Query: "a"},
			{Query: "b"},
			{Background: solid(), Query: "c"},
			{Query: "d"},
		})
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2", len(got))
		}
		if got[0].Query != "a" || got[1].Query != "c" {
			t.Errorf("kept %q and %q", got[0].Query, got[1].Query)
		}
	})

	t.Run("skips nil slots", func(t *testing.T) {
		got := dedupeResults([]*RenderResult{nil, {Background: solid()}, nil})
		if len(got) != 1 {
			t.Fatalf("got %d results, want 1", len(got))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := dedupeResults(nil); len(got) != 0 {
			t.Errorf("got %d results, want 0", len(got))
		}
	})
}
