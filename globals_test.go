package formula

import (
	"sync"
	"testing"
)

func TestGlobalsWriteOnce(t *testing.T) {
	g := NewGlobals()
	if !g.Set("x", 1) {
		t.Fatal("first write rejected")
	}
	if g.Set("x", 2) {
		t.Error("second write accepted")
	}
	if g.Set("$x", 3) {
		t.Error("prefixed write accepted")
	}
	if v, ok := g.Lookup("x"); !ok || v != 1 {
		t.Errorf("want 1, got %v, %t", v, ok)
	}
	if v, ok := g.Lookup("$x"); !ok || v != 1 {
		t.Errorf("prefixed lookup: want 1, got %v, %t", v, ok)
	}
	if _, ok := g.Lookup("y"); ok {
		t.Error("found undefined y")
	}
	if g.Len() != 1 {
		t.Errorf("wrong length %d", g.Len())
	}
}

func TestGlobalsConcurrent(t *testing.T) {
	g := NewGlobals()
	var wg sync.WaitGroup
	wins := make(chan float64, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if g.Set("race", float64(i)) {
				wins <- float64(i)
			}
			g.Lookup("race")
		}(i)
	}
	wg.Wait()
	close(wins)
	n := 0
	var w float64
	for v := range wins {
		n++
		w = v
	}
	if n != 1 {
		t.Fatalf("%d writers won", n)
	}
	if v, _ := g.Lookup("race"); v != w {
		t.Errorf("winner wrote %v but value is %v", w, v)
	}
}
