package render

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestPoolKeepsOnePoolPerOptions(t *testing.T) {
	p := newRendererPool()

	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"default", DefaultOptions(), 1},
		{"same again", DefaultOptions(), 1},
		{"narrower", DefaultOptions().WithWidth(40), 2},
		{"other style", DefaultOptions().WithStyle("light"), 3},
		{"no emoji", DefaultOptions().WithEmoji(false), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := p.get(tt.opts)
			if err != nil {
				t.Fatalf("get() error = %v", err)
			}
			p.put(tt.opts, r)
			if got := p.size(); got != tt.want {
				t.Errorf("size() = %d, want %d", got, tt.want)
			}
		})
	}

	p.clear()
	if p.size() != 0 {
		t.Errorf("size() after clear = %d, want 0", p.size())
	}
}

func TestPoolPutNil(t *testing.T) {
	p := newRendererPool()
	p.put(DefaultOptions(), nil)

	r, err := p.get(DefaultOptions())
	if err != nil || r == nil {
		t.Fatalf("get() after put(nil) = %v, %v; want a fresh renderer", r, err)
	}
}

func TestPoolConcurrentOutfits(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions().WithWidth(60)
	looks := []string{
		"## Office Chic\n\n- Silk Blouse\n- Wide-Leg Linen Trousers",
		"## Weekend Brunch\n\n- Floral Midi Dress",
		"## Evening Edit\n\n- Double-Breasted Blazer over the **Floral Midi Dress**",
	}

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(look string) {
			defer wg.Done()
			out, err := Markdown(look, opts)
			if err != nil {
				errs <- err
				return
			}
			if strings.TrimSpace(out) == "" {
				errs <- fmt.Errorf("empty render of %q", look)
			}
		}(looks[i%len(looks)])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}
}

func TestCreateRendererStyles(t *testing.T) {
	for _, name := range StyleNames() {
		t.Run(name, func(t *testing.T) {
			r, err := createRenderer(DefaultOptions().WithStyle(name))
			if err != nil {
				t.Fatalf("createRenderer(%q) error = %v", name, err)
			}
			out, err := r.Render("# Capsule wardrobe")
			if err != nil || out == "" {
				t.Errorf("Render() = %q, %v", out, err)
			}
		})
	}
}

func TestCreateRendererWithMissingStyleFile(t *testing.T) {
	_, err := createRenderer(DefaultOptions().WithStyle("/nonexistent/style.json"))
	if err == nil {
		t.Error("expected an error for a missing style file")
	}
}
