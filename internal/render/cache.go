package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// rendererPool hands out glamour renderers per Options. A TermRenderer must
// not be used by two goroutines at once, so each caller borrows one and
// gives it back.
type rendererPool struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var globalPool = newRendererPool()

func newRendererPool() *rendererPool {
	return &rendererPool{pools: make(map[Options]*sync.Pool)}
}

// poolFor returns the pool for opts, creating it on first use
func (p *rendererPool) poolFor(opts Options) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool, ok := p.pools[opts]
	if !ok {
		pool = &sync.Pool{}
		p.pools[opts] = pool
	}
	return pool
}

// get borrows a renderer for opts, building one when the pool is empty
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	if r, ok := p.poolFor(opts).Get().(*glamour.TermRenderer); ok {
		return r, nil
	}
	return createRenderer(opts)
}

// put returns a borrowed renderer
func (p *rendererPool) put(opts Options, renderer *glamour.TermRenderer) {
	if renderer != nil {
		p.poolFor(opts).Put(renderer)
	}
}

// size reports how many distinct option sets have a pool
func (p *rendererPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

func (p *rendererPool) clear() {
	p.mu.Lock()
	p.pools = make(map[Options]*sync.Pool)
	p.mu.Unlock()
}

// createRenderer builds a TermRenderer for opts
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		styleOption(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pooled renderer, e.g. after the style file changed.
func ClearCache() {
	globalPool.clear()
}

// CacheSize returns the number of option sets with a renderer pool.
func CacheSize() int {
	return globalPool.size()
}
