package render

import (
	"context"

	"github.com/chromedp/chromedp"
)

// tabPool is a fixed-size, lock-free pool of reusable browser tab
// contexts backed by a buffered channel: acquiring blocks until a tab
// is returned when the pool is exhausted, and releasing never blocks.
// Tabs are created lazily up to size and then only ever recycled.
type tabPool struct {
	allocCtx context.Context
	slots    chan *chromedp.Context
}

func newTabPool(allocCtx context.Context, size int) *tabPool {
	if size < 1 {
		size = 1
	}
	p := &tabPool{allocCtx: allocCtx, slots: make(chan *chromedp.Context, size)}
	for i := 0; i < size; i++ {
		p.slots <- nil // nil means "not yet created"; created lazily on first acquire
	}
	return p
}

// acquire returns a ready tab context, creating it on first use.
func (p *tabPool) acquire() (*chromedp.Context, error) {
	tab := <-p.slots
	if tab != nil {
		return tab, nil
	}
	tabCtx, _ := chromedp.NewContext(p.allocCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		p.slots <- nil
		return nil, err
	}
	return tabCtx, nil
}

// release returns tab to the pool for reuse by the next acquirer.
func (p *tabPool) release(tab *chromedp.Context) {
	p.slots <- tab
}
