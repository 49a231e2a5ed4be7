package chunk

import (
	"sync"
	"time"
)

type poolItem struct {
	seq   uint64
	atime time.Time
	page  *Page
}

// PagePool keeps released pages for reuse, grouped by size.
// It is safe to share one pool between many buffers.
type PagePool struct {
	sync.Mutex
	capacity int64
	used     int64
	seq      uint64
	pages    map[int][]poolItem
}

// NewPagePool returns a pool that holds at most capacity bytes of idle pages.
func NewPagePool(capacity int64) *PagePool {
	return &PagePool{
		capacity: capacity,
		pages:    make(map[int][]poolItem),
	}
}

// Stats returns the number and total size of idle pages.
func (c *PagePool) Stats() (int64, int64) {
	c.Lock()
	defer c.Unlock()
	var cnt int64
	for _, items := range c.pages {
		cnt += int64(len(items))
	}
	return cnt, c.used
}

// Get returns a zeroed page of the given size, or nil if none is idle.
func (c *PagePool) Get(size int) *Page {
	c.Lock()
	items := c.pages[size]
	if len(items) == 0 {
		c.Unlock()
		return nil
	}
	// newest first, it is most likely still in CPU cache
	item := items[len(items)-1]
	items[len(items)-1] = poolItem{}
	c.pages[size] = items[:len(items)-1]
	c.used -= int64(size)
	c.Unlock()

	clear(item.page.Data)
	return item.page
}

// Put hands the page over to the pool, the caller must not use it anymore.
func (c *PagePool) Put(p *Page) {
	size := len(p.Data)
	if size == 0 {
		return
	}
	if int64(size) > c.capacity {
		p.Release()
		return
	}
	c.Lock()
	defer c.Unlock()
	c.seq++
	c.pages[size] = append(c.pages[size], poolItem{c.seq, time.Now(), p})
	c.used += int64(size)
	if c.used > c.capacity {
		c.cleanup()
	}
}

// locked
func (c *PagePool) cleanup() {
	now := time.Now()
	for c.used > c.capacity {
		var oldest int
		var found bool
		// the head of each list is its oldest item
		for size, items := range c.pages {
			if len(items) == 0 {
				continue
			}
			if !found || items[0].seq < c.pages[oldest][0].seq {
				oldest = size
				found = true
			}
		}
		if !found {
			return
		}
		items := c.pages[oldest]
		item := items[0]
		items[0] = poolItem{}
		c.pages[oldest] = items[1:]
		c.used -= int64(oldest)
		logger.Debugf("evict page of %d bytes from pool, age: %s", oldest, now.Sub(item.atime))
		item.page.Release()
	}
}
