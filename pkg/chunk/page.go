package chunk

import (
	"runtime"

	"ChunkStream/pkg/utils"
	"go.uber.org/atomic"
)

var logger = utils.GetLogger("chunkstream")

// Page is a single chunk of a buffer. Its capacity is fixed when it is allocated.
type Page struct {
	released atomic.Bool
	offHeap  bool
	Data     []byte
}

// NewPage create a new page on the Go heap.
func NewPage(size int) *Page {
	if size <= 0 {
		panic("size of page should > 0")
	}
	return &Page{Data: make([]byte, size)}
}

// NewOffPage maps a page outside the Go heap, it falls back to NewPage when mapping fails.
func NewOffPage(size int) *Page {
	if size <= 0 {
		panic("size of page should > 0")
	}
	p, err := utils.Alloc(size)
	if err != nil {
		logger.Warnf("alloc off-heap page: %s, use heap instead", err)
		return NewPage(size)
	}
	page := &Page{offHeap: true, Data: p[:size]}
	runtime.SetFinalizer(page, func(p *Page) {
		if !p.released.Load() {
			logger.Errorf("page %p of %d bytes is not released", p, len(p.Data))
			p.Release()
		}
	})
	return page
}

// OffHeap reports whether the page lives outside the Go heap.
func (p *Page) OffHeap() bool {
	return p.offHeap
}

// Release frees the memory of the page, calling it more than once is a no-op.
func (p *Page) Release() {
	if !p.released.CAS(false, true) {
		return
	}
	if p.offHeap {
		utils.Free(p.Data)
	}
	p.Data = nil
}
