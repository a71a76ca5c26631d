package buddy

import (
	"unsafe"

	"github.com/cloudwego/memkit/unsafex"
)

// grow acquires fresh memory from the page source and installs it as free
// root chunks, at least one of which has order >= want. The first grow
// requests DefaultHeapBytes, or the wanted block size if that is larger;
// later grows request at least the current heap
// footprint so the heap at least doubles, keeping the amortized grow cost
// constant under a monotonically expanding workload. Returns a chunk of
// order >= want now sitting on its free list, or nil if the source refused.
func (a *Allocator) grow(want int32) *chunk {
	bytes := a.minBlockSize << want
	if a.heapBytes == 0 {
		if bytes < DefaultHeapBytes {
			bytes = DefaultHeapBytes
		}
	} else if bytes < a.heapBytes {
		bytes = a.heapBytes
	}

	// Root order: the largest block that fits the request, capped at
	// maxOrder and never below the wanted order.
	root := a.maxOrder
	for root > want && a.minBlockSize<<root > bytes {
		root--
	}
	rootSize := a.minBlockSize << root
	bytes = (bytes + rootSize - 1) &^ (rootSize - 1)

	buf, err := a.src.Acquire(bytes)
	if err != nil {
		return nil
	}
	return a.install(buf, root)
}

// install records buf as a new region and pushes its root chunks, returning
// the last one pushed. A page-rounded surplus from the source becomes extra
// root chunks; a sub-root remainder is unusable and dropped.
func (a *Allocator) install(buf []byte, root int32) *chunk {
	rootSize := a.minBlockSize << root
	n := len(buf) / rootSize
	if n == 0 {
		return nil
	}
	a.regions = append(a.regions, region{
		buf:  buf,
		base: unsafex.DataPtr(buf),
		size: n * rootSize,
		root: root,
	})
	r := &a.regions[len(a.regions)-1]
	a.heapBytes += r.size

	var c *chunk
	for off := 0; off < r.size; off += rootSize {
		c = (*chunk)(unsafe.Add(r.base, off))
		c.state = stateFree
		c.order = root
		a.pushFree(c)
	}
	return c
}
