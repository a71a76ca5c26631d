// Package buddy implements a power-of-two buddy memory allocator over a
// pluggable page source. Allocators are not safe for concurrent use.
package buddy

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/cloudwego/memkit/pagesource"
	"github.com/cloudwego/memkit/unsafex"
)

const (
	// DefaultMinBlockSize is the default payload granularity (order-0 block size).
	DefaultMinBlockSize = 32

	// DefaultMaxBlockSize is the default largest block size. With the default
	// minimum this yields 8 orders.
	DefaultMaxBlockSize = 4 * 1024

	// DefaultHeapBytes is the amount requested from the page source on the
	// first grow.
	DefaultHeapBytes = 4 * 1024
)

// Allocator is a buddy system allocator. All state is per instance; create
// one with New or NewWithBlockSize.
type Allocator struct {
	src pagesource.Source

	// freeLists[k] heads the doubly-linked list of free chunks of order k.
	freeLists []*chunk

	// regions tracks every stretch of memory acquired from src.
	regions []region

	// minBlockSize is the order-0 block size.
	minBlockSize int
	// minBlockShift is log2(minBlockSize).
	minBlockShift int
	// maxBlockSize is minBlockSize << maxOrder.
	maxBlockSize int
	// maxOrder is the largest order, len(freeLists)-1.
	maxOrder int32

	// heapBytes is the total bytes installed from the page source.
	heapBytes int
}

// New creates an allocator with the default block sizes (32B min, 4KB max)
// drawing memory from src.
func New(src pagesource.Source) (*Allocator, error) {
	return NewWithBlockSize(src, DefaultMinBlockSize, DefaultMaxBlockSize)
}

// NewWithBlockSize creates an allocator with custom block sizes. Both
// minBlock and maxBlock must be powers of two, minBlock must exceed the
// chunk header, and minBlock <= maxBlock.
func NewWithBlockSize(src pagesource.Source, minBlock, maxBlock int) (*Allocator, error) {
	if src == nil {
		return nil, fmt.Errorf("buddy: nil page source")
	}
	if minBlock <= 0 || minBlock&(minBlock-1) != 0 {
		return nil, fmt.Errorf("buddy: minBlockSize must be a power of two, got %d", minBlock)
	}
	if maxBlock <= 0 || maxBlock&(maxBlock-1) != 0 {
		return nil, fmt.Errorf("buddy: maxBlockSize must be a power of two, got %d", maxBlock)
	}
	if minBlock <= headerSize {
		return nil, fmt.Errorf("buddy: minBlockSize must be > headerSize (%d), got %d", headerSize, minBlock)
	}
	if minBlock > maxBlock {
		return nil, fmt.Errorf("buddy: minBlockSize (%d) must be <= maxBlockSize (%d)", minBlock, maxBlock)
	}

	minShift := bits.TrailingZeros(uint(minBlock))
	maxShift := bits.TrailingZeros(uint(maxBlock))
	maxOrder := maxShift - minShift

	return &Allocator{
		src:           src,
		freeLists:     make([]*chunk, maxOrder+1),
		minBlockSize:  minBlock,
		minBlockShift: minShift,
		maxBlockSize:  maxBlock,
		maxOrder:      int32(maxOrder),
	}, nil
}

// Alloc returns a block of at least size bytes, or nil if size is not
// positive, no block order can hold size plus its header, or the page source
// is exhausted. The returned slice has len size; its cap is the full payload
// of the block.
func (a *Allocator) Alloc(size int) []byte {
	if size <= 0 || size > a.maxBlockSize-headerSize {
		return nil
	}
	order := a.orderForSize(size + headerSize)

	// Fast path: exact order match.
	if c := a.freeLists[order]; c != nil {
		a.unlink(c)
		return a.take(c, size)
	}
	return a.allocSlow(size, order)
}

func (a *Allocator) allocSlow(size int, order int32) []byte {
	// Scan upward for the smallest satisfying order.
	var donor *chunk
	for o := order + 1; o <= a.maxOrder; o++ {
		if c := a.freeLists[o]; c != nil {
			donor = c
			break
		}
	}
	if donor == nil {
		donor = a.grow(order)
		if donor == nil {
			return nil
		}
	}
	a.unlink(donor)
	a.cascadeSplit(donor, order)
	return a.take(donor, size)
}

// cascadeSplit halves c down to target order, pushing each right half onto
// its order's free list. c must not be on any free list.
func (a *Allocator) cascadeSplit(c *chunk, target int32) {
	for c.order > target {
		c.order--
		right := (*chunk)(unsafe.Add(unsafe.Pointer(c), a.minBlockSize<<c.order))
		right.state = stateFree
		right.order = c.order
		a.pushFree(right)
	}
}

// take marks c in use and returns its payload.
func (a *Allocator) take(c *chunk, size int) []byte {
	c.state = stateInUse
	c.next, c.prev = nil, nil
	payload := (a.minBlockSize << c.order) - headerSize
	p := (*byte)(unsafe.Add(unsafe.Pointer(c), headerSize))
	return unsafe.Slice(p, payload)[:size]
}

// Free returns a block to the allocator, merging it with its buddy as long
// as the buddy is free and of equal order. A nil or zero-cap block is a
// no-op. Panics on a double free, on a pointer not produced by Alloc, or on
// a corrupted header.
//
// The block must be the original slice returned by Alloc; do not reslice
// from the front before freeing.
func (a *Allocator) Free(block []byte) {
	if cap(block) == 0 {
		return
	}
	hdr := (*chunk)(unsafe.Add(unsafex.DataPtr(block), -headerSize))
	r := a.regionOf(uintptr(unsafe.Pointer(hdr)))
	if r == nil {
		panic("buddy: block not in heap")
	}
	switch hdr.state {
	case stateInUse:
	case stateFree:
		panic("buddy: double free")
	default:
		panic("buddy: invalid block")
	}
	if hdr.order < 0 || hdr.order > r.root {
		panic("buddy: corrupted order")
	}
	off := int(uintptr(unsafe.Pointer(hdr)) - uintptr(r.base))
	if off&((a.minBlockSize<<hdr.order)-1) != 0 {
		panic("buddy: misaligned block")
	}

	c := hdr
	for {
		b := a.buddyOf(r, c)
		if b == nil || b.state != stateFree || b.order != c.order {
			break
		}
		a.unlink(b)
		lo, hi := c, b
		if uintptr(unsafe.Pointer(b)) < uintptr(unsafe.Pointer(c)) {
			lo, hi = b, c
		}
		// The higher header becomes payload of the survivor; scrub its state
		// so stale bytes can never look like a free chunk.
		hi.state = 0
		lo.order = c.order + 1
		c = lo
	}
	c.state = stateFree
	a.pushFree(c)
}

// Available returns the total free payload bytes across all orders.
func (a *Allocator) Available() int {
	total := 0
	for order, c := range a.freeLists {
		blockSize := a.minBlockSize << order
		for ; c != nil; c = c.next {
			total += blockSize - headerSize
		}
	}
	return total
}

// Reset discards all allocations and re-installs every region as free root
// chunks. Blocks handed out before Reset must not be used or freed afterwards.
func (a *Allocator) Reset() {
	for i := range a.freeLists {
		a.freeLists[i] = nil
	}
	for i := range a.regions {
		r := &a.regions[i]
		rootSize := a.minBlockSize << r.root
		for off := 0; off < r.size; off += rootSize {
			c := (*chunk)(unsafe.Add(r.base, off))
			c.state = stateFree
			c.order = r.root
			a.pushFree(c)
		}
	}
}

// MinBlockSize returns the order-0 block size.
func (a *Allocator) MinBlockSize() int { return a.minBlockSize }

// MaxBlockSize returns the largest block size; the largest possible
// allocation is MaxBlockSize() minus the header.
func (a *Allocator) MaxBlockSize() int { return a.maxBlockSize }

// HeapBytes returns the total bytes installed from the page source.
func (a *Allocator) HeapBytes() int { return a.heapBytes }
