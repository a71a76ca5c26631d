//go:build linux || darwin

/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pagesource

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped acquires an independent anonymous mapping per call.
// Each mapping is page-aligned and page-rounded, so callers usually receive
// more bytes than requested.
type Mapped struct {
	mappings [][]byte
	pageSize int
}

// NewMapped creates a mapping source.
func NewMapped() *Mapped {
	return &Mapped{pageSize: os.Getpagesize()}
}

// Acquire maps n bytes (rounded up to a whole page) of fresh anonymous memory.
func (m *Mapped) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pagesource: invalid acquire size %d", n)
	}
	n = alignUp(n, m.pageSize)
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, ErrNoMemory
	}
	m.mappings = append(m.mappings, b)
	return b, nil
}

// Close unmaps every region handed out by Acquire. All memory acquired from
// this source becomes invalid.
func (m *Mapped) Close() error {
	var first error
	for _, b := range m.mappings {
		if err := unix.Munmap(b); err != nil && first == nil {
			first = err
		}
	}
	m.mappings = nil
	return first
}

// Contig emulates a break-style contiguous heap. One fixed reservation is
// committed left to right; each Acquire returns the previous end of heap, so
// consecutive acquisitions are adjacent in memory.
type Contig struct {
	reserved []byte
	brk      int
	pageSize int
}

// NewContig reserves maxBytes (rounded up to a whole page) of address space.
// No memory is committed until Acquire.
func NewContig(maxBytes int) (*Contig, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("pagesource: invalid reservation size %d", maxBytes)
	}
	pageSize := os.Getpagesize()
	maxBytes = alignUp(maxBytes, pageSize)
	b, err := unix.Mmap(-1, 0, maxBytes, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &Contig{reserved: b, pageSize: pageSize}, nil
}

// Acquire commits the next n bytes (rounded up to a whole page) of the
// reservation and advances the break past them.
func (c *Contig) Acquire(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pagesource: invalid acquire size %d", n)
	}
	n = alignUp(n, c.pageSize)
	if c.brk+n > len(c.reserved) {
		return nil, ErrNoMemory
	}
	piece := c.reserved[c.brk : c.brk+n : c.brk+n]
	if err := unix.Mprotect(piece, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return nil, err
	}
	c.brk += n
	return piece, nil
}

// Brk reports the current end of heap as an offset from the reservation base.
func (c *Contig) Brk() int {
	return c.brk
}

// Close unmaps the whole reservation. All memory acquired from this source
// becomes invalid.
func (c *Contig) Close() error {
	if c.reserved == nil {
		return nil
	}
	err := unix.Munmap(c.reserved)
	c.reserved = nil
	return err
}
