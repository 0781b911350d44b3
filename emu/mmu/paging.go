package mmu

/*
 * z86 - Paged MMU, virtual to physical translation.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

import (
	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/memory"
)

// VirtAddr is a linear address before page translation.
type VirtAddr uint64

// PagedMMU translates virtual to physical addresses. Only the disabled
// state is implemented: translation is the identity. The enable surface
// is kept so a page walker can slot in underneath Resolve.
type PagedMMU struct {
	enabled bool
	memcon  *memory.Controller
}

// NewPagedMMU builds a paged MMU forwarding to memcon.
func NewPagedMMU(memcon *memory.Controller) *PagedMMU {
	return &PagedMMU{memcon: memcon}
}

// Resolve translates a virtual address to a physical one.
func (p *PagedMMU) Resolve(addr VirtAddr) memory.PhysAddr {
	if p.enabled {
		fault.Fatalf("mmu", "page translation not implemented")
	}
	return memory.PhysAddr(addr)
}

func (p *PagedMMU) Enable()       { p.enabled = true }
func (p *PagedMMU) Disable()      { p.enabled = false }
func (p *PagedMMU) Enabled() bool { return p.enabled }

func (p *PagedMMU) Read8(addr VirtAddr) uint8   { return p.memcon.Read8(p.Resolve(addr)) }
func (p *PagedMMU) Read16(addr VirtAddr) uint16 { return p.memcon.Read16(p.Resolve(addr)) }
func (p *PagedMMU) Read32(addr VirtAddr) uint32 { return p.memcon.Read32(p.Resolve(addr)) }
func (p *PagedMMU) Read64(addr VirtAddr) uint64 { return p.memcon.Read64(p.Resolve(addr)) }

func (p *PagedMMU) Write8(addr VirtAddr, value uint8)   { p.memcon.Write8(p.Resolve(addr), value) }
func (p *PagedMMU) Write16(addr VirtAddr, value uint16) { p.memcon.Write16(p.Resolve(addr), value) }
func (p *PagedMMU) Write32(addr VirtAddr, value uint32) { p.memcon.Write32(p.Resolve(addr), value) }
func (p *PagedMMU) Write64(addr VirtAddr, value uint64) { p.memcon.Write64(p.Resolve(addr), value) }
