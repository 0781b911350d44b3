package mmu

/*
 * z86 - Segmented MMU with hidden descriptor caches.
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
	"github.com/rcornwell/z86/emu/isa"
)

// ModeSource reports the current processor mode. The CPU provides it;
// the segmented MMU never mutates processor state through it.
type ModeSource interface {
	Mode() isa.Mode
}

// SystemDescriptor is the hidden per-segment state loaded on selector
// write and consulted on every access.
type SystemDescriptor struct {
	Base   uint64
	Limit  uint32
	Access uint8
	Flags  uint8
}

// SegmentedAddr is a (segment register, offset) pair.
type SegmentedAddr struct {
	Seg    isa.SegIndex
	Offset uint64
}

// SegmentedMMU resolves segmented addresses to linear addresses through
// the hidden descriptor caches, then forwards to the paged MMU.
type SegmentedMMU struct {
	mode ModeSource
	pmmu *PagedMMU

	gdtBase  uint64
	gdtLimit uint16
	ldtBase  uint64
	ldtLimit uint16

	cached [isa.NumSegs]SystemDescriptor
}

// NewSegmentedMMU builds a segmented MMU over pmmu. The mode source is
// wired afterwards since the CPU is constructed around its MMUs.
func NewSegmentedMMU(pmmu *PagedMMU) *SegmentedMMU {
	return &SegmentedMMU{pmmu: pmmu}
}

// SetModeSource installs the processor mode callback.
func (s *SegmentedMMU) SetModeSource(mode ModeSource) {
	s.mode = mode
}

// Reset seeds the descriptor caches with the architectural power-on
// state: CS maps the top of the physical address space so the first
// fetch after reset reads the ROM at 0xFFFFFFF0, everything else is a
// 64K window at zero.
func (s *SegmentedMMU) Reset() {
	for i := range s.cached {
		s.cached[i] = SystemDescriptor{Base: 0, Limit: 0xFFFF}
	}
	s.cached[isa.CS] = SystemDescriptor{Base: 0xFFFF0000, Limit: 0xFFFF}
	s.gdtBase, s.gdtLimit = 0, 0xFFFF
	s.ldtBase, s.ldtLimit = 0, 0xFFFF
}

// Load recomputes the hidden descriptor for a selector write. The
// descriptor persists even if the mode later changes.
func (s *SegmentedMMU) Load(seg isa.SegIndex, selector uint16) {
	if seg >= isa.NumSegs {
		fault.Fatalf("mmu", "invalid segment register %d", seg)
	}

	switch s.mode.Mode() {
	case isa.Real:
		s.cached[seg] = SystemDescriptor{
			Base:  uint64(selector) * 0x10,
			Limit: 0xFFFFFFFF,
		}
	default:
		// Descriptor table walk through GDTR/LDTR. Not supported;
		// the core only runs real mode programs.
		fault.Fatalf("mmu", "descriptor load in %v mode not implemented", s.mode.Mode())
	}
}

// Descriptor returns the hidden descriptor for a segment register.
func (s *SegmentedMMU) Descriptor(seg isa.SegIndex) SystemDescriptor {
	return s.cached[seg]
}

// Resolve turns a segmented address into a linear address.
func (s *SegmentedMMU) Resolve(addr SegmentedAddr) VirtAddr {
	return VirtAddr(s.cached[addr.Seg].Base + addr.Offset)
}

func (s *SegmentedMMU) Read8(addr SegmentedAddr) uint8   { return s.pmmu.Read8(s.Resolve(addr)) }
func (s *SegmentedMMU) Read16(addr SegmentedAddr) uint16 { return s.pmmu.Read16(s.Resolve(addr)) }
func (s *SegmentedMMU) Read32(addr SegmentedAddr) uint32 { return s.pmmu.Read32(s.Resolve(addr)) }
func (s *SegmentedMMU) Read64(addr SegmentedAddr) uint64 { return s.pmmu.Read64(s.Resolve(addr)) }

func (s *SegmentedMMU) Write8(addr SegmentedAddr, value uint8)   { s.pmmu.Write8(s.Resolve(addr), value) }
func (s *SegmentedMMU) Write16(addr SegmentedAddr, value uint16) { s.pmmu.Write16(s.Resolve(addr), value) }
func (s *SegmentedMMU) Write32(addr SegmentedAddr, value uint32) { s.pmmu.Write32(s.Resolve(addr), value) }
func (s *SegmentedMMU) Write64(addr SegmentedAddr, value uint64) { s.pmmu.Write64(s.Resolve(addr), value) }
