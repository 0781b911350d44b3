package cpu

/*
 * z86 - Register file and flags.
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

// Each general purpose register is one 64-bit cell. The 8/16/32-bit
// architectural views are windows into the cell, produced with masking
// and shifting; AH/CH/DH/BH are bits 15..8 of cells 0..3.

// Flag bit positions.
const (
	FlagCF uint64 = 0x0001
	FlagPF uint64 = 0x0004
	FlagAF uint64 = 0x0010
	FlagZF uint64 = 0x0040
	FlagSF uint64 = 0x0080
	FlagTF uint64 = 0x0100
	FlagIF uint64 = 0x0200
	FlagDF uint64 = 0x0400
	FlagOF uint64 = 0x0800
)

// Flags is the 64-bit flags cell. Bit 1 always reads back as 1 through
// the width views.
type Flags struct {
	bits uint64
}

func (f *Flags) CF() bool { return f.bits&FlagCF != 0 }
func (f *Flags) PF() bool { return f.bits&FlagPF != 0 }
func (f *Flags) AF() bool { return f.bits&FlagAF != 0 }
func (f *Flags) ZF() bool { return f.bits&FlagZF != 0 }
func (f *Flags) SF() bool { return f.bits&FlagSF != 0 }
func (f *Flags) TF() bool { return f.bits&FlagTF != 0 }
func (f *Flags) IF() bool { return f.bits&FlagIF != 0 }
func (f *Flags) DF() bool { return f.bits&FlagDF != 0 }
func (f *Flags) OF() bool { return f.bits&FlagOF != 0 }

func (f *Flags) set(mask uint64, on bool) {
	if on {
		f.bits |= mask
	} else {
		f.bits &^= mask
	}
}

func (f *Flags) SetCF(on bool) { f.set(FlagCF, on) }
func (f *Flags) SetPF(on bool) { f.set(FlagPF, on) }
func (f *Flags) SetAF(on bool) { f.set(FlagAF, on) }
func (f *Flags) SetZF(on bool) { f.set(FlagZF, on) }
func (f *Flags) SetSF(on bool) { f.set(FlagSF, on) }
func (f *Flags) SetTF(on bool) { f.set(FlagTF, on) }
func (f *Flags) SetIF(on bool) { f.set(FlagIF, on) }
func (f *Flags) SetDF(on bool) { f.set(FlagDF, on) }
func (f *Flags) SetOF(on bool) { f.set(FlagOF, on) }

// Flags16, EFlags and RFlags are the architectural width views; bit 1
// is forced high.
func (f *Flags) Flags16() uint16 { return uint16(f.bits) | 0x2 }
func (f *Flags) EFlags() uint32  { return uint32(f.bits) | 0x2 }
func (f *Flags) RFlags() uint64  { return f.bits | 0x2 }

// LoadLow8 replaces SF, ZF, AF, PF and CF from an AH image (SAHF).
func (f *Flags) LoadLow8(v uint8) {
	const mask = FlagSF | FlagZF | FlagAF | FlagPF | FlagCF
	f.bits = (f.bits &^ mask) | (uint64(v) & mask)
}

// Load16 replaces the low 16 flag bits, preserving the rest (POPF with
// a 16-bit operand).
func (f *Flags) Load16(v uint16) {
	f.bits = (f.bits &^ 0xFFFF) | uint64(v)
}

// Load32 replaces the stored flags (POPF with a 32-bit operand).
func (f *Flags) Load32(v uint32) {
	f.bits = uint64(v)
}

// Reg8 reads an 8-bit register view.
func (cpu *CPU) Reg8(r isa.Reg) uint8 {
	switch r.Class {
	case isa.ClassHigh:
		return uint8(cpu.gprs[r.Index&0x3] >> 8)
	case isa.ClassGPR:
		return uint8(cpu.gprs[r.Index&0xf])
	}
	fault.Fatalf("regs", "invalid 8-bit register %v", r)
	return 0
}

// SetReg8 writes an 8-bit register view, preserving the rest of the
// cell.
func (cpu *CPU) SetReg8(r isa.Reg, v uint8) {
	switch r.Class {
	case isa.ClassHigh:
		idx := r.Index & 0x3
		cpu.gprs[idx] = (cpu.gprs[idx] &^ 0xFF00) | (uint64(v) << 8)
	case isa.ClassGPR:
		idx := r.Index & 0xf
		cpu.gprs[idx] = (cpu.gprs[idx] &^ 0xFF) | uint64(v)
	default:
		fault.Fatalf("regs", "invalid 8-bit register %v", r)
	}
}

// Reg16 reads a 16-bit register view; segment registers read their
// visible selector.
func (cpu *CPU) Reg16(r isa.Reg) uint16 {
	switch r.Class {
	case isa.ClassSeg:
		return cpu.segs[r.Index]
	case isa.ClassGPR:
		return uint16(cpu.gprs[r.Index&0xf])
	}
	fault.Fatalf("regs", "invalid 16-bit register %v", r)
	return 0
}

// SetReg16 writes a 16-bit register view. A segment selector write
// reloads the hidden descriptor.
func (cpu *CPU) SetReg16(r isa.Reg, v uint16) {
	switch r.Class {
	case isa.ClassSeg:
		cpu.SetSegment(r.Seg(), v)
	case isa.ClassGPR:
		idx := r.Index & 0xf
		cpu.gprs[idx] = (cpu.gprs[idx] &^ 0xFFFF) | uint64(v)
	default:
		fault.Fatalf("regs", "invalid 16-bit register %v", r)
	}
}

// Reg32 reads a 32-bit register view.
func (cpu *CPU) Reg32(r isa.Reg) uint32 {
	if r.Class != isa.ClassGPR {
		fault.Fatalf("regs", "invalid 32-bit register %v", r)
	}
	return uint32(cpu.gprs[r.Index&0xf])
}

// SetReg32 writes a 32-bit register view. In long mode the upper 32
// bits of the cell are cleared, elsewhere they are preserved.
func (cpu *CPU) SetReg32(r isa.Reg, v uint32) {
	if r.Class != isa.ClassGPR {
		fault.Fatalf("regs", "invalid 32-bit register %v", r)
	}
	idx := r.Index & 0xf
	if cpu.mode == isa.Long {
		cpu.gprs[idx] = uint64(v)
	} else {
		cpu.gprs[idx] = (cpu.gprs[idx] &^ 0xFFFFFFFF) | uint64(v)
	}
}

// Reg64 reads the full cell.
func (cpu *CPU) Reg64(r isa.Reg) uint64 {
	if r.Class != isa.ClassGPR {
		fault.Fatalf("regs", "invalid 64-bit register %v", r)
	}
	return cpu.gprs[r.Index&0xf]
}

// SetReg64 writes the full cell.
func (cpu *CPU) SetReg64(r isa.Reg, v uint64) {
	if r.Class != isa.ClassGPR {
		fault.Fatalf("regs", "invalid 64-bit register %v", r)
	}
	cpu.gprs[r.Index&0xf] = v
}

// Segment reads the visible selector of a segment register.
func (cpu *CPU) Segment(seg isa.SegIndex) uint16 {
	return cpu.segs[seg]
}

// SetSegment writes a selector and reloads the hidden descriptor for
// the current mode.
func (cpu *CPU) SetSegment(seg isa.SegIndex, v uint16) {
	cpu.segs[seg] = v
	cpu.smmu.Load(seg, v)
}

// Shorthand accessors for the registers the BCD and flag instructions
// address directly.
func (cpu *CPU) al() uint8  { return uint8(cpu.gprs[isa.IdxA]) }
func (cpu *CPU) ah() uint8  { return uint8(cpu.gprs[isa.IdxA] >> 8) }
func (cpu *CPU) ax() uint16 { return uint16(cpu.gprs[isa.IdxA]) }

func (cpu *CPU) setAL(v uint8) {
	cpu.gprs[isa.IdxA] = (cpu.gprs[isa.IdxA] &^ 0xFF) | uint64(v)
}

func (cpu *CPU) setAH(v uint8) {
	cpu.gprs[isa.IdxA] = (cpu.gprs[isa.IdxA] &^ 0xFF00) | (uint64(v) << 8)
}

func (cpu *CPU) setAX(v uint16) {
	cpu.gprs[isa.IdxA] = (cpu.gprs[isa.IdxA] &^ 0xFFFF) | uint64(v)
}
