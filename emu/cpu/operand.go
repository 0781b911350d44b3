package cpu

/*
 * z86 - Operand resolution.
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
	"math/bits"

	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/isa"
	"github.com/rcornwell/z86/emu/mmu"
)

// value is a width-tagged integer. Flag computation and operand
// plumbing is shared across widths by carrying the width with the
// number.
type value struct {
	bits uint8
	v    uint64
}

func newValue(width int, v uint64) value {
	return value{bits: uint8(width), v: v}
}

func (x value) mask() uint64 {
	if x.bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << x.bits) - 1
}

// get returns the value truncated to its width.
func (x value) get() uint64 { return x.v & x.mask() }

// signBit returns the top bit mask of the width.
func (x value) signBit() uint64 { return uint64(1) << (x.bits - 1) }

func (x value) sign() bool { return x.v&x.signBit() != 0 }
func (x value) zero() bool { return x.get() == 0 }

// parity is even parity of the low byte, which is all the parity flag
// ever looks at.
func (x value) parity() bool {
	return bits.OnesCount8(uint8(x.v))%2 == 0
}

// operandSize applies the operand sizing rule at execution time, for
// instructions whose width is not carried by an operand. def64 marks
// the stack and near branch opcodes that default to 64 bits in long
// mode.
func (cpu *CPU) operandSize(mods *isa.Modifiers, def64 bool) int {
	if cpu.mode == isa.Real {
		if mods.OperandSizeOverride {
			return 32
		}
		return 16
	}
	if mods.OperandSizeOverride {
		return 16
	}
	if mods.RexW || (cpu.mode == isa.Long && def64) {
		return 64
	}
	return 32
}

// addressSize applies the address sizing rule.
func (cpu *CPU) addressSize(mods *isa.Modifiers) int {
	switch cpu.mode {
	case isa.Real:
		if mods.AddressSizeOverride {
			return 32
		}
		return 16
	case isa.Prot:
		if mods.AddressSizeOverride {
			return 16
		}
		return 32
	default:
		if mods.AddressSizeOverride {
			return 32
		}
		return 64
	}
}

// resolveMemory computes the segmented address of a memory reference:
// base + index*scale + displacement, masked to the address width. The
// segment defaults to DS without an explicit override.
func (cpu *CPU) resolveMemory(mods *isa.Modifiers, mem *isa.MemoryRef) mmu.SegmentedAddr {
	seg := isa.DS
	if mem.Seg.Present() {
		seg = mem.Seg.Seg()
	}

	var ofs, idx uint64
	if mem.Base.Present() {
		ofs = cpu.regAt(mem.Base)
	}
	if mem.Index.Present() {
		idx = cpu.regAt(mem.Index)
	}

	ofs += idx * uint64(mem.Scale)
	ofs += uint64(mem.Disp)

	switch cpu.addressSize(mods) {
	case 16:
		ofs &= 0xFFFF
	case 32:
		ofs &= 0xFFFFFFFF
	}

	return mmu.SegmentedAddr{Seg: seg, Offset: ofs}
}

// regAt reads a base or index register at the width the decoder
// selected for it.
func (cpu *CPU) regAt(r isa.Reg) uint64 {
	switch r.Bits {
	case 16:
		return uint64(cpu.Reg16(r))
	case 32:
		return uint64(cpu.Reg32(r))
	default:
		return cpu.Reg64(r)
	}
}

// getOperand reads an operand as a width-tagged value. Relative offsets
// and far pointers are interpreted by the branch handlers, never here.
func (cpu *CPU) getOperand(mods *isa.Modifiers, op *isa.Operand) value {
	switch op.Kind {
	case isa.KindReg:
		switch op.Reg.Bits {
		case 8:
			return newValue(8, uint64(cpu.Reg8(op.Reg)))
		case 16:
			return newValue(16, uint64(cpu.Reg16(op.Reg)))
		case 32:
			return newValue(32, uint64(cpu.Reg32(op.Reg)))
		case 64:
			return newValue(64, cpu.Reg64(op.Reg))
		}
	case isa.KindImm:
		return newValue(int(op.ImmBits), uint64(op.Imm))
	case isa.KindMem:
		addr := cpu.resolveMemory(mods, &op.Mem)
		switch op.Mem.Bits {
		case 8:
			return newValue(8, uint64(cpu.smmu.Read8(addr)))
		case 16:
			return newValue(16, uint64(cpu.smmu.Read16(addr)))
		case 32:
			return newValue(32, uint64(cpu.smmu.Read32(addr)))
		case 64:
			return newValue(64, cpu.smmu.Read64(addr))
		}
	}
	fault.Fatalf("exec", "cannot read operand kind %d", op.Kind)
	return value{}
}

// setOperand writes a value back to a register or memory operand; any
// other destination kind is fatal.
func (cpu *CPU) setOperand(mods *isa.Modifiers, op *isa.Operand, v value) {
	switch op.Kind {
	case isa.KindReg:
		switch op.Reg.Bits {
		case 8:
			cpu.SetReg8(op.Reg, uint8(v.v))
			return
		case 16:
			cpu.SetReg16(op.Reg, uint16(v.v))
			return
		case 32:
			cpu.SetReg32(op.Reg, uint32(v.v))
			return
		case 64:
			cpu.SetReg64(op.Reg, v.v)
			return
		}
	case isa.KindMem:
		addr := cpu.resolveMemory(mods, &op.Mem)
		switch op.Mem.Bits {
		case 8:
			cpu.smmu.Write8(addr, uint8(v.v))
			return
		case 16:
			cpu.smmu.Write16(addr, uint16(v.v))
			return
		case 32:
			cpu.smmu.Write32(addr, uint32(v.v))
			return
		case 64:
			cpu.smmu.Write64(addr, v.v)
			return
		}
	}
	fault.Fatalf("exec", "destination operand is not a register or memory")
}
