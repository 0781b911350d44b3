package decoder

/*
 * z86 - ModRM and SIB effective address forms.
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
	"github.com/rcornwell/z86/emu/isa"
)

type modRM struct {
	mod uint8
	reg uint8
	rm  uint8
}

func (d *decodeState) readModRM() modRM {
	b := d.src.Pop()
	m := modRM{mod: b >> 6, reg: (b >> 3) & 0x7, rm: b & 0x7}
	if d.mods.RexR {
		m.reg |= 0x8
	}
	return m
}

// rmOperand builds the r/m operand: a register when mod is 3, a memory
// reference otherwise. bits is the access width of the operand.
func (d *decodeState) rmOperand(m modRM, bits int) isa.Operand {
	if m.mod == 3 {
		idx := int(m.rm)
		if d.mods.RexB {
			idx |= 0x8
		}
		return isa.RegOp(d.gpr(idx, bits))
	}
	return isa.MemOp(d.memRef(m, bits))
}

// regOperand builds the register operand from the reg field.
func (d *decodeState) regOperand(m modRM, bits int) isa.Operand {
	return isa.RegOp(d.gpr(int(m.reg), bits))
}

// The 16-bit addressing forms: base and index register per rm value.
var addr16Base = [8]int{isa.IdxB, isa.IdxB, isa.IdxBP, isa.IdxBP, -1, -1, isa.IdxBP, isa.IdxB}
var addr16Index = [8]int{isa.IdxSI, isa.IdxDI, isa.IdxSI, isa.IdxDI, isa.IdxSI, isa.IdxDI, -1, -1}

func (d *decodeState) memRef(m modRM, bits int) isa.MemoryRef {
	if d.addressSize() == 16 {
		return d.memRef16(m, bits)
	}
	return d.memRef32(m, bits)
}

func (d *decodeState) memRef16(m modRM, bits int) isa.MemoryRef {
	ref := isa.MemoryRef{Seg: d.seg, Scale: 1, Bits: uint8(bits)}

	if m.mod == 0 && m.rm == 6 {
		ref.Disp = d.readImm(16)
		return ref
	}

	if base := addr16Base[m.rm]; base >= 0 {
		ref.Base = isa.GPR(base, 16)
	}
	if index := addr16Index[m.rm]; index >= 0 {
		ref.Index = isa.GPR(index, 16)
	}

	switch m.mod {
	case 1:
		ref.Disp = d.readImm(8)
	case 2:
		ref.Disp = d.readImm(16)
	}
	return ref
}

func (d *decodeState) memRef32(m modRM, bits int) isa.MemoryRef {
	abits := d.addressSize()
	ref := isa.MemoryRef{Seg: d.seg, Scale: 1, Bits: uint8(bits)}

	if m.rm == 4 {
		d.readSIB(&ref, m, abits)
	} else if m.mod == 0 && m.rm == 5 {
		// disp32 absolute (RIP-relative addressing is not supported).
		ref.Disp = d.readImm(32)
		return ref
	} else {
		idx := int(m.rm)
		if d.mods.RexB {
			idx |= 0x8
		}
		ref.Base = isa.GPR(idx, abits)
	}

	switch m.mod {
	case 1:
		ref.Disp += d.readImm(8)
	case 2:
		ref.Disp += d.readImm(32)
	}
	return ref
}

func (d *decodeState) readSIB(ref *isa.MemoryRef, m modRM, abits int) {
	sib := d.src.Pop()
	scale := sib >> 6
	index := int((sib >> 3) & 0x7)
	base := int(sib & 0x7)

	if d.mods.RexX {
		index |= 0x8
	}
	if d.mods.RexB {
		base |= 0x8
	}

	if index != 4 {
		ref.Index = isa.GPR(index, abits)
		ref.Scale = 1 << scale
	}

	if base&0x7 == 5 && m.mod == 0 {
		ref.Disp = d.readImm(32)
	} else {
		ref.Base = isa.GPR(base, abits)
	}
}
