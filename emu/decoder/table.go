package decoder

/*
 * z86 - One byte and 0F opcode pages.
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
	op "github.com/rcornwell/z86/emu/opcode"
)

func mk(o op.Op, operands ...isa.Operand) *isa.Instruction {
	instr := &isa.Instruction{Opcode: o}
	for _, o := range operands {
		instr.AddOperand(o)
	}
	return instr
}

// The ALU block: eight operations, six encodings each, at base+0..base+5.
var aluOps = map[uint8]op.Op{
	0x00: op.Add, 0x08: op.Or, 0x10: op.Adc, 0x18: op.Sbb,
	0x20: op.And, 0x28: op.Sub, 0x30: op.Xor, 0x38: op.Cmp,
}

// Group 1 (80/81/83): operation selected by the reg field.
var group1Ops = [8]op.Op{op.Add, op.Or, op.Adc, op.Sbb, op.And, op.Sub, op.Xor, op.Cmp}

// Jcc in encoding order for 70..7F and 0F 80..8F.
var jccOps = [16]op.Op{
	op.Jo, op.Jno, op.Jb, op.Jnb, op.Jz, op.Jnz, op.Jna, op.Ja,
	op.Js, op.Jns, op.Jp, op.Jnp, op.Jl, op.Jge, op.Jle, op.Jg,
}

// opcodeByte decodes the instruction for one opcode byte (prefixes
// already consumed).
func (d *decodeState) opcodeByte(b uint8) *isa.Instruction {
	// The ALU block covers 00..3D with the BCD adjusts and segment
	// stack ops punched into the holes.
	if b < 0x40 {
		if o, ok := aluOps[b&0xF8]; ok && b&0x7 < 6 {
			return d.alu(o, b&0x7)
		}
	}

	switch {
	case b >= 0x40 && b <= 0x47:
		return mk(op.Inc, isa.RegOp(isa.GPR(int(b-0x40), d.operandSize(false))))
	case b >= 0x48 && b <= 0x4F:
		return mk(op.Dec, isa.RegOp(isa.GPR(int(b-0x48), d.operandSize(false))))
	case b >= 0x50 && b <= 0x57:
		return mk(op.Push, isa.RegOp(d.stackReg(b-0x50)))
	case b >= 0x58 && b <= 0x5F:
		return mk(op.Pop, isa.RegOp(d.stackReg(b-0x58)))
	case b >= 0x70 && b <= 0x7F:
		return mk(jccOps[b-0x70], isa.RelOp(d.readImm(8)))
	case b >= 0x90 && b <= 0x97:
		if b == 0x90 {
			return mk(op.Nop)
		}
		size := d.operandSize(false)
		idx := int(b - 0x90)
		if d.mods.RexB {
			idx |= 0x8
		}
		return mk(op.Xchg, isa.RegOp(isa.GPR(isa.IdxA, size)),
			isa.RegOp(isa.GPR(idx, size)))
	case b >= 0xB0 && b <= 0xB7:
		idx := int(b - 0xB0)
		if d.mods.RexB {
			idx |= 0x8
		}
		return mk(op.Mov, isa.RegOp(d.gpr(idx, 8)), isa.ImmOp(d.readImm(8), 8))
	case b >= 0xB8 && b <= 0xBF:
		size := d.operandSize(false)
		idx := int(b - 0xB8)
		if d.mods.RexB {
			idx |= 0x8
		}
		return mk(op.Mov, isa.RegOp(d.gpr(idx, size)),
			isa.ImmOp(d.readImm(size), size))
	}

	switch b {
	case 0x06:
		return mk(op.Push, isa.RegOp(isa.Segment(isa.ES)))
	case 0x07:
		return mk(op.Pop, isa.RegOp(isa.Segment(isa.ES)))
	case 0x0E:
		return mk(op.Push, isa.RegOp(isa.Segment(isa.CS)))
	case 0x0F:
		return d.page0F(d.src.Pop())
	case 0x16:
		return mk(op.Push, isa.RegOp(isa.Segment(isa.SS)))
	case 0x17:
		return mk(op.Pop, isa.RegOp(isa.Segment(isa.SS)))
	case 0x1E:
		return mk(op.Push, isa.RegOp(isa.Segment(isa.DS)))
	case 0x1F:
		return mk(op.Pop, isa.RegOp(isa.Segment(isa.DS)))
	case 0x27:
		return mk(op.Daa)
	case 0x2F:
		return mk(op.Das)
	case 0x37:
		return mk(op.Aaa)
	case 0x3F:
		return mk(op.Aas)

	case 0x68:
		size := d.operandSize(true)
		return mk(op.Push, isa.ImmOp(d.readImm(immZBits(size)), size))
	case 0x6A:
		size := d.operandSize(true)
		return mk(op.Push, isa.ImmOp(d.readImm(8), size))

	case 0x80, 0x82:
		m := d.readModRM()
		return mk(group1Ops[m.reg&0x7], d.rmOperand(m, 8), isa.ImmOp(d.readImm(8), 8))
	case 0x81:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(group1Ops[m.reg&0x7], d.rmOperand(m, size),
			isa.ImmOp(d.readImm(immZBits(size)), size))
	case 0x83:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(group1Ops[m.reg&0x7], d.rmOperand(m, size),
			isa.ImmOp(d.readImm(8), size))

	case 0x84:
		m := d.readModRM()
		return mk(op.Test, d.rmOperand(m, 8), d.regOperand(m, 8))
	case 0x85:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(op.Test, d.rmOperand(m, size), d.regOperand(m, size))
	case 0x86:
		m := d.readModRM()
		return mk(op.Xchg, d.rmOperand(m, 8), d.regOperand(m, 8))
	case 0x87:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(op.Xchg, d.rmOperand(m, size), d.regOperand(m, size))

	case 0x88:
		m := d.readModRM()
		return mk(op.Mov, d.rmOperand(m, 8), d.regOperand(m, 8))
	case 0x89:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(op.Mov, d.rmOperand(m, size), d.regOperand(m, size))
	case 0x8A:
		m := d.readModRM()
		return mk(op.Mov, d.regOperand(m, 8), d.rmOperand(m, 8))
	case 0x8B:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(op.Mov, d.regOperand(m, size), d.rmOperand(m, size))
	case 0x8C:
		m := d.readModRM()
		return mk(op.Mov, d.rmOperand(m, 16), isa.RegOp(d.sreg(m.reg&0x7)))
	case 0x8E:
		m := d.readModRM()
		return mk(op.Mov, isa.RegOp(d.sreg(m.reg&0x7)), d.rmOperand(m, 16))
	case 0x8F:
		size := d.operandSize(true)
		m := d.readModRM()
		if m.reg&0x7 != 0 {
			return d.invalid(b)
		}
		return mk(op.Pop, d.rmOperand(m, size))

	case 0x9A:
		size := d.operandSize(false)
		ofs := uint64(d.readImm(size)) & widthMask(size)
		seg := uint16(d.readImm(16))
		return mk(op.Call, isa.FarOp(isa.FarPointer{Seg: seg, Offset: ofs}))
	case 0x9C:
		return mk(op.Pushf)
	case 0x9D:
		return mk(op.Popf)
	case 0x9E:
		return mk(op.Sahf)
	case 0x9F:
		return mk(op.Lahf)

	case 0xA0:
		return mk(op.Mov, isa.RegOp(isa.GPR(isa.IdxA, 8)), d.moffs(8))
	case 0xA1:
		size := d.operandSize(false)
		return mk(op.Mov, isa.RegOp(isa.GPR(isa.IdxA, size)), d.moffs(size))
	case 0xA2:
		return mk(op.Mov, d.moffs(8), isa.RegOp(isa.GPR(isa.IdxA, 8)))
	case 0xA3:
		size := d.operandSize(false)
		return mk(op.Mov, d.moffs(size), isa.RegOp(isa.GPR(isa.IdxA, size)))

	case 0xA8:
		return mk(op.Test, isa.RegOp(isa.GPR(isa.IdxA, 8)), isa.ImmOp(d.readImm(8), 8))
	case 0xA9:
		size := d.operandSize(false)
		return mk(op.Test, isa.RegOp(isa.GPR(isa.IdxA, size)),
			isa.ImmOp(d.readImm(immZBits(size)), size))

	case 0xC2:
		return mk(op.Ret, isa.ImmOp(d.readImm(16), 16))
	case 0xC3:
		return mk(op.Ret)
	case 0xCA:
		return mk(op.Retf, isa.ImmOp(d.readImm(16), 16))
	case 0xCB:
		return mk(op.Retf)

	case 0xC6:
		m := d.readModRM()
		if m.reg&0x7 != 0 {
			return d.invalid(b)
		}
		return mk(op.Mov, d.rmOperand(m, 8), isa.ImmOp(d.readImm(8), 8))
	case 0xC7:
		size := d.operandSize(false)
		m := d.readModRM()
		if m.reg&0x7 != 0 {
			return d.invalid(b)
		}
		return mk(op.Mov, d.rmOperand(m, size),
			isa.ImmOp(d.readImm(immZBits(size)), size))

	case 0xD4:
		return mk(op.Aam, isa.ImmOp(d.readImm(8), 8))
	case 0xD5:
		return mk(op.Aad, isa.ImmOp(d.readImm(8), 8))

	case 0xE3:
		return mk(op.Jcxz, isa.RelOp(d.readImm(8)))
	case 0xE8:
		size := d.operandSize(true)
		return mk(op.Call, isa.RelOp(d.readImm(immZBits(size))))
	case 0xE9:
		size := d.operandSize(true)
		return mk(op.Jmp, isa.RelOp(d.readImm(immZBits(size))))
	case 0xEA:
		size := d.operandSize(false)
		ofs := uint64(d.readImm(size)) & widthMask(size)
		seg := uint16(d.readImm(16))
		return mk(op.Jmp, isa.FarOp(isa.FarPointer{Seg: seg, Offset: ofs}))
	case 0xEB:
		return mk(op.Jmp, isa.RelOp(d.readImm(8)))

	case 0xF4:
		return mk(op.Hlt)
	case 0xF5:
		return mk(op.Cmc)

	case 0xF6:
		m := d.readModRM()
		if m.reg&0x6 != 0 {
			return d.invalid(b)
		}
		return mk(op.Test, d.rmOperand(m, 8), isa.ImmOp(d.readImm(8), 8))
	case 0xF7:
		size := d.operandSize(false)
		m := d.readModRM()
		if m.reg&0x6 != 0 {
			return d.invalid(b)
		}
		return mk(op.Test, d.rmOperand(m, size),
			isa.ImmOp(d.readImm(immZBits(size)), size))

	case 0xF8:
		return mk(op.Clc)
	case 0xF9:
		return mk(op.Stc)
	case 0xFA:
		return mk(op.Cli)
	case 0xFB:
		return mk(op.Sti)
	case 0xFC:
		return mk(op.Cld)
	case 0xFD:
		return mk(op.Std)

	case 0xFE:
		m := d.readModRM()
		switch m.reg & 0x7 {
		case 0:
			return mk(op.Inc, d.rmOperand(m, 8))
		case 1:
			return mk(op.Dec, d.rmOperand(m, 8))
		}
		return d.invalid(b)
	case 0xFF:
		return d.group5(b)
	}

	return d.invalid(b)
}

// group5 is the FF extension group: INC/DEC, indirect CALL/JMP near and
// far, and PUSH.
func (d *decodeState) group5(b uint8) *isa.Instruction {
	m := d.readModRM()
	switch m.reg & 0x7 {
	case 0:
		return mk(op.Inc, d.rmOperand(m, d.operandSize(false)))
	case 1:
		return mk(op.Dec, d.rmOperand(m, d.operandSize(false)))
	case 2:
		return mk(op.Call, d.rmOperand(m, d.operandSize(true)))
	case 3:
		return mk(op.Call, d.farMem(m))
	case 4:
		return mk(op.Jmp, d.rmOperand(m, d.operandSize(true)))
	case 5:
		return mk(op.Jmp, d.farMem(m))
	case 6:
		return mk(op.Push, d.rmOperand(m, d.operandSize(true)))
	}
	return d.invalid(b)
}

// farMem builds the indirect far pointer operand: the offset at the
// operand width, then a 16-bit selector right after it.
func (d *decodeState) farMem(m modRM) isa.Operand {
	if m.mod == 3 {
		fault.Fatalf("decode", "far indirect requires a memory operand")
	}
	return isa.FarOp(isa.FarPointer{
		IsMem: true,
		Mem:   d.memRef(m, d.operandSize(false)),
	})
}

// page0F decodes the two byte opcode page: only the long Jcc forms are
// implemented.
func (d *decodeState) page0F(b uint8) *isa.Instruction {
	if b >= 0x80 && b <= 0x8F {
		size := d.operandSize(true)
		return mk(jccOps[b-0x80], isa.RelOp(d.readImm(immZBits(size))))
	}
	fault.Fatalf("decode", "cannot decode opcode bytes 0f %#02x", b)
	return nil
}

// alu decodes one of the six encodings of an ALU block operation.
func (d *decodeState) alu(o op.Op, form uint8) *isa.Instruction {
	switch form {
	case 0:
		m := d.readModRM()
		return mk(o, d.rmOperand(m, 8), d.regOperand(m, 8))
	case 1:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(o, d.rmOperand(m, size), d.regOperand(m, size))
	case 2:
		m := d.readModRM()
		return mk(o, d.regOperand(m, 8), d.rmOperand(m, 8))
	case 3:
		size := d.operandSize(false)
		m := d.readModRM()
		return mk(o, d.regOperand(m, size), d.rmOperand(m, size))
	case 4:
		return mk(o, isa.RegOp(isa.GPR(isa.IdxA, 8)), isa.ImmOp(d.readImm(8), 8))
	default:
		size := d.operandSize(false)
		return mk(o, isa.RegOp(isa.GPR(isa.IdxA, size)),
			isa.ImmOp(d.readImm(immZBits(size)), size))
	}
}

// stackReg selects the register for the short push/pop forms, honoring
// REX.B and the 64-bit stack default.
func (d *decodeState) stackReg(index uint8) isa.Reg {
	idx := int(index)
	if d.mods.RexB {
		idx |= 0x8
	}
	return isa.GPR(idx, d.operandSize(true))
}

// moffs is the direct offset form of MOV: a displacement of the
// current address width with no base or index register.
func (d *decodeState) moffs(bits int) isa.Operand {
	return isa.MemOp(isa.MemoryRef{
		Seg:   d.seg,
		Scale: 1,
		Disp:  d.readImm(d.addressSize()),
		Bits:  uint8(bits),
	})
}

func widthMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(bits)) - 1
}
