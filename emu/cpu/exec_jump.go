package cpu

/*
 * z86 - Control flow instructions.
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

func ipMask(width int) uint64 {
	switch width {
	case 16:
		return 0xFFFF
	case 32:
		return 0xFFFFFFFF
	}
	return ^uint64(0)
}

// branchTarget computes the destination of a near branch. IP already
// points past the instruction, so a relative target is IP plus the
// signed offset, truncated to the operand width.
func (cpu *CPU) branchTarget(instr *isa.Instruction, dst *isa.Operand) uint64 {
	width := cpu.operandSize(&instr.Mods, true)

	if dst.IsRelativeOffset() {
		return (cpu.ip + uint64(dst.Rel)) & ipMask(width)
	}

	// Absolute near target through a register or memory operand.
	v := cpu.getOperand(&instr.Mods, dst)
	return v.get() & ipMask(width)
}

// readFarPointer loads the seg:offset pair of a far operand. An
// indirect pointer reads the offset first, then a 16-bit selector
// immediately after it.
func (cpu *CPU) readFarPointer(instr *isa.Instruction, far *isa.FarPointer) (uint16, uint64) {
	if !far.IsMem {
		return far.Seg, far.Offset
	}

	addr := cpu.resolveMemory(&instr.Mods, &far.Mem)
	var ofs uint64
	switch far.Mem.Bits {
	case 16:
		ofs = uint64(cpu.read16(addr.Seg, addr.Offset))
	case 32:
		ofs = uint64(cpu.read32(addr.Seg, addr.Offset))
	case 64:
		ofs = cpu.read64(addr.Seg, addr.Offset)
	default:
		fault.Fatalf("exec", "invalid far pointer width %d", far.Mem.Bits)
	}
	seg := cpu.read16(addr.Seg, addr.Offset+uint64(far.Mem.Bits/8))
	return seg, ofs
}

// jumpFar loads CS (reloading the hidden descriptor) and then IP. Only
// the real mode form exists; far control transfers in protected and
// long mode need descriptor checks this core does not model.
func (cpu *CPU) jumpFar(seg uint16, ofs uint64) {
	if cpu.mode != isa.Real {
		fault.Fatalf("exec", "far transfer in %v mode not implemented", cpu.mode)
	}
	cpu.SetSegment(isa.CS, seg)
	cpu.jump(ofs & 0xFFFF)
}

// opJmp is the unconditional jump in all its forms.
func (cpu *CPU) opJmp(instr *isa.Instruction) {
	dst := instr.Dst()
	if dst.IsFarPointer() {
		seg, ofs := cpu.readFarPointer(instr, &dst.Far)
		cpu.jumpFar(seg, ofs)
		return
	}
	cpu.jump(cpu.branchTarget(instr, dst))
}

// jccTaken evaluates the condition of a conditional branch.
func (cpu *CPU) jccTaken(o op.Op) bool {
	f := &cpu.flags
	switch o {
	case op.Jo:
		return f.OF()
	case op.Jno:
		return !f.OF()
	case op.Js:
		return f.SF()
	case op.Jns:
		return !f.SF()
	case op.Jz:
		return f.ZF()
	case op.Jnz:
		return !f.ZF()
	case op.Jb:
		return f.CF()
	case op.Jnb:
		return !f.CF()
	case op.Ja:
		return !f.CF() && !f.ZF()
	case op.Jna:
		return f.CF() || f.ZF()
	case op.Jl:
		return f.SF() != f.OF()
	case op.Jge:
		return f.SF() == f.OF()
	case op.Jg:
		return !f.ZF() && f.SF() == f.OF()
	case op.Jle:
		return f.ZF() || f.SF() != f.OF()
	case op.Jp:
		return f.PF()
	case op.Jnp:
		return !f.PF()
	}
	fault.Fatalf("exec", "not a conditional branch: %v", o)
	return false
}

func (cpu *CPU) opJcc(instr *isa.Instruction) {
	if cpu.jccTaken(instr.Opcode) {
		cpu.jump(cpu.branchTarget(instr, instr.Dst()))
	}
}

// opJcxz branches when the count register, selected by the address
// size, is zero.
func (cpu *CPU) opJcxz(instr *isa.Instruction) {
	var cx uint64
	switch cpu.addressSize(&instr.Mods) {
	case 16:
		cx = uint64(uint16(cpu.gprs[isa.IdxC]))
	case 32:
		cx = uint64(uint32(cpu.gprs[isa.IdxC]))
	default:
		cx = cpu.gprs[isa.IdxC]
	}
	if cx == 0 {
		cpu.jump(cpu.branchTarget(instr, instr.Dst()))
	}
}

// opCall pushes the return address and transfers. The far form pushes
// CS then IP before loading the new pair.
func (cpu *CPU) opCall(instr *isa.Instruction) {
	width := cpu.operandSize(&instr.Mods, true)
	dst := instr.Dst()

	if dst.IsFarPointer() {
		cpu.push(newValue(width, uint64(cpu.Segment(isa.CS))))
		cpu.push(newValue(width, cpu.ip))

		seg, ofs := cpu.readFarPointer(instr, &dst.Far)
		cpu.jumpFar(seg, ofs)
		return
	}

	target := cpu.branchTarget(instr, dst)
	cpu.push(newValue(width, cpu.ip))
	cpu.jump(target)
}

// opRet pops the return IP; the imm16 form releases caller arguments
// from the stack afterwards.
func (cpu *CPU) opRet(instr *isa.Instruction) {
	width := cpu.operandSize(&instr.Mods, true)
	cpu.jump(cpu.pop(width).get())
	cpu.releaseArgs(instr)
}

// opRetf pops IP then CS, reloading the CS descriptor.
func (cpu *CPU) opRetf(instr *isa.Instruction) {
	if cpu.mode != isa.Real {
		fault.Fatalf("exec", "far return in %v mode not implemented", cpu.mode)
	}
	width := cpu.operandSize(&instr.Mods, true)

	ip := cpu.pop(width).get()
	seg := uint16(cpu.pop(width).v)
	cpu.SetSegment(isa.CS, seg)
	cpu.jump(ip & 0xFFFF)
	cpu.releaseArgs(instr)
}

// releaseArgs applies the imm16 stack adjustment of RET n / RETF n.
func (cpu *CPU) releaseArgs(instr *isa.Instruction) {
	if instr.Count > 0 && instr.Dst().IsImmediate() {
		cpu.setStackPointer(cpu.stackPointer() + uint64(uint16(instr.Dst().Imm)))
	}
}
