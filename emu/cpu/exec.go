package cpu

/*
 * z86 - Instruction dispatch, data movement, stack and flag ops.
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
	dis "github.com/rcornwell/z86/emu/disassemble"
	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/isa"
	op "github.com/rcornwell/z86/emu/opcode"
)

// The dispatch table is flat: one handler per opcode id, filled once at
// package initialization.
var dispatch [op.Max]func(*CPU, *isa.Instruction)

func init() {
	dispatch[op.Add] = (*CPU).opArith
	dispatch[op.Adc] = (*CPU).opArith
	dispatch[op.Sub] = (*CPU).opArith
	dispatch[op.Sbb] = (*CPU).opArith
	dispatch[op.And] = (*CPU).opArith
	dispatch[op.Or] = (*CPU).opArith
	dispatch[op.Xor] = (*CPU).opArith
	dispatch[op.Cmp] = (*CPU).opArith
	dispatch[op.Test] = (*CPU).opArith
	dispatch[op.Inc] = (*CPU).opIncDec
	dispatch[op.Dec] = (*CPU).opIncDec

	dispatch[op.Mov] = (*CPU).opMov
	dispatch[op.Xchg] = (*CPU).opXchg
	dispatch[op.Push] = (*CPU).opPush
	dispatch[op.Pop] = (*CPU).opPop

	dispatch[op.Jmp] = (*CPU).opJmp
	for o := op.Jo; o <= op.Jnp; o++ {
		dispatch[o] = (*CPU).opJcc
	}
	dispatch[op.Jcxz] = (*CPU).opJcxz
	dispatch[op.Call] = (*CPU).opCall
	dispatch[op.Ret] = (*CPU).opRet
	dispatch[op.Retf] = (*CPU).opRetf

	dispatch[op.Sti] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetIF(true) }
	dispatch[op.Cli] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetIF(false) }
	dispatch[op.Stc] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetCF(true) }
	dispatch[op.Clc] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetCF(false) }
	dispatch[op.Std] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetDF(true) }
	dispatch[op.Cld] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetDF(false) }
	dispatch[op.Cmc] = func(cpu *CPU, _ *isa.Instruction) { cpu.flags.SetCF(!cpu.flags.CF()) }
	dispatch[op.Lahf] = (*CPU).opLahf
	dispatch[op.Sahf] = (*CPU).opSahf
	dispatch[op.Pushf] = (*CPU).opPushf
	dispatch[op.Popf] = (*CPU).opPopf

	dispatch[op.Aaa] = (*CPU).opAaa
	dispatch[op.Aas] = (*CPU).opAas
	dispatch[op.Aam] = (*CPU).opAam
	dispatch[op.Aad] = (*CPU).opAad
	dispatch[op.Daa] = (*CPU).opDaa
	dispatch[op.Das] = (*CPU).opDas

	dispatch[op.Nop] = func(*CPU, *isa.Instruction) {}
	dispatch[op.Hlt] = func(cpu *CPU, _ *isa.Instruction) { cpu.halted = true }
}

// execute runs one decoded instruction. LOCK-prefixed instructions hold
// the bus lock for the duration.
func (cpu *CPU) execute(instr *isa.Instruction) {
	if instr.Mods.Lock {
		cpu.mem.Lock()
		defer cpu.mem.Unlock()
	}

	if instr.Opcode <= op.Invalid || instr.Opcode >= op.Max || dispatch[instr.Opcode] == nil {
		fault.Fatalf("exec", "invalid opcode: %s", dis.Print(instr, cpu.ip-uint64(instr.Length)))
	}
	dispatch[instr.Opcode](cpu, instr)
}

// opMov writes the source into the destination. No flags.
func (cpu *CPU) opMov(instr *isa.Instruction) {
	v := cpu.getOperand(&instr.Mods, instr.Src())
	cpu.setOperand(&instr.Mods, instr.Dst(), v)
}

// opXchg swaps two operands, holding the bus lock whether or not a
// LOCK prefix is present.
func (cpu *CPU) opXchg(instr *isa.Instruction) {
	cpu.mem.Lock()
	defer cpu.mem.Unlock()

	d := cpu.getOperand(&instr.Mods, instr.Dst())
	s := cpu.getOperand(&instr.Mods, instr.Src())
	cpu.setOperand(&instr.Mods, instr.Dst(), s)
	cpu.setOperand(&instr.Mods, instr.Src(), d)
}

// opPush pushes the source operand. Segment selectors and immediates
// push at the stack operand size.
func (cpu *CPU) opPush(instr *isa.Instruction) {
	v := cpu.getOperand(&instr.Mods, instr.Dst())
	if instr.Dst().IsRegister() && instr.Dst().Reg.Class == isa.ClassSeg {
		// Selector pushed at the stack width, zero extended.
		v = newValue(cpu.operandSize(&instr.Mods, true), v.get())
	}
	cpu.push(v)
}

// opPop pops into the destination operand at the stack operand size.
func (cpu *CPU) opPop(instr *isa.Instruction) {
	width := cpu.operandSize(&instr.Mods, true)
	v := cpu.pop(width)

	dst := instr.Dst()
	if dst.IsRegister() && dst.Reg.Class == isa.ClassSeg {
		cpu.SetSegment(dst.Reg.Seg(), uint16(v.v))
		return
	}
	cpu.setOperand(&instr.Mods, dst, v)
}

// opLahf copies the low flag byte into AH, bit 1 forced high.
func (cpu *CPU) opLahf(_ *isa.Instruction) {
	cpu.setAH(uint8(cpu.flags.Flags16()))
}

// opSahf loads SF, ZF, AF, PF and CF from AH.
func (cpu *CPU) opSahf(_ *isa.Instruction) {
	cpu.flags.LoadLow8(cpu.ah())
}

// rflagsPushMask clears RF and VM on pushed flag images.
const rflagsPushMask = ^uint64(0x30000)

// opPushf pushes the flags at the current operand size.
func (cpu *CPU) opPushf(instr *isa.Instruction) {
	switch cpu.operandSize(&instr.Mods, true) {
	case 16:
		cpu.push(newValue(16, uint64(cpu.flags.Flags16())))
	case 32:
		cpu.push(newValue(32, uint64(cpu.flags.EFlags())&rflagsPushMask))
	default:
		cpu.push(newValue(64, cpu.flags.RFlags()&rflagsPushMask))
	}
}

// opPopf pops the flags. Only the real mode forms exist; the protected
// IOPL/VIF rules are not modeled.
func (cpu *CPU) opPopf(instr *isa.Instruction) {
	if cpu.mode != isa.Real {
		fault.Fatalf("exec", "popf outside real mode not implemented")
	}
	switch cpu.operandSize(&instr.Mods, true) {
	case 16:
		cpu.flags.Load16(uint16(cpu.pop(16).v))
	default:
		cpu.flags.Load32(uint32(cpu.pop(32).v))
	}
}
