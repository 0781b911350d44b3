package cpu

/*
 * z86 - BCD adjust instructions.
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

// The BCD adjusts operate on AL and AH only.

// setAdjustFlags sets PF, ZF and SF from an adjusted AL.
func (cpu *CPU) setAdjustFlags(al uint8) {
	cpu.setResultFlags(newValue(8, uint64(al)))
}

// opAaa adjusts AL after an unpacked BCD addition.
func (cpu *CPU) opAaa(_ *isa.Instruction) {
	if cpu.al()&0x0F > 9 || cpu.flags.AF() {
		cpu.setAX(cpu.ax() + 0x106)
		cpu.flags.SetAF(true)
		cpu.flags.SetCF(true)
	} else {
		cpu.flags.SetAF(false)
		cpu.flags.SetCF(false)
	}
	cpu.setAL(cpu.al() & 0x0F)
}

// opAas adjusts AL after an unpacked BCD subtraction.
func (cpu *CPU) opAas(_ *isa.Instruction) {
	if cpu.al()&0x0F > 9 || cpu.flags.AF() {
		cpu.setAX(cpu.ax() - 6)
		cpu.setAH(cpu.ah() - 1)
		cpu.flags.SetAF(true)
		cpu.flags.SetCF(true)
	} else {
		cpu.flags.SetAF(false)
		cpu.flags.SetCF(false)
	}
	cpu.setAL(cpu.al() & 0x0F)
}

// opAam splits AL into base-imm digits. A zero immediate is the
// architectural divide fault.
func (cpu *CPU) opAam(instr *isa.Instruction) {
	base := uint8(instr.Dst().Imm)
	if base == 0 {
		fault.Fatalf("exec", "aam with zero immediate")
	}

	al := cpu.al()
	cpu.setAH(al / base)
	cpu.setAL(al % base)
	cpu.setAdjustFlags(al % base)
}

// opAad recombines AH:AL into a single binary value in AL.
func (cpu *CPU) opAad(instr *isa.Instruction) {
	base := uint8(instr.Dst().Imm)

	al := cpu.al() + cpu.ah()*base
	cpu.setAL(al)
	cpu.setAH(0)
	cpu.setAdjustFlags(al)
}

// opDaa adjusts AL after a packed BCD addition.
func (cpu *CPU) opDaa(_ *isa.Instruction) {
	oldAL := cpu.al()
	oldCF := cpu.flags.CF()
	cpu.flags.SetCF(false)

	if oldAL&0x0F > 9 || cpu.flags.AF() {
		cpu.setAL(cpu.al() + 6)
		cpu.flags.SetCF(oldCF || oldAL > 0xF9)
		cpu.flags.SetAF(true)
	} else {
		cpu.flags.SetAF(false)
	}

	if oldAL > 0x99 || oldCF {
		cpu.setAL(cpu.al() + 0x60)
		cpu.flags.SetCF(true)
	} else {
		cpu.flags.SetCF(false)
	}
	cpu.setAdjustFlags(cpu.al())
}

// opDas adjusts AL after a packed BCD subtraction.
func (cpu *CPU) opDas(_ *isa.Instruction) {
	oldAL := cpu.al()
	oldCF := cpu.flags.CF()
	cpu.flags.SetCF(false)

	if oldAL&0x0F > 9 || cpu.flags.AF() {
		cpu.setAL(cpu.al() - 6)
		cpu.flags.SetCF(oldCF || oldAL < 6)
		cpu.flags.SetAF(true)
	} else {
		cpu.flags.SetAF(false)
	}

	if oldAL > 0x99 || oldCF {
		cpu.setAL(cpu.al() - 0x60)
		cpu.flags.SetCF(true)
	}
	cpu.setAdjustFlags(cpu.al())
}
