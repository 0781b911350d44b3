package cpu

/*
 * z86 - CPU test cases.
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
	"encoding/hex"
	"testing"

	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/isa"
	"github.com/rcornwell/z86/emu/memory"
)

const loadBase = 0x7C00

// testProgram builds a CPU in real mode from reset with DS=0, SS=0,
// SP=0xFFFE and the program bytes loaded at 0x7C00 with CS:IP pointing
// at them.
func testProgram(t *testing.T, program string) *CPU {
	t.Helper()
	code, err := hex.DecodeString(program)
	if err != nil {
		t.Fatalf("bad test program %q: %v", program, err)
	}

	c := New()
	c.Reset()
	c.mem.Write(loadBase, code)

	c.SetSegment(isa.CS, 0)
	c.SetSegment(isa.DS, 0)
	c.SetSegment(isa.SS, 0)
	c.SetReg16(isa.GPR(isa.IdxSP, 16), 0xFFFE)
	c.ip = loadBase
	return c
}

func stepN(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

func checkAX(t *testing.T, c *CPU, want uint16) {
	t.Helper()
	if v := c.ax(); v != want {
		t.Errorf("AX not correct got: %04x expected: %04x", v, want)
	}
}

func checkFlag(t *testing.T, name string, got, want bool) {
	t.Helper()
	if got != want {
		t.Errorf("%s not correct got: %v expected: %v", name, got, want)
	}
}

// expectFault runs fn and checks that it raises a fault in module.
func expectFault(t *testing.T, module string, fn func()) {
	t.Helper()
	defer func() {
		f := fault.Recover(recover())
		if f == nil {
			t.Errorf("expected a %s fault, got none", module)
			return
		}
		if f.Module != module {
			t.Errorf("fault module not correct got: %s expected: %s", f.Module, module)
		}
	}()
	fn()
}

// Reset puts the machine in the architectural power-on state.
func TestReset(t *testing.T) {
	c := New()
	c.Reset()

	if c.Segment(isa.CS) != 0xF000 {
		t.Errorf("CS not correct got: %04x expected: f000", c.Segment(isa.CS))
	}
	if c.ip != 0xFFF0 {
		t.Errorf("IP not correct got: %04x expected: fff0", c.ip)
	}
	if v := c.Reg32(isa.GPR(isa.IdxD, 32)); v != 0x30 {
		t.Errorf("EDX not correct got: %08x expected: 00000030", v)
	}
	for i, r := range c.gprs {
		if i != isa.IdxD && r != 0 {
			t.Errorf("GPR %d not zero got: %016x", i, r)
		}
	}
	for _, seg := range []isa.SegIndex{isa.DS, isa.ES, isa.FS, isa.GS, isa.SS} {
		if c.Segment(seg) != 0 {
			t.Errorf("%v not zero got: %04x", seg, c.Segment(seg))
		}
	}
	if c.Mode() != isa.Real {
		t.Errorf("mode not correct got: %v expected: real", c.Mode())
	}
}

// The first fetch after reset reads physical 0xFFFFFFF0 through the
// preloaded CS descriptor.
func TestResetVectorFetch(t *testing.T) {
	c := New()

	// A ROM with HLT at the reset vector.
	rom := make([]uint8, 0x10000)
	rom[0xFFF0] = 0xF4
	c.Memory().AddRegion(0xFFFF0000, memory.NewRomRegion(rom))

	c.Start()
	if !c.Halted() {
		t.Error("CPU did not halt from reset vector")
	}
}

// MOV AX, 0x1234.
func TestScenarioMovImm(t *testing.T) {
	c := testProgram(t, "b83412")
	stepN(c, 1)

	checkAX(t, c, 0x1234)
	if c.ip != loadBase+3 {
		t.Errorf("IP not correct got: %04x expected: %04x", c.ip, loadBase+3)
	}
}

// MOV AL,10; MOV AH,5; ADD AL,AH.
func TestScenarioByteRegs(t *testing.T) {
	c := testProgram(t, "b00ab40500e0")
	stepN(c, 3)

	if v := c.al(); v != 0x0F {
		t.Errorf("AL not correct got: %02x expected: 0f", v)
	}
	if v := c.ah(); v != 0x05 {
		t.Errorf("AH not correct got: %02x expected: 05", v)
	}
	checkAX(t, c, 0x050F)
	checkFlag(t, "ZF", c.flags.ZF(), false)
	checkFlag(t, "SF", c.flags.SF(), false)
}

// MOV AX,0x00FF; ADD AL,1 - the carry out of AL must not ripple into
// AH.
func TestScenarioByteCarryIsolation(t *testing.T) {
	c := testProgram(t, "b8ff000401")
	stepN(c, 2)

	if v := c.al(); v != 0x00 {
		t.Errorf("AL not correct got: %02x expected: 00", v)
	}
	if v := c.ah(); v != 0x00 {
		t.Errorf("AH not correct got: %02x expected: 00", v)
	}
	checkFlag(t, "ZF", c.flags.ZF(), true)
	checkFlag(t, "AF", c.flags.AF(), true)
	// 0xFF + 1 carries out of the byte.
	checkFlag(t, "CF", c.flags.CF(), true)
}

// XOR AX,AX clears the register and sets the logical flag pattern.
func TestScenarioXorClear(t *testing.T) {
	c := testProgram(t, "31c0")
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0xBEEF)
	stepN(c, 1)

	checkAX(t, c, 0)
	checkFlag(t, "ZF", c.flags.ZF(), true)
	checkFlag(t, "PF", c.flags.PF(), true)
	checkFlag(t, "CF", c.flags.CF(), false)
	checkFlag(t, "OF", c.flags.OF(), false)
	checkFlag(t, "SF", c.flags.SF(), false)
}

// MOV AX,0x5678; PUSH AX; POP AX.
func TestScenarioPushPop(t *testing.T) {
	c := testProgram(t, "b878565058")
	stepN(c, 3)

	checkAX(t, c, 0x5678)
	if v := c.read16(isa.SS, 0xFFFC); v != 0x5678 {
		t.Errorf("stack word not correct got: %04x expected: 5678", v)
	}
	if sp := c.Reg16(isa.GPR(isa.IdxSP, 16)); sp != 0xFFFE {
		t.Errorf("SP not correct got: %04x expected: fffe", sp)
	}
}

// MOV BX,5; MOV DX,3; CMP BX,DX; JL +2; MOV AL,1 - the branch falls
// through.
func TestScenarioCompareBranch(t *testing.T) {
	c := testProgram(t, "bb0500ba030039d37c02b001")
	stepN(c, 5)

	if v := c.al(); v != 1 {
		t.Errorf("AL not correct got: %02x expected: 01", v)
	}
}

// ADD 0xFFFF + 1 at 16 bits: wraps to zero with carry, no overflow.
func TestAddCarryBoundary(t *testing.T) {
	c := testProgram(t, "050100") // ADD AX, 1
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0xFFFF)
	stepN(c, 1)

	checkAX(t, c, 0)
	checkFlag(t, "CF", c.flags.CF(), true)
	checkFlag(t, "ZF", c.flags.ZF(), true)
	checkFlag(t, "OF", c.flags.OF(), false)
}

// ADD 0x7FFF + 1 at 16 bits: signed overflow.
func TestAddOverflowBoundary(t *testing.T) {
	c := testProgram(t, "050100")
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x7FFF)
	stepN(c, 1)

	checkAX(t, c, 0x8000)
	checkFlag(t, "OF", c.flags.OF(), true)
	checkFlag(t, "SF", c.flags.SF(), true)
	checkFlag(t, "CF", c.flags.CF(), false)
}

// SUB 0 - 1 at 8 bits: borrow without overflow.
func TestSubBorrowBoundary(t *testing.T) {
	c := testProgram(t, "2c01") // SUB AL, 1
	stepN(c, 1)

	if v := c.al(); v != 0xFF {
		t.Errorf("AL not correct got: %02x expected: ff", v)
	}
	checkFlag(t, "CF", c.flags.CF(), true)
	checkFlag(t, "OF", c.flags.OF(), false)
	checkFlag(t, "SF", c.flags.SF(), true)
	checkFlag(t, "ZF", c.flags.ZF(), false)
}

// INC 0x7FFFFFFF at 32 bits overflows but leaves CF alone.
func TestIncPreservesCarry(t *testing.T) {
	c := testProgram(t, "f9" + "6640") // STC; INC EAX
	c.SetReg32(isa.GPR(isa.IdxA, 32), 0x7FFFFFFF)
	stepN(c, 2)

	if v := c.Reg32(isa.GPR(isa.IdxA, 32)); v != 0x80000000 {
		t.Errorf("EAX not correct got: %08x expected: 80000000", v)
	}
	checkFlag(t, "OF", c.flags.OF(), true)
	checkFlag(t, "CF", c.flags.CF(), true)
}

// ADC adds the carry in and carries out correctly at the top of the
// range.
func TestAdcCarryChain(t *testing.T) {
	c := testProgram(t, "f9" + "1401") // STC; ADC AL, 1
	c.SetReg8(isa.GPR(isa.IdxA, 8), 0xFF)
	stepN(c, 2)

	if v := c.al(); v != 0x01 {
		t.Errorf("AL not correct got: %02x expected: 01", v)
	}
	checkFlag(t, "CF", c.flags.CF(), true)

	// 0xFE + 1 + carry = 0x00 with carry out.
	c = testProgram(t, "f9" + "1401")
	c.SetReg8(isa.GPR(isa.IdxA, 8), 0xFE)
	stepN(c, 2)
	if v := c.al(); v != 0x00 {
		t.Errorf("AL not correct got: %02x expected: 00", v)
	}
	checkFlag(t, "CF", c.flags.CF(), true)
	checkFlag(t, "ZF", c.flags.ZF(), true)
}

// SBB subtracts the borrow in.
func TestSbbBorrowChain(t *testing.T) {
	c := testProgram(t, "f9" + "1c00") // STC; SBB AL, 0
	c.SetReg8(isa.GPR(isa.IdxA, 8), 0x00)
	stepN(c, 2)

	if v := c.al(); v != 0xFF {
		t.Errorf("AL not correct got: %02x expected: ff", v)
	}
	checkFlag(t, "CF", c.flags.CF(), true)
}

// CMC twice is the identity on CF.
func TestCmcIdentity(t *testing.T) {
	c := testProgram(t, "f5f5")
	start := c.flags.CF()
	stepN(c, 2)
	checkFlag(t, "CF", c.flags.CF(), start)

	c = testProgram(t, "f9f5f5") // STC; CMC; CMC
	stepN(c, 3)
	checkFlag(t, "CF", c.flags.CF(), true)
}

// LAHF then SAHF round trips the low flag byte through AH.
func TestLahfSahf(t *testing.T) {
	c := testProgram(t, "f9" + "9f") // STC; LAHF
	stepN(c, 2)

	ah := c.ah()
	if ah&0x01 == 0 {
		t.Errorf("LAHF CF bit not set got: %02x", ah)
	}
	if ah&0x02 == 0 {
		t.Errorf("LAHF bit 1 not set got: %02x", ah)
	}

	c = testProgram(t, "9e") // SAHF
	c.SetReg8(isa.High(isa.IdxA), 0xD5)
	stepN(c, 1)
	checkFlag(t, "CF", c.flags.CF(), true)
	checkFlag(t, "ZF", c.flags.ZF(), true)
	checkFlag(t, "SF", c.flags.SF(), true)
	checkFlag(t, "AF", c.flags.AF(), true)
	checkFlag(t, "PF", c.flags.PF(), true)
}

// PUSHF/POPF round trip the flags through the stack.
func TestPushfPopf(t *testing.T) {
	c := testProgram(t, "f9" + "9c" + "f8" + "9d") // STC; PUSHF; CLC; POPF
	stepN(c, 4)
	checkFlag(t, "CF", c.flags.CF(), true)

	if sp := c.Reg16(isa.GPR(isa.IdxSP, 16)); sp != 0xFFFE {
		t.Errorf("SP not correct got: %04x expected: fffe", sp)
	}
}

// Flag set/clear instructions.
func TestFlagInstructions(t *testing.T) {
	c := testProgram(t, "f9fafdf8fbfc")
	stepN(c, 2) // STC; CLI
	checkFlag(t, "CF", c.flags.CF(), true)
	checkFlag(t, "IF", c.flags.IF(), false)
	stepN(c, 2) // STD; CLC
	checkFlag(t, "DF", c.flags.DF(), true)
	checkFlag(t, "CF", c.flags.CF(), false)
	stepN(c, 2) // STI; CLD
	checkFlag(t, "IF", c.flags.IF(), true)
	checkFlag(t, "DF", c.flags.DF(), false)
}

// XCHG swaps registers and memory.
func TestXchg(t *testing.T) {
	c := testProgram(t, "93") // XCHG AX, BX
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x1111)
	c.SetReg16(isa.GPR(isa.IdxB, 16), 0x2222)
	stepN(c, 1)

	checkAX(t, c, 0x2222)
	if v := c.Reg16(isa.GPR(isa.IdxB, 16)); v != 0x1111 {
		t.Errorf("BX not correct got: %04x expected: 1111", v)
	}

	// XCHG with a memory operand: 8716 00 90 = XCHG [0x9000], DX.
	c = testProgram(t, "87160090")
	c.SetReg16(isa.GPR(isa.IdxD, 16), 0xAAAA)
	c.write16(isa.DS, 0x9000, 0x5555)
	stepN(c, 1)
	if v := c.Reg16(isa.GPR(isa.IdxD, 16)); v != 0x5555 {
		t.Errorf("DX not correct got: %04x expected: 5555", v)
	}
	if v := c.read16(isa.DS, 0x9000); v != 0xAAAA {
		t.Errorf("memory not correct got: %04x expected: aaaa", v)
	}
}

// Memory operands resolve base + index + displacement.
func TestMemoryOperandForms(t *testing.T) {
	// MOV AX, [BX+SI+0x10]: 8b 40 10.
	c := testProgram(t, "8b4010")
	c.SetReg16(isa.GPR(isa.IdxB, 16), 0x1000)
	c.SetReg16(isa.GPR(isa.IdxSI, 16), 0x0200)
	c.write16(isa.DS, 0x1210, 0x4321)
	stepN(c, 1)
	checkAX(t, c, 0x4321)

	// MOV [0x9000], AX direct: a3 00 90.
	c = testProgram(t, "a30090")
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x7788)
	stepN(c, 1)
	if v := c.read16(isa.DS, 0x9000); v != 0x7788 {
		t.Errorf("moffs store not correct got: %04x expected: 7788", v)
	}

	// Segment override: 26 a3 00 90 stores through ES.
	c = testProgram(t, "26a30090")
	c.SetSegment(isa.ES, 0x100)
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x9ABC)
	stepN(c, 1)
	if v := c.read16(isa.ES, 0x9000); v != 0x9ABC {
		t.Errorf("ES override store not correct got: %04x expected: 9abc", v)
	}
}

// A 16-bit effective address wraps at 64K.
func TestAddressWrap(t *testing.T) {
	// MOV AX, [BX+2] with BX=0xFFFF resolves to offset 1.
	c := testProgram(t, "8b4702")
	c.SetReg16(isa.GPR(isa.IdxB, 16), 0xFFFF)
	c.write16(isa.DS, 0x0001, 0x2468)
	stepN(c, 1)
	checkAX(t, c, 0x2468)
}

// MOV to a segment register reloads the hidden descriptor.
func TestMovSegmentRegister(t *testing.T) {
	c := testProgram(t, "bb0010" + "8edb") // MOV BX,0x1000; MOV DS,BX
	stepN(c, 2)

	if v := c.Segment(isa.DS); v != 0x1000 {
		t.Errorf("DS not correct got: %04x expected: 1000", v)
	}
	d := c.smmu.Descriptor(isa.DS)
	if d.Base != 0x10000 {
		t.Errorf("DS base not correct got: %#x expected: 0x10000", d.Base)
	}
}

// JCXZ branches only while CX is zero.
func TestJcxz(t *testing.T) {
	// JCXZ +2; MOV AL,1; HLT -- with CX=0 the branch skips the MOV and
	// lands on the HLT.
	c := testProgram(t, "e302b001f4")
	stepN(c, 2)
	if v := c.al(); v != 0 {
		t.Errorf("AL not correct got: %02x expected: 00 (branch taken)", v)
	}
	if !c.Halted() {
		t.Error("CPU not halted after JCXZ branch")
	}

	c = testProgram(t, "e302b001f4")
	c.SetReg16(isa.GPR(isa.IdxC, 16), 5)
	stepN(c, 2)
	if v := c.al(); v != 1 {
		t.Errorf("AL not correct got: %02x expected: 01 (branch not taken)", v)
	}
}

// CALL pushes the return address; RET consumes it.
func TestCallRet(t *testing.T) {
	// CALL +1; HLT; <target> MOV AL,2; RET... call skips the HLT,
	// the RET comes back to it.
	c := testProgram(t, "e80100" + "f4" + "b002" + "c3")
	for c.Step() {
	}

	if v := c.al(); v != 2 {
		t.Errorf("AL not correct got: %02x expected: 02", v)
	}
	if !c.Halted() {
		t.Error("CPU not halted after return")
	}
	if sp := c.Reg16(isa.GPR(isa.IdxSP, 16)); sp != 0xFFFE {
		t.Errorf("SP not correct got: %04x expected: fffe", sp)
	}
}

// RET imm16 releases the caller's arguments.
func TestRetImm(t *testing.T) {
	// PUSH AX; PUSH AX; CALL +1; HLT; <target> RET 4.
	c := testProgram(t, "5050" + "e80100" + "f4" + "c20400")
	for c.Step() {
	}

	if sp := c.Reg16(isa.GPR(isa.IdxSP, 16)); sp != 0xFFFE {
		t.Errorf("SP not correct got: %04x expected: fffe", sp)
	}
}

// A far jump loads CS and IP together.
func TestJmpFar(t *testing.T) {
	c := testProgram(t, "ea34120020") // JMP 0x2000:0x1234
	// Put a HLT at the destination: physical 0x2000*16 + 0x1234.
	c.mem.Write8(memory.PhysAddr(0x21234), 0xF4)
	stepN(c, 1)

	if v := c.Segment(isa.CS); v != 0x2000 {
		t.Errorf("CS not correct got: %04x expected: 2000", v)
	}
	if c.ip != 0x1234 {
		t.Errorf("IP not correct got: %04x expected: 1234", c.ip)
	}
	d := c.smmu.Descriptor(isa.CS)
	if d.Base != 0x20000 {
		t.Errorf("CS base not correct got: %#x expected: 0x20000", d.Base)
	}
}

// A far jump through memory reads offset then selector.
func TestJmpFarIndirect(t *testing.T) {
	// FF 2E 00 90: JMP FAR [0x9000].
	c := testProgram(t, "ff2e0090")
	c.write16(isa.DS, 0x9000, 0x4321) // offset
	c.write16(isa.DS, 0x9002, 0x1000) // selector
	c.mem.Write8(memory.PhysAddr(0x10000+0x4321), 0xF4)
	stepN(c, 1)

	if v := c.Segment(isa.CS); v != 0x1000 {
		t.Errorf("CS not correct got: %04x expected: 1000", v)
	}
	if c.ip != 0x4321 {
		t.Errorf("IP not correct got: %04x expected: 4321", c.ip)
	}
}

// CALL far pushes CS then IP; RETF restores both.
func TestCallFarRetf(t *testing.T) {
	// CALL 0x0000:0x7D00 ... at 0x7D00: MOV AL,7; RETF. After the
	// far return the HLT after the call executes.
	c := testProgram(t, "9a007d0000" + "f4")
	c.mem.Write(0x7D00, []uint8{0xB0, 0x07, 0xCB})
	for c.Step() {
	}

	if v := c.al(); v != 7 {
		t.Errorf("AL not correct got: %02x expected: 07", v)
	}
	if !c.Halted() {
		t.Error("CPU not halted after far return")
	}
	if v := c.Segment(isa.CS); v != 0 {
		t.Errorf("CS not correct got: %04x expected: 0000", v)
	}
	if sp := c.Reg16(isa.GPR(isa.IdxSP, 16)); sp != 0xFFFE {
		t.Errorf("SP not correct got: %04x expected: fffe", sp)
	}
}

// Conditional branches follow the flag predicates.
func TestConditionalBranches(t *testing.T) {
	cases := []struct {
		name    string
		program string
		taken   bool
	}{
		// CMP AL,1 with AL=0: CF=1, ZF=0, SF=1, OF=0.
		{"JB taken", "3c01" + "7202" + "b001" + "f4", true},
		{"JNB not taken", "3c01" + "7302" + "b001" + "f4", false},
		{"JZ not taken", "3c01" + "7402" + "b001" + "f4", false},
		{"JL taken", "3c01" + "7c02" + "b001" + "f4", true},
		{"JS taken", "3c01" + "7802" + "b001" + "f4", true},
		{"JA not taken", "3c01" + "7702" + "b001" + "f4", false},
	}

	for _, tc := range cases {
		c := testProgram(t, tc.program)
		for c.Step() {
		}
		// When the branch is taken the MOV AL,1 is skipped.
		want := uint8(1)
		if tc.taken {
			want = 0
		}
		if v := c.al(); v != want {
			t.Errorf("%s: AL not correct got: %02x expected: %02x", tc.name, v, want)
		}
	}
}

// The long form Jcc on the 0F page.
func TestLongConditionalBranch(t *testing.T) {
	// XOR AX,AX; JZ near +2; MOV AL,1; HLT.
	c := testProgram(t, "31c0" + "0f840200" + "b001" + "f4")
	for c.Step() {
	}
	if v := c.al(); v != 0 {
		t.Errorf("AL not correct got: %02x expected: 00", v)
	}
}

// TEST computes flags without writing back.
func TestTestInstruction(t *testing.T) {
	c := testProgram(t, "a900f0") // TEST AX, 0xF000
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x0FFF)
	stepN(c, 1)

	checkAX(t, c, 0x0FFF)
	checkFlag(t, "ZF", c.flags.ZF(), true)
	checkFlag(t, "CF", c.flags.CF(), false)
}

// Group 1 sign extends the imm8 form to the operand width.
func TestGroup1SignExtend(t *testing.T) {
	c := testProgram(t, "83c0ff") // ADD AX, -1
	c.SetReg16(isa.GPR(isa.IdxA, 16), 5)
	stepN(c, 1)
	checkAX(t, c, 4)
}

// INC/DEC through the FE/FF groups and the short forms.
func TestIncDecForms(t *testing.T) {
	c := testProgram(t, "40" + "48" + "fec0" + "fec8") // INC AX; DEC AX; INC AL; DEC AL
	c.SetReg16(isa.GPR(isa.IdxA, 16), 0x00FF)
	stepN(c, 4)
	checkAX(t, c, 0x00FF)

	// DEC of zero sets SF without touching CF.
	c = testProgram(t, "f8" + "48") // CLC; DEC AX
	stepN(c, 2)
	checkAX(t, c, 0xFFFF)
	checkFlag(t, "SF", c.flags.SF(), true)
	checkFlag(t, "CF", c.flags.CF(), false)
}

// Segment register push/pop forms.
func TestPushPopSegment(t *testing.T) {
	c := testProgram(t, "1e" + "07") // PUSH DS; POP ES
	c.SetSegment(isa.DS, 0x0123)
	stepN(c, 2)

	if v := c.Segment(isa.ES); v != 0x0123 {
		t.Errorf("ES not correct got: %04x expected: 0123", v)
	}
	d := c.smmu.Descriptor(isa.ES)
	if d.Base != 0x1230 {
		t.Errorf("ES base not correct got: %#x expected: 0x1230", d.Base)
	}
}

// An opcode byte the decoder does not know is fatal.
func TestInvalidOpcode(t *testing.T) {
	c := testProgram(t, "8d4010") // LEA, not implemented
	expectFault(t, "decode", func() { c.Step() })
}

// AAM with a zero immediate is a fatal divide fault.
func TestAamZero(t *testing.T) {
	c := testProgram(t, "d400")
	expectFault(t, "exec", func() { c.Step() })
}

// An unmapped stack access is fatal.
func TestStackUnmapped(t *testing.T) {
	c := testProgram(t, "50") // PUSH AX
	c.SetSegment(isa.SS, 0xFFFF)
	c.SetReg16(isa.GPR(isa.IdxSP, 16), 0xFFFE)
	// SS base 0xFFFF0 + 0xFFFC lands past the 1 MiB RAM.
	expectFault(t, "mem", func() { c.Step() })
}
