package cpu

/*
 * z86 - CPU state and the fetch/decode/execute loop.
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
	"fmt"
	"strings"

	"github.com/rcornwell/z86/emu/decoder"
	dis "github.com/rcornwell/z86/emu/disassemble"
	"github.com/rcornwell/z86/emu/fault"
	"github.com/rcornwell/z86/emu/isa"
	"github.com/rcornwell/z86/emu/memory"
	"github.com/rcornwell/z86/emu/mmu"
)

// RAMSize is the base RAM mapped at physical zero.
const RAMSize = 0x100000

// CPU owns all processor state: the register file, flags, instruction
// pointer, mode, and the memory stack. Every mutation of that state
// goes through methods on this object.
type CPU struct {
	gprs  [16]uint64
	segs  [isa.NumSegs]uint16
	ip    uint64
	flags Flags
	mode  isa.Mode

	mem  *memory.Controller
	pmmu *mmu.PagedMMU
	smmu *mmu.SegmentedMMU

	halted bool
	trace  bool
}

// New builds a CPU with 1 MiB of RAM mapped at physical zero. Further
// regions (ROM, program image) are added by the caller before Start.
func New() *CPU {
	cpu := &CPU{}

	cpu.mem = memory.NewController()
	cpu.mem.AddRegion(0, memory.NewHostRegion(RAMSize))
	cpu.pmmu = mmu.NewPagedMMU(cpu.mem)
	cpu.smmu = mmu.NewSegmentedMMU(cpu.pmmu)
	cpu.smmu.SetModeSource(cpu)

	fault.SetIPSource(func() uint64 { return cpu.ip })
	return cpu
}

// Mode reports the current processor mode.
func (cpu *CPU) Mode() isa.Mode { return cpu.mode }

// Memory exposes the physical bus for machine construction and the
// monitor.
func (cpu *CPU) Memory() *memory.Controller { return cpu.mem }

// MMU exposes the segmented MMU for descriptor inspection.
func (cpu *CPU) MMU() *mmu.SegmentedMMU { return cpu.smmu }

// Flags exposes the flags register.
func (cpu *CPU) Flags() *Flags { return &cpu.flags }

// IP reports the instruction pointer at its observable width for the
// current mode.
func (cpu *CPU) IP() uint64 {
	switch cpu.mode {
	case isa.Real:
		return cpu.ip & 0xFFFF
	case isa.Prot:
		return cpu.ip & 0xFFFFFFFF
	}
	return cpu.ip
}

// SetTrace enables per-instruction tracing.
func (cpu *CPU) SetTrace(on bool) { cpu.trace = on }

// Halted reports whether the CPU has executed HLT.
func (cpu *CPU) Halted() bool { return cpu.halted }

// Reset puts the processor in the architectural power-on state: real
// mode, registers cleared, CS:IP pointing at the reset vector through
// the preloaded CS descriptor, and the stepping/family token in EDX.
func (cpu *CPU) Reset() {
	cpu.mode = isa.Real
	cpu.smmu.Reset()

	// Selectors are seeded directly: the reset descriptor for CS is
	// special (base 0xFFFF0000) and must not be recomputed from the
	// selector.
	cpu.segs[isa.CS] = 0xF000
	cpu.segs[isa.DS] = 0
	cpu.segs[isa.ES] = 0
	cpu.segs[isa.FS] = 0
	cpu.segs[isa.GS] = 0
	cpu.segs[isa.SS] = 0

	for i := range cpu.gprs {
		cpu.gprs[i] = 0
	}

	// EDX carries the stepping/family identification word.
	cpu.gprs[isa.IdxD] = 0x30

	cpu.ip = 0xFFF0
	cpu.flags = Flags{}
	cpu.halted = false
}

// Start resets the processor and runs until HLT.
func (cpu *CPU) Start() {
	cpu.Reset()
	for cpu.Step() {
	}
}

// fetchCursor adapts CS:IP to the decoder's byte source. Position
// reports the consumed count so IP can be advanced by the instruction
// length.
type fetchCursor struct {
	cpu *CPU
	n   int
}

func (f *fetchCursor) Peek() uint8 {
	return f.cpu.read8(isa.CS, f.cpu.ip+uint64(f.n))
}

func (f *fetchCursor) Pop() uint8 {
	b := f.Peek()
	f.n++
	return b
}

func (f *fetchCursor) Match(b uint8) bool {
	if f.Peek() == b {
		f.n++
		return true
	}
	return false
}

func (f *fetchCursor) Position() int { return f.n }

// Step fetches, decodes and executes one instruction. It returns false
// once the CPU halts.
func (cpu *CPU) Step() bool {
	if cpu.halted {
		return false
	}

	cur := &fetchCursor{cpu: cpu}
	instr := decoder.Decode(cur, cpu.mode)
	ip := cpu.ip

	// IP points past the instruction during execution; relative
	// branches are computed from this value.
	cpu.ip += uint64(instr.Length)
	cpu.execute(instr)

	if cpu.trace {
		fmt.Println(dis.Print(instr, ip))
		fmt.Print(cpu.DumpRegisters())
	}
	return !cpu.halted
}

// DisassembleNext decodes the instruction at CS:IP without executing
// it and formats it for the monitor.
func (cpu *CPU) DisassembleNext() string {
	cur := &fetchCursor{cpu: cpu}
	instr := decoder.Decode(cur, cpu.mode)
	return dis.Print(instr, cpu.ip)
}

// read8 and friends fetch through the full memory hierarchy.
func (cpu *CPU) read8(seg isa.SegIndex, ofs uint64) uint8 {
	return cpu.smmu.Read8(mmu.SegmentedAddr{Seg: seg, Offset: ofs})
}

func (cpu *CPU) read16(seg isa.SegIndex, ofs uint64) uint16 {
	return cpu.smmu.Read16(mmu.SegmentedAddr{Seg: seg, Offset: ofs})
}

func (cpu *CPU) read32(seg isa.SegIndex, ofs uint64) uint32 {
	return cpu.smmu.Read32(mmu.SegmentedAddr{Seg: seg, Offset: ofs})
}

func (cpu *CPU) read64(seg isa.SegIndex, ofs uint64) uint64 {
	return cpu.smmu.Read64(mmu.SegmentedAddr{Seg: seg, Offset: ofs})
}

func (cpu *CPU) write16(seg isa.SegIndex, ofs uint64, v uint16) {
	cpu.smmu.Write16(mmu.SegmentedAddr{Seg: seg, Offset: ofs}, v)
}

// jump replaces the instruction pointer.
func (cpu *CPU) jump(ip uint64) {
	cpu.ip = ip
}

// stackPointer reads (R)SP at the stack width of the current mode.
func (cpu *CPU) stackPointer() uint64 {
	switch cpu.mode {
	case isa.Real:
		return uint64(uint16(cpu.gprs[isa.IdxSP]))
	case isa.Prot:
		return uint64(uint32(cpu.gprs[isa.IdxSP]))
	}
	return cpu.gprs[isa.IdxSP]
}

func (cpu *CPU) setStackPointer(sp uint64) {
	switch cpu.mode {
	case isa.Real:
		cpu.gprs[isa.IdxSP] = (cpu.gprs[isa.IdxSP] &^ 0xFFFF) | (sp & 0xFFFF)
	case isa.Prot:
		cpu.gprs[isa.IdxSP] = sp & 0xFFFFFFFF
	default:
		cpu.gprs[isa.IdxSP] = sp
	}
}

// push decrements (R)SP by the value width and stores through SS.
func (cpu *CPU) push(v value) {
	w := uint64(v.bits / 8)
	sp := cpu.stackPointer() - w
	cpu.setStackPointer(sp)

	addr := mmu.SegmentedAddr{Seg: isa.SS, Offset: sp}
	switch v.bits {
	case 16:
		cpu.smmu.Write16(addr, uint16(v.v))
	case 32:
		cpu.smmu.Write32(addr, uint32(v.v))
	case 64:
		cpu.smmu.Write64(addr, v.v)
	default:
		fault.Fatalf("exec", "invalid push width %d", v.bits)
	}
}

// pop reads from SS:(R)SP and then increments (R)SP.
func (cpu *CPU) pop(width int) value {
	sp := cpu.stackPointer()
	addr := mmu.SegmentedAddr{Seg: isa.SS, Offset: sp}

	var v uint64
	switch width {
	case 16:
		v = uint64(cpu.smmu.Read16(addr))
	case 32:
		v = uint64(cpu.smmu.Read32(addr))
	case 64:
		v = cpu.smmu.Read64(addr)
	default:
		fault.Fatalf("exec", "invalid pop width %d", width)
	}

	cpu.setStackPointer(sp + uint64(width/8))
	return newValue(width, v)
}

// DumpRegisters formats the register file the way the trace output and
// monitor show it.
func (cpu *CPU) DumpRegisters() string {
	var b strings.Builder

	if cpu.mode == isa.Real {
		fmt.Fprintf(&b, "ax: %04x  bx: %04x  cx: %04x  dx: %04x\n",
			uint16(cpu.gprs[isa.IdxA]), uint16(cpu.gprs[isa.IdxB]),
			uint16(cpu.gprs[isa.IdxC]), uint16(cpu.gprs[isa.IdxD]))
		fmt.Fprintf(&b, "si: %04x  di: %04x  bp: %04x  sp: %04x\n",
			uint16(cpu.gprs[isa.IdxSI]), uint16(cpu.gprs[isa.IdxDI]),
			uint16(cpu.gprs[isa.IdxBP]), uint16(cpu.gprs[isa.IdxSP]))
		fmt.Fprintf(&b, "cs: %04x  ip: %04x  ds: %04x  ss: %04x\n",
			cpu.segs[isa.CS], uint16(cpu.ip), cpu.segs[isa.DS], cpu.segs[isa.SS])
		fmt.Fprintf(&b, "es: %04x  fs: %04x  gs: %04x\n",
			cpu.segs[isa.ES], cpu.segs[isa.FS], cpu.segs[isa.GS])
		fmt.Fprintf(&b, "flags: %016b\n", cpu.flags.Flags16())
		fmt.Fprintf(&b, "           ODITSZ A P C\n")
	} else {
		for i := 0; i < 16; i += 2 {
			fmt.Fprintf(&b, "%-4s %016x  %-4s %016x\n",
				isa.GPR(i, 64), cpu.gprs[i], isa.GPR(i+1, 64), cpu.gprs[i+1])
		}
		fmt.Fprintf(&b, "rip  %016x  rflags %016x\n", cpu.ip, cpu.flags.RFlags())
	}
	return b.String()
}
