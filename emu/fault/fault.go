package fault

/*
 * z86 - Fatal emulator faults.
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
	"log/slog"
)

// Every error in the core is fatal: out of range memory, overlapping
// regions, ROM writes, unimplemented opcodes. A Fault is raised as a
// panic after being logged; main recovers it at top level and exits
// nonzero, tests recover it directly.

// Fault describes one fatal condition. Module is the subsystem tag, IP
// the instruction pointer at the time of the fault when one was
// registered.
type Fault struct {
	Module  string
	IP      uint64
	HasIP   bool
	Message string
}

func (f *Fault) Error() string {
	if f.HasIP {
		return fmt.Sprintf("%s: %s (ip=%#x)", f.Module, f.Message, f.IP)
	}
	return f.Module + ": " + f.Message
}

// ipSource reports the current instruction pointer for diagnostics. The
// CPU registers itself here at construction.
var ipSource func() uint64

// SetIPSource installs the instruction pointer callback.
func SetIPSource(src func() uint64) {
	ipSource = src
}

// Fatalf logs the diagnostic and raises the fault.
func Fatalf(module string, format string, a ...any) {
	f := &Fault{Module: module, Message: fmt.Sprintf(format, a...)}
	if ipSource != nil {
		f.IP = ipSource()
		f.HasIP = true
	}
	slog.Error(f.Error())
	panic(f)
}

// Recover converts a recovered panic value back into a Fault. Panics
// that are not Faults are re-raised.
func Recover(r any) *Fault {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fault); ok {
		return f
	}
	panic(r)
}
