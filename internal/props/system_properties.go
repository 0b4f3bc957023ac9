/*
 * Copyright 2025 DeYouOS authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package props

import (
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// SystemProperties is the in-process facade over a property store: it
// routes names to areas, runs the seqlock reader protocol, publishes
// writes, and blocks waiters. One instance per mapped store; processes
// normally hold a single instance for their lifetime.
//
// All reader operations are safe for concurrent use once initialization
// has completed. Update and Add assume the machine-wide single-mutator
// discipline; nothing enforces it.
type SystemProperties struct {
	initialized bool
	filename    string
	contexts    contexts
	interceptor ReadInterceptor
}

// Init maps an existing property store read-only. filename is either a
// properties directory or a legacy single-area file. A directory carrying
// a readable property_info selects the serialized layout; any other
// directory selects the split layout. Init is idempotent: a second call
// only re-validates area access.
func (sp *SystemProperties) Init(filename string) bool {
	if sp.initialized {
		sp.contexts.ResetAccess()
		return true
	}

	if len(filename) >= PropFilenameMax {
		return false
	}
	sp.filename = filename

	var c contexts
	if isDir(filename) {
		if unix.Access(filepath.Join(filename, PropertyInfoFile), unix.R_OK) == nil {
			c = &contextsSerialized{}
		} else {
			c = &contextsSplit{}
		}
	} else {
		c = &contextsPreSplit{}
	}
	if !c.Initialize(false, filename, nil) {
		return false
	}
	sp.contexts = c
	sp.initialized = true
	return true
}

// AreaInit creates the property store: the writer-side initialization used
// by the single property mutator. It always instantiates the serialized
// layout writable, creating and labeling every area file. A labeling
// failure is reported through fsetxattrFailed without failing the init.
func (sp *SystemProperties) AreaInit(filename string, fsetxattrFailed *bool) bool {
	if len(filename) >= PropFilenameMax {
		return false
	}
	sp.filename = filename

	c := &contextsSerialized{}
	if !c.Initialize(true, filename, fsetxattrFailed) {
		return false
	}
	sp.contexts = c
	sp.initialized = true
	return true
}

// AreaSerial returns the current global serial, or math.MaxUint32 when the
// store is not initialized or has no serial area. The acquire load orders
// this read before any subsequent per-property read.
func (sp *SystemProperties) AreaSerial() uint32 {
	if !sp.initialized {
		return math.MaxUint32
	}
	pa := sp.contexts.GetSerialPropArea()
	if pa == nil {
		return math.MaxUint32
	}
	return atomic.LoadUint32(pa.Serial())
}

// Find returns the record for name, or nil when the name is unknown or the
// routing layer denies access.
func (sp *SystemProperties) Find(name string) *PropInfo {
	if !sp.initialized {
		return nil
	}
	pa := sp.contexts.GetPropAreaForName(name)
	if pa == nil {
		logWarnf("Access denied finding property %q", name)
		return nil
	}
	return pa.Find(name)
}

// readMutablePropertyValue runs the seqlock read of a mutable value into
// value, which must hold at least PropValueMax bytes. The returned serial
// is the one that stabilized the read.
//
// The copy is racy by design: a concurrent writer may be overwriting the
// inline bytes. The protocol recovers in two ways. A reader that observes
// the dirty bit routes its copy through the area's backup slot, which holds
// an undamaged pre-update value. And the serial re-load after the copy
// detects any writer that published in between, forcing a retry. The
// atomic loads bracketing the copy order it against both serial
// observations.
func (sp *SystemProperties) readMutablePropertyValue(pi *PropInfo, value []byte) uint32 {
	newSerial := atomic.LoadUint32(&pi.serial)
	var serial uint32
	for {
		serial = newSerial
		length := serialValueLen(serial)
		if serialDirty(serial) {
			pa := sp.contexts.GetPropAreaForName(pi.Name())
			if pa != nil {
				copy(value[:length+1], pa.DirtyBackup()[:length+1])
			} else {
				copy(value[:length+1], pi.value[:length+1])
			}
		} else {
			copy(value[:length+1], pi.value[:length+1])
		}
		newSerial = atomic.LoadUint32(&pi.serial)
		if serial == newSerial {
			break
		}
	}
	return serial
}

// Read copies a record's value, and optionally its name, into the caller's
// buffers. value must hold at least PropValueMax bytes; name, when
// non-nil, at least PropNameMax. Both copies are NUL terminated and
// bounded; a truncated name is logged. Returns the value length.
//
// Long read-only records cannot be surfaced through bounded buffers; Read
// logs and returns the inline advisory value, and callers are pointed at
// ReadCallback.
func (sp *SystemProperties) Read(pi *PropInfo, name, value []byte) int {
	serial := sp.readMutablePropertyValue(pi, value)
	if name != nil {
		if n := strlcpy(name, pi.Name(), PropNameMax); n >= PropNameMax {
			logErrorf("The property name %q is >= %d characters; use ReadCallback to read this property. (the name is truncated to %q)",
				pi.Name(), PropNameMax-1, string(name[:PropNameMax-1]))
		}
	}
	if isReadOnly(pi.Name()) && pi.IsLong() {
		logErrorf("The property %q has a value with length %d that is too large for Get/Read; use ReadCallback instead.",
			pi.Name(), len(pi.LongValue()))
	}
	return int(serialValueLen(serial))
}

// ReadCallback delivers a record's name, value and stabilized serial to fn.
// Read-only records skip the seqlock loop and are read straight from the
// record (long records included, which have no other full-fidelity read
// path); their value is still copied into the Go string passed to fn.
// Mutable records go through the seqlock read into a stack buffer. The
// configured read interceptor interposes on both paths.
func (sp *SystemProperties) ReadCallback(pi *PropInfo, fn func(name, value string, serial uint32)) {
	name := pi.Name()

	// Read-only properties can never change, so the value needs no copy
	// and the serial load needs no ordering against it.
	if isReadOnly(name) {
		serial := atomic.LoadUint32(&pi.serial)
		if pi.IsLong() {
			sp.deliver(fn, name, pi.LongValue(), serial)
		} else {
			sp.deliver(fn, name, string(pi.value[:serialValueLen(serial)]), serial)
		}
		return
	}

	var buf [PropValueMax]byte
	serial := sp.readMutablePropertyValue(pi, buf[:])
	sp.deliver(fn, name, string(buf[:serialValueLen(serial)]), serial)
}

func (sp *SystemProperties) deliver(fn func(name, value string, serial uint32), name, value string, serial uint32) {
	interceptor := sp.interceptor
	if interceptor == nil {
		interceptor = defaultInterceptor
	}
	name, value = interceptor(name, value, serial)
	fn(name, value, serial)
}

// SetReadInterceptor replaces the read-callback interposition. Passing nil
// restores the default UID-range policy.
func (sp *SystemProperties) SetReadInterceptor(fn ReadInterceptor) {
	sp.interceptor = fn
}

// Get is the Find+Read convenience. On a miss it writes an empty string
// into value and returns 0.
func (sp *SystemProperties) Get(name string, value []byte) int {
	pi := sp.Find(name)
	if pi == nil {
		if len(value) > 0 {
			value[0] = 0
		}
		return 0
	}
	return sp.Read(pi, nil, value)
}

// Update publishes a new value for an existing mutable record. Only the
// single machine-wide property mutator may call it.
//
// The write protocol pairs with the seqlock reader: preserve the old value
// in the area's dirty backup slot, flag the serial dirty, overwrite the
// inline value, then publish the new serial with the length and an
// advanced counter. Each serial store is release-ordered by the atomic, so
// a reader observing dirty=1 finds the backup complete and a reader
// observing the final serial finds the new value complete. Both futex
// words are woken wake-all.
func (sp *SystemProperties) Update(pi *PropInfo, value string) error {
	if len(value) >= PropValueMax {
		return ErrValueTooLong
	}
	if !sp.initialized {
		return ErrUninitialized
	}
	if pi.IsLong() {
		return ErrLongProperty
	}

	serialPA := sp.contexts.GetSerialPropArea()
	if serialPA == nil {
		return ErrNoSerialArea
	}
	pa := sp.contexts.GetPropAreaForName(pi.Name())
	if pa == nil {
		logErrorf("Could not find area for %q", pi.Name())
		return ErrAccessDenied
	}

	serial := atomic.LoadUint32(&pi.serial)
	oldLen := serialValueLen(serial)

	backup := pa.DirtyBackup()
	copy(backup[:oldLen+1], pi.value[:oldLen+1])
	serial |= 1
	atomic.StoreUint32(&pi.serial, serial)

	n := copy(pi.value[:PropValueMax-1], value)
	pi.value[n] = 0

	atomic.StoreUint32(&pi.serial, uint32(len(value))<<24|((serial+1)&0xffffff))
	futexWake(&pi.serial, math.MaxInt32)

	gs := serialPA.Serial()
	atomic.StoreUint32(gs, atomic.LoadUint32(gs)+1)
	futexWake(gs, math.MaxInt32)

	return nil
}

// Add inserts a new property. Values of PropValueMax or more bytes are
// only accepted for read-only names, which the area stores as long
// records. A successful insert bumps and wakes the global serial; the
// per-key serial is initialized by the area on creation.
func (sp *SystemProperties) Add(name, value string) error {
	if len(value) >= PropValueMax && !isReadOnly(name) {
		return ErrValueTooLong
	}
	if len(name) == 0 {
		return ErrEmptyName
	}
	if !sp.initialized {
		return ErrUninitialized
	}

	serialPA := sp.contexts.GetSerialPropArea()
	if serialPA == nil {
		return ErrNoSerialArea
	}
	pa := sp.contexts.GetPropAreaForName(name)
	if pa == nil {
		logErrorf("Access denied adding property %q", name)
		return ErrAccessDenied
	}

	if !pa.Add(name, value) {
		return ErrAddFailed
	}

	// There is only a single mutator, but the release store makes the
	// insert visible to a reader waiting on the global serial.
	gs := serialPA.Serial()
	atomic.StoreUint32(gs, atomic.LoadUint32(gs)+1)
	futexWake(gs, math.MaxInt32)
	return nil
}

// WaitAny blocks until the global serial moves past oldSerial and returns
// the new value.
func (sp *SystemProperties) WaitAny(oldSerial uint32) uint32 {
	newSerial, _ := sp.Wait(nil, oldSerial, nil)
	return newSerial
}

// Wait blocks until the chosen serial word changes from oldSerial or the
// relative timeout elapses. A nil pi selects the global serial; a nil
// timeout waits forever. Spurious futex wakes re-enter the wait; a wake
// raced with the writer is recovered by the post-wait load. Returns the
// new serial and true, or zero and false on timeout.
func (sp *SystemProperties) Wait(pi *PropInfo, oldSerial uint32, timeout *time.Duration) (uint32, bool) {
	var serialPtr *uint32
	if pi == nil {
		if !sp.initialized {
			return 0, false
		}
		serialPA := sp.contexts.GetSerialPropArea()
		if serialPA == nil {
			return 0, false
		}
		serialPtr = serialPA.Serial()
	} else {
		serialPtr = &pi.serial
	}

	for {
		var err error
		if timeout != nil {
			err = futexWaitTimeout(serialPtr, oldSerial, timeout.Nanoseconds())
		} else {
			err = futexWait(serialPtr, oldSerial)
		}
		if err == ErrFutexTimeout {
			return 0, false
		}
		newSerial := atomic.LoadUint32(serialPtr)
		if newSerial != oldSerial {
			return newSerial, true
		}
	}
}

// FindNth returns the n-th record visited by Foreach, 0-indexed. O(n) by
// design; it exists for enumeration tooling, not hot paths.
func (sp *SystemProperties) FindNth(n uint32) *PropInfo {
	var current uint32
	var result *PropInfo
	sp.Foreach(func(pi *PropInfo) {
		if result != nil {
			return
		}
		if current == n {
			result = pi
		}
		current++
	})
	return result
}

// Foreach visits every record across every accessible area. Ordering is
// implementation-defined but stable for a given process lifetime.
func (sp *SystemProperties) Foreach(fn func(pi *PropInfo)) error {
	if !sp.initialized {
		return ErrUninitialized
	}
	sp.contexts.ForEach(fn)
	return nil
}

// strlcpy copies src into dst with truncation, always NUL terminating, and
// returns the full source length.
func strlcpy(dst []byte, src string, size int) int {
	n := copy(dst[:size-1], src)
	dst[n] = 0
	return len(src)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
