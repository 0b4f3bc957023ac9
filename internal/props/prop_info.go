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
	"sync/atomic"
	"unsafe"
)

// Property store limits. These are part of the cross-process ABI: every
// process mapping a property area agrees on them.
const (
	// PropNameMax bounds the name buffer filled by Read. Property names
	// themselves may be longer; Read truncates and logs.
	PropNameMax = 32

	// PropValueMax bounds a mutable property value, including the
	// trailing NUL. Read-only properties may exceed it via long records.
	PropValueMax = 92

	// PropFilenameMax bounds the property filename accepted by Init and
	// AreaInit.
	PropFilenameMax = 1024
)

// Serial word encoding, shared with every other process mapping the area:
//
//	bit  0      dirty bit, set while the inline value is being overwritten
//	bits 1..23  update counter, advanced once per successful update
//	bits 24..31 current value length
//
// longFlag lives in the counter region of records that were created with an
// out-of-line value; such records are never updated, so the flag is stable.
const longFlag uint32 = 1 << 16

// serialDirty reports whether the dirty bit is set in a serial word.
func serialDirty(serial uint32) bool {
	return serial&1 != 0
}

// serialValueLen extracts the current value length from a serial word.
func serialValueLen(serial uint32) uint32 {
	return serial >> 24
}

// longLegacyError is the inline value stored in a long record. A reader
// that ignores the long flag and copies the inline value gets this advisory
// string instead of a silently truncated payload.
const longLegacyError = "Must use ReadCallback() to read this property"

const (
	// Offset of the out-of-line payload offset within the value union of
	// a long record. The advisory string above must fit below it.
	longOffsetPos = 56

	// Upper bound when scanning shared memory for a NUL terminator.
	maxCStringScan = 1024
)

// PropInfo is the fixed-layout per-key record inside a property area:
// a 32-bit atomic serial word, the inline value buffer, and the
// NUL-terminated name immediately after the struct. Instances are never
// constructed in Go memory; they are views into a mapped area, so the
// struct layout is load-bearing.
type PropInfo struct {
	serial uint32
	value  [PropValueMax]byte
	// NUL-terminated name follows the struct in the area.
}

const propInfoSize = 4 + PropValueMax

// Name returns the immutable property name.
func (pi *PropInfo) Name() string {
	return goStringAt(unsafe.Add(unsafe.Pointer(pi), propInfoSize), maxCStringScan)
}

// Serial returns the current serial word.
func (pi *PropInfo) Serial() uint32 {
	return atomic.LoadUint32(&pi.serial)
}

// IsLong reports whether the record stores its value out of line. Only
// read-only records are ever long, and their payload is immutable.
func (pi *PropInfo) IsLong() bool {
	return atomic.LoadUint32(&pi.serial)&longFlag != 0
}

// LongValue returns the out-of-line payload of a long record. It must only
// be called when IsLong reports true.
func (pi *PropInfo) LongValue() string {
	off := *(*uint32)(unsafe.Pointer(&pi.value[longOffsetPos]))
	return goStringAt(unsafe.Add(unsafe.Pointer(pi), int(off)), maxLongValueScan)
}

const maxLongValueScan = 128 * 1024

// initValue initializes a freshly allocated ordinary record. The record is
// not yet reachable from the trie, so plain stores suffice.
func (pi *PropInfo) initValue(value string) {
	pi.serial = uint32(len(value)) << 24
	copy(pi.value[:], value)
	pi.value[len(value)] = 0
}

// initLongValue initializes a freshly allocated long record whose payload
// was placed offsetDelta bytes past the record start.
func (pi *PropInfo) initLongValue(offsetDelta uint32) {
	pi.serial = uint32(len(longLegacyError))<<24 | longFlag
	copy(pi.value[:], longLegacyError)
	pi.value[len(longLegacyError)] = 0
	*(*uint32)(unsafe.Pointer(&pi.value[longOffsetPos])) = offsetDelta
}

// goStringAt copies the NUL-terminated bytes at p into a Go string,
// scanning at most max bytes.
func goStringAt(p unsafe.Pointer, max int) string {
	b := unsafe.Slice((*byte)(p), max)
	for i := 0; i < len(b); i++ {
		if b[i] == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// isReadOnly reports whether a property name belongs to the immutable
// "ro." namespace.
func isReadOnly(name string) bool {
	return len(name) >= 3 && name[:3] == "ro."
}
