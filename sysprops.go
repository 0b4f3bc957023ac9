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

// Package sysprops exposes the process-global system property store: a
// shared-memory key/value registry of short textual configuration values
// readable by every process on the host and mutated by a single privileged
// process.
//
// The package-level functions operate on one lazily initialized store per
// process, mirroring how the C library exposes the property area. The
// props.SystemProperties type behind them lives in an internal package, so
// code outside this module cannot hold several stores in one process.
package sysprops

import (
	"time"

	"github.com/DeYouOS/sysprops/internal/props"
)

// PropertyFilename is the canonical location of the properties directory.
const PropertyFilename = "/dev/__properties__"

// Store limits, part of the cross-process ABI.
const (
	NameMax     = props.PropNameMax
	ValueMax    = props.PropValueMax
	FilenameMax = props.PropFilenameMax
)

// PropInfo is a live view of one property record inside a mapped area.
type PropInfo = props.PropInfo

// ReadInterceptor interposes on values delivered through ReadCallback.
type ReadInterceptor = props.ReadInterceptor

// PropertyInfoEntry binds a name prefix to the security context owning it.
type PropertyInfoEntry = props.PropertyInfoEntry

var global props.SystemProperties

// Init maps the property store at filename read-only. Idempotent; a second
// call re-validates access.
func Init(filename string) bool {
	return global.Init(filename)
}

// AreaInit creates the property store at filename writable. Only the
// machine's single property mutator calls this.
func AreaInit(filename string, fsetxattrFailed *bool) bool {
	return global.AreaInit(filename, fsetxattrFailed)
}

// AreaSerial returns the global serial, or math.MaxUint32 when the store
// is unavailable.
func AreaSerial() uint32 {
	return global.AreaSerial()
}

// Find returns the record for name, or nil.
func Find(name string) *PropInfo {
	return global.Find(name)
}

// Get copies the value of name into value (at least ValueMax bytes) and
// returns its length; 0 with an empty string on a miss.
func Get(name string, value []byte) int {
	return global.Get(name, value)
}

// Read copies a record's value and optionally its name into the caller's
// buffers and returns the value length.
func Read(pi *PropInfo, name, value []byte) int {
	return global.Read(pi, name, value)
}

// ReadCallback delivers a record's name, value and serial to fn without
// bounded-buffer truncation.
func ReadCallback(pi *PropInfo, fn func(name, value string, serial uint32)) {
	global.ReadCallback(pi, fn)
}

// Update publishes a new value for an existing record.
func Update(pi *PropInfo, value string) error {
	return global.Update(pi, value)
}

// Add inserts a new property.
func Add(name, value string) error {
	return global.Add(name, value)
}

// Wait blocks until the record's serial (or the global serial when pi is
// nil) moves past oldSerial, or the timeout elapses.
func Wait(pi *PropInfo, oldSerial uint32, timeout *time.Duration) (uint32, bool) {
	return global.Wait(pi, oldSerial, timeout)
}

// WaitAny blocks until any property changes.
func WaitAny(oldSerial uint32) uint32 {
	return global.WaitAny(oldSerial)
}

// Foreach visits every accessible record.
func Foreach(fn func(pi *PropInfo)) error {
	return global.Foreach(fn)
}

// FindNth returns the n-th record in Foreach order.
func FindNth(n uint32) *PropInfo {
	return global.FindNth(n)
}

// SetReadInterceptor replaces the ReadCallback interposition policy; nil
// restores the default UID-range policy.
func SetReadInterceptor(fn ReadInterceptor) {
	global.SetReadInterceptor(fn)
}

// WritePropertyInfoFile serializes a routing table into a property_info
// file, the input AreaInit provisions a store from.
func WritePropertyInfoFile(path string, entries []PropertyInfoEntry) error {
	return props.WritePropertyInfoFile(path, entries)
}
