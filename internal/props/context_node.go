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
	"sync"

	"golang.org/x/sys/unix"
)

// contextNode pairs one security context with its property area file.
// Areas are opened lazily on first access; once a node has been denied it
// stays denied until ResetAccess observes the permission coming back.
// All methods are safe for concurrent readers.
type contextNode struct {
	mu       sync.Mutex
	context  string
	filename string
	pa       *propArea
	noAccess bool
}

func newContextNode(context, filename string) *contextNode {
	return &contextNode{context: context, filename: filename}
}

// Open maps the node's area, creating and labeling it when writable. It is
// a no-op if the area is already mapped.
func (n *contextNode) Open(writable bool, fsetxattrFailed *bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.openLocked(writable, fsetxattrFailed)
}

func (n *contextNode) openLocked(writable bool, fsetxattrFailed *bool) bool {
	if n.pa != nil {
		return true
	}
	var err error
	if writable {
		n.pa, err = mapAreaRW(n.filename, n.context, fsetxattrFailed)
	} else {
		n.pa, err = mapAreaRO(n.filename)
	}
	if err != nil {
		n.pa = nil
		return false
	}
	return true
}

// CheckAccessAndOpen returns the node's area, opening it read-only on first
// use, or nil when access is denied.
func (n *contextNode) CheckAccessAndOpen() *propArea {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pa == nil && !n.noAccess {
		if !n.checkAccess() || !n.openLocked(false, nil) {
			n.noAccess = true
		}
	}
	return n.pa
}

// ResetAccess re-validates permission to the node's file, unmapping the
// area if access was revoked since the last check.
func (n *contextNode) ResetAccess() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.checkAccess() {
		n.unmapLocked()
		n.noAccess = true
	} else {
		n.noAccess = false
	}
}

func (n *contextNode) checkAccess() bool {
	return unix.Access(n.filename, unix.R_OK) == nil
}

// Unmap drops the node's mapping.
func (n *contextNode) Unmap() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unmapLocked()
}

func (n *contextNode) unmapLocked() {
	if n.pa != nil {
		n.pa.Close()
		n.pa = nil
	}
}
