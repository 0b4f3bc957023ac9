//go:build linux

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
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// The serial words live in MAP_SHARED file mappings and are waited on from
// unrelated processes, so the shared futex ops are required here; the
// PRIVATE variants would key the wait to this process only.
//
// golang.org/x/sys/unix does not export the classic futex(2) operation
// codes, so the stable kernel ABI values are declared locally.
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait waits for the value at addr to change from val.
// It returns when either:
//   - The value at addr is no longer equal to val
//   - Another process calls futexWake on the same address
//   - The system call is interrupted
//
// This function should only be called when the logical condition is unmet
// and *addr == val. Always re-check the condition after this returns due
// to possible spurious wakeups.
func futexWait(addr *uint32, val uint32) error {
	// Re-check the value atomically before entering the syscall. This
	// prevents the lost-wake race where the mutator advances the serial
	// and wakes between our snapshot and futex entry.
	if atomic.LoadUint32(addr) != val {
		return nil
	}

	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), // uaddr - address to wait on
		futexWaitOp,                   // futex_op - shared wait
		uintptr(val),                  // val - expected value
		0,                             // timeout - infinite (NULL)
		0,                             // uaddr2 - unused
		0,                             // val3 - unused
	)

	if errno != 0 {
		// EAGAIN means the value didn't match - expected, not an error
		if errno == unix.EAGAIN {
			return nil
		}
		// EINTR means interrupted by signal - also not a real error here
		if errno == unix.EINTR {
			return nil
		}
		return fmt.Errorf("futex wait failed: %w", errno)
	}
	return nil
}

// futexWaitTimeout waits on addr until the value changes from val or the
// relative timeout elapses. timeout is specified in nanoseconds and is
// measured against the monotonic clock; a non-positive timeout falls back
// to an infinite wait. Returns ErrFutexTimeout if the wait times out.
func futexWaitTimeout(addr *uint32, val uint32, timeoutNs int64) error {
	if timeoutNs <= 0 {
		return futexWait(addr, val)
	}

	if atomic.LoadUint32(addr) != val {
		return nil
	}

	ts := unix.NsecToTimespec(timeoutNs)

	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), // uaddr - address to wait on
		futexWaitOp,                   // futex_op - shared wait
		uintptr(val),                  // val - expected value
		uintptr(unsafe.Pointer(&ts)),  // timeout - relative timespec
		0,                             // uaddr2 - unused
		0,                             // val3 - unused
	)

	if errno != 0 {
		if errno == unix.EAGAIN {
			return nil
		}
		if errno == unix.EINTR {
			return nil
		}
		if errno == unix.ETIMEDOUT {
			return ErrFutexTimeout
		}
		return fmt.Errorf("futex wait failed: %w", errno)
	}
	return nil
}

// futexWake wakes up to n waiters on addr across all processes sharing the
// mapping. Returns the number of waiters actually woken.
func futexWake(addr *uint32, n int) (int, error) {
	r1, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)), // uaddr - address to wake on
		futexWakeOp,                   // futex_op - shared wake
		uintptr(n),                    // val - number of waiters to wake
		0,                             // timeout - unused for wake
		0,                             // uaddr2 - unused
		0,                             // val3 - unused
	)

	if errno != 0 {
		return 0, fmt.Errorf("futex wake failed: %w", errno)
	}
	return int(r1), nil
}
