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

// Package props implements the reader/writer core of a process-shared
// system property store: a key/value registry of short textual
// configuration values that any process on the host may read and a single
// privileged process may mutate.
//
// Values live in memory-mapped property area files, so every reader sees
// updates without IPC round-trips. Coordination across processes uses
// atomic serial counters embedded in the mapped regions and the kernel
// futex primitive. Readers follow a seqlock-style protocol with a dirty
// backup copy so that a value mutation in progress never surfaces a torn
// byte string; writers publish with the matching release protocol and wake
// futex waiters on both the per-key serial and a store-wide global serial.
//
// The package prioritizes correctness of the cross-process memory-ordering
// contract over raw throughput on the mutation path; reads are wait-free
// except for a retry loop bounded by concurrent writer progress.
package props
