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

import "errors"

// ErrFutexTimeout is returned by futexWaitTimeout when the wait times out.
var ErrFutexTimeout = errors.New("futex timeout")

// ErrUnsupported is returned on platforms without futex and shared-mapping
// support.
var ErrUnsupported = errors.New("property store not supported on this platform")

// Store operation failures. Every failure of the core surfaces as one of
// these sentinels or a nil/zero result; no panics escape.
var (
	ErrUninitialized = errors.New("property store not initialized")
	ErrValueTooLong  = errors.New("property value too long")
	ErrEmptyName     = errors.New("property name empty")
	ErrNoSerialArea  = errors.New("no serial property area")
	ErrAccessDenied  = errors.New("property area access denied")
	ErrLongProperty  = errors.New("long read-only property cannot be updated")
	ErrAddFailed     = errors.New("property could not be added")
)
