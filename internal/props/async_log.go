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

	"golang.org/x/sys/unix"
)

// Some property operations run from signal-adjacent contexts, so
// diagnostics bypass the stdlib log machinery: each message is preformatted
// into one buffer and emitted with a single write(2) to stderr. Logging
// never changes operation results.

const stderrFD = 2

func logWarnf(format string, args ...any) {
	logf("W", format, args...)
}

func logErrorf(format string, args ...any) {
	logf("E", format, args...)
}

func logf(level, format string, args ...any) {
	var buf [512]byte
	b := append(buf[:0], "sysprops "...)
	b = append(b, level...)
	b = append(b, ": "...)
	b = fmt.Appendf(b, format, args...)
	b = append(b, '\n')
	unix.Write(stderrFD, b)
}
