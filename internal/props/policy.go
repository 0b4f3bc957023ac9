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

import "os"

// ReadInterceptor interposes between a stabilized read and the ReadCallback
// consumer. It may substitute the delivered name and value based on caller
// identity; the serial passes through unchanged and the store itself is
// never modified.
type ReadInterceptor func(name, value string, serial uint32) (string, string)

// appUIDSubstitutions is the allowlist of exact-name substitutions applied
// to app-range callers: USB and adb state is reported as inert.
var appUIDSubstitutions = map[string]string{
	"init.svc.adbd":          "stopped",
	"sys.usb.configfs":       "0",
	"persist.sys.usb.config": "none",
	"sys.usb.config":         "none",
	"sys.usb.state":          "none",
}

// UIDPolicyInterceptor returns the interceptor applying appUIDSubstitutions
// when the caller UID reported by uid falls into the application ranges
// [10000, 19999] or [90000, 99999]. Names outside the allowlist, and all
// callers outside those ranges, are delivered untouched.
func UIDPolicyInterceptor(uid func() int) ReadInterceptor {
	return func(name, value string, serial uint32) (string, string) {
		u := uid()
		if (u < 10000 || u > 19999) && (u < 90000 || u > 99999) {
			return name, value
		}
		if sub, ok := appUIDSubstitutions[name]; ok {
			return name, sub
		}
		return name, value
	}
}

// defaultInterceptor is installed when a SystemProperties has no explicit
// interceptor.
var defaultInterceptor = UIDPolicyInterceptor(os.Getuid)
