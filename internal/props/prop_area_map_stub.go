//go:build !linux

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

// mapAreaRW is not supported on this platform.
func mapAreaRW(path, context string, fsetxattrFailed *bool) (*propArea, error) {
	return nil, ErrUnsupported
}

// mapAreaRO is not supported on this platform.
func mapAreaRO(path string) (*propArea, error) {
	return nil, ErrUnsupported
}

// Close is a no-op on this platform.
func (pa *propArea) Close() error {
	return nil
}
