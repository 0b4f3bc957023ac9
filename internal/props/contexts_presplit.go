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

// contextsPreSplit serves the legacy layout where a single property area
// file holds every key. There is no per-name access control; the one area
// is also the serial area.
type contextsPreSplit struct {
	pa *propArea
}

func (c *contextsPreSplit) Initialize(writable bool, filename string, fsetxattrFailed *bool) bool {
	if writable {
		return false
	}
	pa, err := mapAreaRO(filename)
	if err != nil {
		logErrorf("failed to map property area %s: %v", filename, err)
		return false
	}
	c.pa = pa
	return true
}

// GetPropAreaForName returns the single area; pre-split properties carry
// no access checks.
func (c *contextsPreSplit) GetPropAreaForName(name string) *propArea {
	return c.pa
}

func (c *contextsPreSplit) GetSerialPropArea() *propArea {
	return c.pa
}

func (c *contextsPreSplit) ForEach(fn func(pi *PropInfo)) {
	c.pa.Foreach(fn)
}

func (c *contextsPreSplit) ResetAccess() {
}

func (c *contextsPreSplit) FreeAndUnmap() {
	if c.pa != nil {
		c.pa.Close()
		c.pa = nil
	}
}
