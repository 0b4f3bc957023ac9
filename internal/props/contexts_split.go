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

import "path/filepath"

// contextsSplit serves the split layout: one area file per security
// context under the properties directory, with the routing table
// reconstructed from the property_contexts text configuration at init.
type contextsSplit struct {
	dir      string
	entries  []routeEntry
	nodes    []*contextNode
	serialPA *propArea
}

func (c *contextsSplit) Initialize(writable bool, filename string, fsetxattrFailed *bool) bool {
	if writable {
		return false
	}
	c.dir = filename

	table, err := ReadPropertyContextsFile(filepath.Join(filename, PropertyContextsFile))
	if err != nil {
		logErrorf("failed to load property contexts: %v", err)
		return false
	}
	c.entries, c.nodes = buildRouting(table, func(context string) string {
		return filepath.Join(filename, context)
	})

	pa, err := mapAreaRO(filepath.Join(filename, SerialAreaFile))
	if err != nil {
		logErrorf("failed to map serial property area: %v", err)
		return false
	}
	c.serialPA = pa
	return true
}

func (c *contextsSplit) GetPropAreaForName(name string) *propArea {
	i := routeFor(c.entries, name)
	if i < 0 {
		return nil
	}
	return c.nodes[c.entries[i].node].CheckAccessAndOpen()
}

func (c *contextsSplit) GetSerialPropArea() *propArea {
	return c.serialPA
}

func (c *contextsSplit) ForEach(fn func(pi *PropInfo)) {
	for _, n := range c.nodes {
		if pa := n.CheckAccessAndOpen(); pa != nil {
			pa.Foreach(fn)
		}
	}
}

func (c *contextsSplit) ResetAccess() {
	for _, n := range c.nodes {
		n.ResetAccess()
	}
}

func (c *contextsSplit) FreeAndUnmap() {
	for _, n := range c.nodes {
		n.Unmap()
	}
	if c.serialPA != nil {
		c.serialPA.Close()
		c.serialPA = nil
	}
}
