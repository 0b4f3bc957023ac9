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

// contextsSerialized serves the current layout: the routing table is the
// serialized property_info file inside the properties directory, next to
// one area file per security context and the distinguished serial area.
// This is the only variant the property mutator initializes writable; in
// that mode every area file is created, sized and labeled up front.
type contextsSerialized struct {
	dir      string
	entries  []routeEntry
	nodes    []*contextNode
	serialPA *propArea
}

func (c *contextsSerialized) Initialize(writable bool, filename string, fsetxattrFailed *bool) bool {
	c.dir = filename

	table, err := ReadPropertyInfoFile(filepath.Join(filename, PropertyInfoFile))
	if err != nil {
		logErrorf("failed to load property info: %v", err)
		return false
	}
	c.entries, c.nodes = buildRouting(table, func(context string) string {
		return filepath.Join(filename, context)
	})

	serialPath := filepath.Join(filename, SerialAreaFile)
	if writable {
		for _, n := range c.nodes {
			if !n.Open(true, fsetxattrFailed) {
				logErrorf("failed to create property area for context %s", n.context)
				return false
			}
		}
		pa, err := mapAreaRW(serialPath, serialAreaContext, fsetxattrFailed)
		if err != nil {
			logErrorf("failed to create serial property area: %v", err)
			return false
		}
		c.serialPA = pa
	} else {
		pa, err := mapAreaRO(serialPath)
		if err != nil {
			logErrorf("failed to map serial property area: %v", err)
			return false
		}
		c.serialPA = pa
	}
	return true
}

func (c *contextsSerialized) GetPropAreaForName(name string) *propArea {
	i := routeFor(c.entries, name)
	if i < 0 {
		return nil
	}
	return c.nodes[c.entries[i].node].CheckAccessAndOpen()
}

func (c *contextsSerialized) GetSerialPropArea() *propArea {
	return c.serialPA
}

func (c *contextsSerialized) ForEach(fn func(pi *PropInfo)) {
	for _, n := range c.nodes {
		if pa := n.CheckAccessAndOpen(); pa != nil {
			pa.Foreach(fn)
		}
	}
}

func (c *contextsSerialized) ResetAccess() {
	for _, n := range c.nodes {
		n.ResetAccess()
	}
}

func (c *contextsSerialized) FreeAndUnmap() {
	for _, n := range c.nodes {
		n.Unmap()
	}
	if c.serialPA != nil {
		c.serialPA.Close()
		c.serialPA = nil
	}
}
