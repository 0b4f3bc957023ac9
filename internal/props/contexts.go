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

import "strings"

// contexts routes a property name to the area that owns it. Three variants
// exist, selected at Init time from the shape of the property filename:
// a single pre-split area, a split layout reconstructed from the
// property_contexts configuration, and the serialized layout whose routing
// table ships in the property_info file. After initialization the reader
// methods are safe to call concurrently from many threads.
type contexts interface {
	Initialize(writable bool, filename string, fsetxattrFailed *bool) bool
	GetPropAreaForName(name string) *propArea
	GetSerialPropArea() *propArea
	ForEach(fn func(pi *PropInfo))
	ResetAccess()
	FreeAndUnmap()
}

// routeEntry binds a name prefix to a context node index. The prefix "*"
// is the catch-all.
type routeEntry struct {
	prefix string
	node   int
}

// routeFor returns the index of the longest-prefix entry matching name,
// or -1 when no entry matches.
func routeFor(entries []routeEntry, name string) int {
	best := -1
	bestLen := -1
	for i, e := range entries {
		if e.prefix == "*" {
			if bestLen < 0 {
				best = i
				bestLen = 0
			}
			continue
		}
		if len(e.prefix) > bestLen && strings.HasPrefix(name, e.prefix) {
			best = i
			bestLen = len(e.prefix)
		}
	}
	return best
}

// buildRouting folds a routing table into per-context nodes and prefix
// entries pointing at them. areaPath maps a context label to its backing
// file.
func buildRouting(table []PropertyInfoEntry, areaPath func(context string) string) ([]routeEntry, []*contextNode) {
	var entries []routeEntry
	var nodes []*contextNode
	byContext := make(map[string]int)
	for _, e := range table {
		idx, ok := byContext[e.Context]
		if !ok {
			idx = len(nodes)
			byContext[e.Context] = idx
			nodes = append(nodes, newContextNode(e.Context, areaPath(e.Context)))
		}
		entries = append(entries, routeEntry{prefix: e.Prefix, node: idx})
	}
	return entries, nodes
}
