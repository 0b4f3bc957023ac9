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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRouting covers the namespaces the tests exercise plus a catch-all.
var testRouting = []PropertyInfoEntry{
	{Prefix: "ro.", Context: "u:object_r:build_prop:s0"},
	{Prefix: "debug.", Context: "u:object_r:debug_prop:s0"},
	{Prefix: "sys.", Context: "u:object_r:system_prop:s0"},
	{Prefix: "persist.", Context: "u:object_r:persist_prop:s0"},
	{Prefix: "init.", Context: "u:object_r:init_prop:s0"},
	{Prefix: "*", Context: "u:object_r:default_prop:s0"},
}

// createTestStore provisions a writable store in a fresh directory and
// registers cleanup of its mappings. The returned instance is the single
// mutator for that store.
func createTestStore(t *testing.T) *SystemProperties {
	t.Helper()
	return createTestStoreWithRouting(t, testRouting)
}

func createTestStoreWithRouting(t *testing.T, routing []PropertyInfoEntry) *SystemProperties {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "__properties__")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, WritePropertyInfoFile(filepath.Join(dir, PropertyInfoFile), routing))

	sp := &SystemProperties{}
	// Labeling fails on filesystems without SELinux support; that is
	// reported, not fatal, exactly as on an unlabeled boot.
	var fsetxattrFailed bool
	if !sp.AreaInit(dir, &fsetxattrFailed) {
		t.Fatalf("AreaInit(%s) failed", dir)
	}
	t.Cleanup(sp.contexts.FreeAndUnmap)
	return sp
}

// openTestReader maps the store created by createTestStore read-only, the
// way an unprivileged client process would.
func openTestReader(t *testing.T, sp *SystemProperties) *SystemProperties {
	t.Helper()

	reader := &SystemProperties{}
	if !reader.Init(sp.filename) {
		t.Fatalf("Init(%s) failed", sp.filename)
	}
	t.Cleanup(reader.contexts.FreeAndUnmap)
	return reader
}
