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

package sysprops_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeYouOS/sysprops"
)

// TestGlobalStore drives the process-global facade end to end: provision a
// store, mutate it, read it back, enumerate it.
func TestGlobalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "__properties__")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, sysprops.WritePropertyInfoFile(
		filepath.Join(dir, "property_info"),
		[]sysprops.PropertyInfoEntry{
			{Prefix: "test.", Context: "u:object_r:test_prop:s0"},
			{Prefix: "*", Context: "u:object_r:default_prop:s0"},
		},
	))

	var fsetxattrFailed bool
	require.True(t, sysprops.AreaInit(dir, &fsetxattrFailed))

	require.NoError(t, sysprops.Add("test.key", "value"))
	buf := make([]byte, sysprops.ValueMax)
	n := sysprops.Get("test.key", buf)
	assert.Equal(t, 5, n)
	assert.Equal(t, "value", string(buf[:n]))

	pi := sysprops.Find("test.key")
	require.NotNil(t, pi)
	require.NoError(t, sysprops.Update(pi, "value2"))
	n = sysprops.Get("test.key", buf)
	assert.Equal(t, "value2", string(buf[:n]))

	seen := 0
	require.NoError(t, sysprops.Foreach(func(pi *sysprops.PropInfo) { seen++ }))
	assert.Equal(t, 1, seen)
	assert.Same(t, pi, sysprops.FindNth(0))
}
