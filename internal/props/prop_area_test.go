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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestArea(t *testing.T) *propArea {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_area")
	pa, err := mapAreaRW(path, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { pa.Close() })
	return pa
}

func TestAreaAddFind(t *testing.T) {
	pa := createTestArea(t)

	names := []string{
		"net.tcp.default",
		"net.tcp.retries",
		"net.udp.default",
		"service.adb.tcp.port",
		"a",
	}
	for i, name := range names {
		require.True(t, pa.Add(name, fmt.Sprintf("value-%d", i)), "add %s", name)
	}

	for i, name := range names {
		pi := pa.Find(name)
		require.NotNil(t, pi, "find %s", name)
		assert.Equal(t, name, pi.Name())
		want := fmt.Sprintf("value-%d", i)
		assert.Equal(t, uint32(len(want))<<24, pi.Serial())
		assert.Equal(t, want, string(pi.value[:len(want)]))
	}

	assert.Nil(t, pa.Find("net.tcp"), "interior node must not surface as a record")
	assert.Nil(t, pa.Find("net.tcp.missing"))
	assert.Nil(t, pa.Find("completely.unknown"))
}

func TestAreaAddExistingKeepsValue(t *testing.T) {
	pa := createTestArea(t)

	require.True(t, pa.Add("dup.key", "first"))
	require.True(t, pa.Add("dup.key", "second"))

	pi := pa.Find("dup.key")
	require.NotNil(t, pi)
	assert.Equal(t, "first", string(pi.value[:5]))
}

func TestAreaRejectsMalformedNames(t *testing.T) {
	pa := createTestArea(t)

	assert.False(t, pa.Add("", "v"))
	assert.False(t, pa.Add("trailing.dot.", "v"))
	assert.False(t, pa.Add("double..dot", "v"))
}

func TestAreaForeach(t *testing.T) {
	pa := createTestArea(t)

	names := []string{"b.second", "a.first", "c.third", "a.fourth"}
	for _, name := range names {
		require.True(t, pa.Add(name, "x"))
	}

	var first []string
	pa.Foreach(func(pi *PropInfo) { first = append(first, pi.Name()) })
	assert.ElementsMatch(t, names, first)

	// Ordering is implementation-defined but stable.
	var second []string
	pa.Foreach(func(pi *PropInfo) { second = append(second, pi.Name()) })
	assert.Equal(t, first, second)
}

func TestAreaLongValue(t *testing.T) {
	pa := createTestArea(t)

	payload := strings.Repeat("x", 300)
	require.True(t, pa.Add("ro.kernel.cmdline", payload))

	pi := pa.Find("ro.kernel.cmdline")
	require.NotNil(t, pi)
	assert.True(t, pi.IsLong())
	assert.Equal(t, payload, pi.LongValue())

	// Legacy readers that ignore the long flag get the advisory string.
	serial := pi.Serial()
	assert.Equal(t, uint32(len(longLegacyError)), serialValueLen(serial))
	assert.Equal(t, longLegacyError, string(pi.value[:serialValueLen(serial)]))
}

func TestAreaExhaustion(t *testing.T) {
	pa := createTestArea(t)

	value := strings.Repeat("v", 80)
	added := 0
	for i := 0; i < 5000; i++ {
		if !pa.Add(fmt.Sprintf("stress.key.%05d", i), value) {
			break
		}
		added++
	}
	require.Less(t, added, 5000, "area never filled up")
	require.Greater(t, added, 100, "area filled up implausibly early")

	// Records inserted before exhaustion stay reachable.
	pi := pa.Find("stress.key.00000")
	require.NotNil(t, pi)
	assert.Equal(t, value, string(pi.value[:80]))
}

func TestAreaPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist_area")
	pa, err := mapAreaRW(path, "", nil)
	require.NoError(t, err)
	require.True(t, pa.Add("boot.reason", "cold"))
	require.NoError(t, pa.Close())

	ro, err := mapAreaRO(path)
	require.NoError(t, err)
	defer ro.Close()
	assert.True(t, ro.readOnly)

	pi := ro.Find("boot.reason")
	require.NotNil(t, pi)
	assert.Equal(t, "cold", string(pi.value[:4]))
}

func TestAreaRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not_an_area")
	require.NoError(t, os.WriteFile(path, make([]byte, areaSize), 0o644))

	_, err := mapAreaRO(path)
	assert.Error(t, err)
}

func TestAreaRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short_area")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	_, err := mapAreaRO(path)
	assert.Error(t, err)
}
