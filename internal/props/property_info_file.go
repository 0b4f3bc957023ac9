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
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Well-known files inside a properties directory.
const (
	// PropertyInfoFile is the serialized routing table; its presence
	// selects the serialized contexts variant.
	PropertyInfoFile = "property_info"

	// PropertyContextsFile is the legacy text routing table used by the
	// split contexts variant.
	PropertyContextsFile = "property_contexts"

	// SerialAreaFile is the distinguished area holding the global serial.
	SerialAreaFile = "properties_serial"

	serialAreaContext = "u:object_r:properties_serial:s0"
)

// property_info binary format: magic, version, entry count, then for each
// entry a length-prefixed prefix and context label.
const (
	propertyInfoMagic   = "PROPINFO"
	propertyInfoVersion = uint32(1)
)

// PropertyInfoEntry binds one property name prefix to the security context
// labeling the area file that owns the prefix. The prefix "*" catches
// everything no other entry claims.
type PropertyInfoEntry struct {
	Prefix  string
	Context string
}

// ReadPropertyInfoFile loads a serialized routing table.
func ReadPropertyInfoFile(path string) ([]PropertyInfoEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read property info %s: %w", path, err)
	}

	r := bytes.NewReader(data)
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || string(magic[:]) != propertyInfoMagic {
		return nil, fmt.Errorf("invalid property info magic in %s", path)
	}
	var version, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("truncated property info %s: %w", path, err)
	}
	if version != propertyInfoVersion {
		return nil, fmt.Errorf("unsupported property info version %d in %s", version, path)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("truncated property info %s: %w", path, err)
	}

	entries := make([]PropertyInfoEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		prefix, err := readLengthPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("truncated property info entry %d in %s: %w", i, path, err)
		}
		context, err := readLengthPrefixed(r)
		if err != nil {
			return nil, fmt.Errorf("truncated property info entry %d in %s: %w", i, path, err)
		}
		entries = append(entries, PropertyInfoEntry{Prefix: prefix, Context: context})
	}
	return entries, nil
}

// WritePropertyInfoFile serializes a routing table so a reader can later
// select the serialized contexts variant. Round-trips with
// ReadPropertyInfoFile.
func WritePropertyInfoFile(path string, entries []PropertyInfoEntry) error {
	var buf bytes.Buffer
	buf.WriteString(propertyInfoMagic)
	binary.Write(&buf, binary.LittleEndian, propertyInfoVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(len(entries)))
	for _, e := range entries {
		writeLengthPrefixed(&buf, e.Prefix)
		writeLengthPrefixed(&buf, e.Context)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0444); err != nil {
		return fmt.Errorf("failed to write property info %s: %w", path, err)
	}
	return nil
}

func readLengthPrefixed(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeLengthPrefixed(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

// ReadPropertyContextsFile parses the legacy text routing table: one
// "prefix context" pair per line, '#' starting a comment.
func ReadPropertyContextsFile(path string) ([]PropertyInfoEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open property contexts %s: %w", path, err)
	}
	defer file.Close()

	var entries []PropertyInfoEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, PropertyInfoEntry{Prefix: fields[0], Context: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read property contexts %s: %w", path, err)
	}
	return entries, nil
}
