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

	"golang.org/x/sys/unix"
)

// selinuxXattr is the xattr carrying the security context label of a
// property area file.
const selinuxXattr = "security.selinux"

// mapAreaRW creates (or truncates) a property area file and maps it
// read-write. Only the single property mutator does this. When context is
// non-empty the file is labeled via fsetxattr; a labeling failure is
// reported through fsetxattrFailed rather than failing the map, so an
// unlabeled boot can still come up.
func mapAreaRW(path, context string, fsetxattrFailed *bool) (*propArea, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|unix.O_NOFOLLOW, 0444)
	if err != nil {
		return nil, fmt.Errorf("failed to create property area %s: %w", path, err)
	}
	defer file.Close()

	if context != "" {
		if err := unix.Fsetxattr(int(file.Fd()), selinuxXattr, []byte(context), 0); err != nil {
			if fsetxattrFailed != nil {
				*fsetxattrFailed = true
			}
		}
	}

	if err := file.Truncate(areaSize); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to resize property area %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, areaSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to mmap property area %s: %w", path, err)
	}

	pa := &propArea{mem: mem, path: path}
	pa.initHeader()
	return pa, nil
}

// mapAreaRO maps an existing property area file read-only. A read-only
// mapping is sufficient for every reader operation including futex waits
// on the serial words.
func mapAreaRO(path string) (*propArea, error) {
	file, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open property area %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat property area %s: %w", path, err)
	}
	if info.Size() < areaSize {
		return nil, fmt.Errorf("property area %s too small: %d bytes", path, info.Size())
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, areaSize, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap property area %s: %w", path, err)
	}

	pa := &propArea{mem: mem, path: path, readOnly: true}
	if !pa.validateHeader() {
		unix.Munmap(mem)
		return nil, fmt.Errorf("invalid property area header in %s", path)
	}
	return pa, nil
}

// Close unmaps the area. The handle must not be used afterwards.
func (pa *propArea) Close() error {
	if pa.mem == nil {
		return nil
	}
	err := unix.Munmap(pa.mem)
	pa.mem = nil
	return err
}
