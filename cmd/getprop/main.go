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

// getprop prints properties from a mapped store: all of them, a single
// named one, or — with -watch — blocks until any property changes.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/DeYouOS/sysprops"
)

func main() {
	dir := flag.String("dir", sysprops.PropertyFilename, "properties directory or legacy area file")
	watch := flag.Bool("watch", false, "block until any property changes, then print the new global serial")
	flag.Parse()

	if !sysprops.Init(*dir) {
		log.Fatalf("Failed to initialize property store at %s", *dir)
	}

	if *watch {
		serial := sysprops.AreaSerial()
		fmt.Printf("waiting on global serial %d\n", serial)
		fmt.Printf("global serial now %d\n", sysprops.WaitAny(serial))
		return
	}

	if name := flag.Arg(0); name != "" {
		buf := make([]byte, sysprops.ValueMax)
		n := sysprops.Get(name, buf)
		fmt.Println(string(buf[:n]))
		return
	}

	err := sysprops.Foreach(func(pi *sysprops.PropInfo) {
		sysprops.ReadCallback(pi, func(name, value string, serial uint32) {
			fmt.Printf("[%s]: [%s]\n", name, value)
		})
	})
	if err != nil {
		log.Fatalf("Failed to enumerate properties: %v", err)
	}
}
