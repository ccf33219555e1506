// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frame

// Checksum computes the trailing checksum byte for a data frame that does
// not yet carry one. The leading SOF byte is excluded.
func Checksum(data []byte) byte {
	chk := byte(checksumSeed)
	if len(data) < 2 {
		return chk
	}
	for _, b := range data[1:] {
		chk ^= b
	}
	return chk
}

// Sum XORs every byte of a complete frame into the seed. A well-formed frame
// sums to SOF.
func Sum(f []byte) byte {
	chk := byte(checksumSeed)
	for _, b := range f {
		chk ^= b
	}
	return chk
}

// Valid reports whether a complete data frame carries a correct checksum.
func Valid(f []byte) bool {
	return len(f) >= MinFrameLength && f[0] == SOF && Sum(f) == SOF
}
