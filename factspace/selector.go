/*
 * Copyright 2024 The Prodrule Authors.
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

// Package factspace holds inserted facts, assigns stable identities and
// selectors, and indexes live bindings by type.
package factspace

import "prodrule/types"

// Encoding is a 64-bit packing of up to four selectors (four 16-bit lanes),
// used as a set key to deduplicate plan work items. Two selector sequences
// encode to the same value only if they are the same selectors in the same
// order.
type Encoding uint64

// Encode packs up to types.MaxArity selectors into a single Encoding.
// Trailing unused lanes are zero, which is safe because 0 is
// types.InvalidSelector and never assigned to a real binding.
func Encode(selectors []types.Selector) Encoding {
	var enc Encoding
	for i, sel := range selectors {
		if i >= types.MaxArity {
			break
		}
		enc |= Encoding(sel) << (uint(i) * 16)
	}
	return enc
}
