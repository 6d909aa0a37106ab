// Copyright 2025 The Authors (see AUTHORS file)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package listsync

import (
	"github.com/abcxyz/pkg/sets"
)

// Diff is the membership delta between a source group and a target list.
// Members present in both sets are never touched.
type Diff struct {
	// ToAdd holds identities present in the source group but missing from the
	// target list, in ascending order.
	ToAdd []Identity

	// ToRemove holds identities present in the target list but absent from
	// the source group, in ascending order.
	ToRemove []Identity
}

// Compute derives the Diff that would make target match source. It performs
// no I/O; both sets must already be normalized.
func Compute(source, target MembershipSet) *Diff {
	return &Diff{
		ToAdd:    MembershipSet(sets.SubtractMapKeys(source, target)).Identities(),
		ToRemove: MembershipSet(sets.SubtractMapKeys(target, source)).Identities(),
	}
}

// Empty reports whether the diff contains no mutations.
func (d *Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Size returns the total number of mutations in the diff.
func (d *Diff) Size() int {
	return len(d.ToAdd) + len(d.ToRemove)
}
