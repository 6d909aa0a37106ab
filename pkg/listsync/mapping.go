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

import "strings"

// GroupMapping pairs a source access-control group with the distribution list
// it drives. The list's display name, alias, and address are pure functions of
// the source group name and the configured email domain, so a mapping is fully
// determined by those two inputs.
type GroupMapping struct {
	// SourceGroup is the display name of the authoritative group.
	SourceGroup string

	// DisplayName is the display name of the target list: "<group> - autoDL".
	DisplayName string

	// Alias is the lowercased mail nickname of the target list:
	// "<group>-autodl".
	Alias string

	// Address is the primary address of the target list: "<group>@<domain>".
	// The original casing of the group name is preserved; addresses are
	// normalized only when they enter a MembershipSet.
	Address string
}

// NewGroupMapping derives the target list naming for the given source group
// name and email domain.
func NewGroupMapping(sourceGroup, emailDomain string) *GroupMapping {
	return &GroupMapping{
		SourceGroup: sourceGroup,
		DisplayName: sourceGroup + " - autoDL",
		Alias:       strings.ToLower(sourceGroup + "-autodl"),
		Address:     sourceGroup + "@" + emailDomain,
	}
}
