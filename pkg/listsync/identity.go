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

// Package listsync is the membership reconciliation engine. It compares the
// members of an authoritative access-control group against the members of a
// mail distribution list and applies the minimal set of additions and removals
// needed to make the list match the group.
package listsync

import (
	"slices"
	"strings"
)

// Identity is a normalized addressable principal (typically a primary mailbox
// address) used as the join key between the directory and the mailing list
// service. Identities are compared case-insensitively: NewIdentity folds the
// raw address to its canonical form, and two identities are equal iff their
// canonical forms are equal.
type Identity string

// NewIdentity normalizes a raw address into its canonical form. Addresses are
// not case-sensitive in either upstream service, so the canonical form is the
// lowercased, whitespace-trimmed address.
func NewIdentity(raw string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(raw)))
}

// MembershipSet is an unordered, duplicate-free set of identities. One
// instance represents the authoritative source membership, another the current
// target membership.
type MembershipSet map[Identity]struct{}

// NewMembershipSet creates a MembershipSet containing the given identities.
func NewMembershipSet(ids ...Identity) MembershipSet {
	s := make(MembershipSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts the identity into the set. Adding an identity that is already
// present is a no-op.
func (s MembershipSet) Add(id Identity) {
	s[id] = struct{}{}
}

// Contains reports whether the identity is in the set.
func (s MembershipSet) Contains(id Identity) bool {
	_, ok := s[id]
	return ok
}

// Identities returns the set's members in sorted order so iteration,
// application, and log output are deterministic.
func (s MembershipSet) Identities() []Identity {
	ids := make([]Identity, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
