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
	"context"
	"errors"
)

// ErrGroupNotFound is returned by GroupReader.LookupGroup when no group in the
// directory matches the requested display name. It is an expected outcome, not
// a failure: the driver skips the mapping and continues.
var ErrGroupNotFound = errors.New("group not found")

// ErrListNotFound is returned by ListReadWriter.GetList when no list exists at
// the requested address. The driver responds by creating the list.
var ErrListNotFound = errors.New("list not found")

// Group is a handle to a resolved access-control group in the directory
// service.
type Group struct {
	// ID is the group's identifier in the directory service. Its format is
	// backend-specific and opaque to the engine.
	ID string

	// Attributes represent arbitrary attributes about the group in the
	// directory service. This field is typically set by the corresponding
	// GroupReader when resolving the group.
	Attributes any
}

// List is a handle to a resolved (or freshly created) distribution list in the
// mailing-list service.
type List struct {
	// ID is the list's identifier in the mailing-list service. Its format is
	// backend-specific and opaque to the engine.
	ID string

	// Address is the list's primary address.
	Address string

	// Attributes represent arbitrary attributes about the list in the
	// mailing-list service. This field is typically set by the corresponding
	// ListReadWriter when resolving or creating the list.
	Attributes any
}

// GroupReader provides read operations against the directory service that
// holds the authoritative access-control groups.
type GroupReader interface {
	// LookupGroup resolves a group by exact display name. It returns an error
	// wrapping ErrGroupNotFound when no group matches.
	LookupGroup(ctx context.Context, name string) (*Group, error)

	// GroupMembers enumerates the group's direct members as normalized
	// identities. Enumeration is exhaustive (all pages) and excludes
	// principals that lack an addressable identity, emitting a warning for
	// each exclusion.
	GroupMembers(ctx context.Context, groupID string) (MembershipSet, error)
}

// ListReadWriter provides read and write operations against the mailing-list
// service that holds the distribution lists being reconciled.
type ListReadWriter interface {
	// GetList resolves a list by its primary address. It returns an error
	// wrapping ErrListNotFound when no list exists at that address.
	GetList(ctx context.Context, address string) (*List, error)

	// CreateList creates the list described by the mapping's derived naming
	// and returns a handle to it.
	CreateList(ctx context.Context, mapping *GroupMapping) (*List, error)

	// ListMembers enumerates the list's current members as normalized
	// identities. Enumeration is exhaustive (all pages) and includes only
	// recipients that are individually addressable mailboxes; other recipient
	// kinds are outside the engine's identity model and are never added nor
	// removed.
	ListMembers(ctx context.Context, listID string) (MembershipSet, error)

	// AddMember adds a single member to the list.
	AddMember(ctx context.Context, listID string, member Identity) error

	// RemoveMember removes a single member from the list without any
	// interactive confirmation.
	RemoveMember(ctx context.Context, listID string, member Identity) error
}
