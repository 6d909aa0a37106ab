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

// Package cloudidentity reads access-control groups from the Google Cloud
// Identity API. It is the default directory backend.
package cloudidentity

import (
	"context"
	"fmt"

	"google.golang.org/api/cloudidentity/v1"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/logging"
)

const (
	MemberTypeUser  = "USER"
	MemberTypeGroup = "GROUP"
)

// Ensure we conform to the interface.
var _ listsync.GroupReader = (*GroupReader)(nil)

// GroupReader provides read operations for groups in Cloud Identity.
type GroupReader struct {
	identity *cloudidentity.Service
	customer string
}

// NewGroupReader creates a new GroupReader that searches groups under the
// given customer resource (of the form "customers/<id>").
func NewGroupReader(identityService *cloudidentity.Service, customer string) *GroupReader {
	return &GroupReader{
		identity: identityService,
		customer: customer,
	}
}

// LookupGroup resolves a group by its exact display name. The search API only
// filters by parent, so display names are matched client side; when several
// groups share the name the first one encountered wins. No match returns an
// error wrapping listsync.ErrGroupNotFound.
func (g *GroupReader) LookupGroup(ctx context.Context, name string) (*listsync.Group, error) {
	query := fmt.Sprintf("parent == '%s'", g.customer)
	var found *cloudidentity.Group
	if err := g.identity.Groups.Search().Query(query).Context(ctx).Pages(ctx,
		func(page *cloudidentity.SearchGroupsResponse) error {
			for _, group := range page.Groups {
				if found == nil && group.DisplayName == name {
					found = group
				}
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("could not search groups: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("no group named %q under %s: %w", name, g.customer, listsync.ErrGroupNotFound)
	}
	return &listsync.Group{
		ID:         found.Name,
		Attributes: found,
	}, nil
}

// GroupMembers retrieves the direct user members of the group with the given
// ID (of the form "groups/<id>") as normalized identities. Memberships
// without a preferred member key have no addressable identity, and non-user
// memberships are outside the engine's identity model; both are skipped with
// a warning.
func (g *GroupReader) GroupMembers(ctx context.Context, groupID string) (listsync.MembershipSet, error) {
	logger := logging.FromContext(ctx)
	members := listsync.MembershipSet{}
	if err := g.identity.Groups.Memberships.List(groupID).Context(ctx).Pages(ctx,
		func(page *cloudidentity.ListMembershipsResponse) error {
			for _, m := range page.Memberships {
				if m.Type != MemberTypeUser {
					logger.WarnContext(ctx, "skipping non-user member",
						"group_id", groupID,
						"member", m.Name,
						"member_type", m.Type,
					)
					continue
				}
				if m.PreferredMemberKey == nil || m.PreferredMemberKey.Id == "" {
					logger.WarnContext(ctx, "skipping member without addressable identity",
						"group_id", groupID,
						"member", m.Name,
					)
					continue
				}
				members.Add(listsync.NewIdentity(m.PreferredMemberKey.Id))
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("could not list group members: %w", err)
	}
	return members, nil
}
