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

// Package googlegroups manages Google Groups used as mail distribution lists
// through the Admin SDK Directory API. It is the mailing-list backend.
package googlegroups

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/googleapi"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/logging"
)

const (
	MemberTypeUser  = "USER"
	MemberTypeGroup = "GROUP"

	// MemberRoleMember is the role assigned to every member the engine adds.
	MemberRoleMember = "MEMBER"
)

// Ensure we conform to the interface.
var _ listsync.ListReadWriter = (*ListReadWriter)(nil)

// ListReadWriter reads and mutates Google Groups acting as distribution
// lists.
type ListReadWriter struct {
	admin  *admin.Service
	domain string
}

// NewListReadWriter creates a new ListReadWriter. Aliases for created lists
// are placed under the given email domain.
func NewListReadWriter(adminService *admin.Service, domain string) *ListReadWriter {
	return &ListReadWriter{
		admin:  adminService,
		domain: domain,
	}
}

// GetList resolves the group at the given primary address. A missing group
// returns an error wrapping listsync.ErrListNotFound.
func (rw *ListReadWriter) GetList(ctx context.Context, address string) (*listsync.List, error) {
	group, err := rw.admin.Groups.Get(address).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("no list at %q: %w", address, listsync.ErrListNotFound)
		}
		return nil, fmt.Errorf("could not get list %q: %w", address, err)
	}
	return &listsync.List{
		ID:         group.Id,
		Address:    group.Email,
		Attributes: group,
	}, nil
}

// CreateList creates a group with the mapping's derived address and display
// name, then attaches the derived alias. The alias is best effort: an alias
// collision leaves a perfectly usable list behind, so it is logged as a
// warning rather than failing the provisioning.
func (rw *ListReadWriter) CreateList(ctx context.Context, mapping *listsync.GroupMapping) (*listsync.List, error) {
	logger := logging.FromContext(ctx)
	group, err := rw.admin.Groups.Insert(&admin.Group{
		Email: mapping.Address,
		Name:  mapping.DisplayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not create list %q: %w", mapping.Address, err)
	}

	aliasAddress := mapping.Alias + "@" + rw.domain
	if _, err := rw.admin.Groups.Aliases.Insert(group.Id, &admin.Alias{Alias: aliasAddress}).Context(ctx).Do(); err != nil {
		logger.WarnContext(ctx, "failed to add alias to created list",
			"list_address", mapping.Address,
			"alias", aliasAddress,
			"error", err,
		)
	}

	return &listsync.List{
		ID:         group.Id,
		Address:    group.Email,
		Attributes: group,
	}, nil
}

// ListMembers retrieves the group's members as normalized identities. Only
// USER members represent individually addressable mailboxes; nested groups
// and other recipient kinds are skipped with a warning and are never touched
// by the engine.
func (rw *ListReadWriter) ListMembers(ctx context.Context, listID string) (listsync.MembershipSet, error) {
	logger := logging.FromContext(ctx)
	members := listsync.MembershipSet{}
	if err := rw.admin.Members.List(listID).Context(ctx).Pages(ctx,
		func(page *admin.Members) error {
			for _, m := range page.Members {
				if m.Type != MemberTypeUser {
					logger.WarnContext(ctx, "skipping non-mailbox recipient",
						"list_id", listID,
						"member_email", m.Email,
						"member_type", m.Type,
					)
					continue
				}
				if m.Email == "" {
					logger.WarnContext(ctx, "skipping recipient without address",
						"list_id", listID,
						"member_id", m.Id,
					)
					continue
				}
				members.Add(listsync.NewIdentity(m.Email))
			}
			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("could not list members of %q: %w", listID, err)
	}
	return members, nil
}

// AddMember adds the identity to the group as a plain member.
func (rw *ListReadWriter) AddMember(ctx context.Context, listID string, member listsync.Identity) error {
	if _, err := rw.admin.Members.Insert(listID, &admin.Member{
		Email: string(member),
		Role:  MemberRoleMember,
	}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("could not add member %q to list %q: %w", member, listID, err)
	}
	return nil
}

// RemoveMember removes the identity from the group.
func (rw *ListReadWriter) RemoveMember(ctx context.Context, listID string, member listsync.Identity) error {
	if err := rw.admin.Members.Delete(listID, string(member)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("could not remove member %q from list %q: %w", member, listID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
