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

// Package gitlab reads GitLab groups as access-control groups.
package gitlab

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/cache"
	"github.com/abcxyz/pkg/logging"
	"github.com/abcxyz/pkg/pointer"
)

// DefaultCacheDuration is the default time to live for the user cache.
// We don't expect user info (e.g. public email etc.) to change frequently
// so a time to live of 1 day is the default.
const DefaultCacheDuration = time.Hour * 24

type Config struct {
	cacheDuration time.Duration
}

type Opt func(*Config)

// WithCacheDuration sets the time to live for the user cache entries.
func WithCacheDuration(duration time.Duration) Opt {
	return func(config *Config) {
		config.cacheDuration = duration
	}
}

// Ensure we conform to the interface.
var _ listsync.GroupReader = (*GroupReader)(nil)

// GroupReader reads GitLab groups as access-control groups. Group names are
// GitLab group names; member identities are the members' email addresses,
// falling back to the public email on the user profile when the membership
// roster does not expose one.
type GroupReader struct {
	client    *gitlab.Client
	userCache *cache.Cache[*gitlab.User]
}

// NewGroupReader creates a GroupReader over the groups visible to the client.
func NewGroupReader(client *gitlab.Client, opts ...Opt) *GroupReader {
	config := &Config{
		cacheDuration: DefaultCacheDuration,
	}
	for _, opt := range opts {
		opt(config)
	}
	return &GroupReader{
		client:    client,
		userCache: cache.New[*gitlab.User](config.cacheDuration),
	}
}

// LookupGroup finds the group whose name is exactly name. The returned group
// ID is the GitLab group's integer ID. A name with no matching group returns
// an error wrapping listsync.ErrGroupNotFound.
//
// The groups list API only supports substring search, so the search results
// are matched exactly client side.
func (g *GroupReader) LookupGroup(ctx context.Context, name string) (*listsync.Group, error) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "looking up group", "group_name", name)

	var match *gitlab.Group
	if err := paginate(func(listOpts *gitlab.ListOptions) (*gitlab.Response, error) {
		groups, resp, err := g.client.Groups.ListGroups(&gitlab.ListGroupsOptions{
			Search:      pointer.To(name),
			ListOptions: *listOpts,
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list groups matching %q: %w", name, err)
		}
		for _, group := range groups {
			if group.Name == name {
				match = group
				// A nil response stops the pagination early.
				return nil, nil
			}
		}
		return resp, nil
	}); err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("no group named %q: %w", name, listsync.ErrGroupNotFound)
	}

	return &listsync.Group{
		ID:         strconv.Itoa(match.ID),
		Attributes: match,
	}, nil
}

// GroupMembers retrieves the group's direct members as normalized
// identities. The group ID is the GitLab group's integer ID. Membership
// rosters expose member emails only to administrators, so missing emails are
// resolved from the member's public profile through the user cache. Members
// with no email either way have no mailbox the engine can manage and are
// skipped with a warning.
func (g *GroupReader) GroupMembers(ctx context.Context, groupID string) (listsync.MembershipSet, error) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "fetching members for group", "group_id", groupID)

	users := make(map[string]*gitlab.GroupMember, 32)
	if err := paginate(func(listOpts *gitlab.ListOptions) (*gitlab.Response, error) {
		userMembers, resp, err := g.client.Groups.ListGroupMembers(groupID,
			&gitlab.ListGroupMembersOptions{ListOptions: *listOpts},
			gitlab.WithContext(ctx),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch group members for %s: %w", groupID, err)
		}

		for _, m := range userMembers {
			users[m.Username] = m
		}
		return resp, nil
	}); err != nil {
		return nil, err
	}

	members := listsync.MembershipSet{}
	for username, m := range users {
		email := m.Email
		if email == "" {
			user, err := g.getUser(ctx, username)
			if err != nil {
				return nil, err
			}
			email = user.PublicEmail
		}
		if email == "" {
			logger.WarnContext(ctx, "skipping member without a visible email",
				"group_id", groupID,
				"user_username", username,
			)
			continue
		}
		members.Add(listsync.NewIdentity(email))
	}
	return members, nil
}

// getUser fetches the full user record for the username, consulting the
// cache first.
func (g *GroupReader) getUser(ctx context.Context, username string) (*gitlab.User, error) {
	user, err := g.userCache.WriteThruLookup(username, func() (*gitlab.User, error) {
		logger := logging.FromContext(ctx)
		logger.InfoContext(ctx, "fetching user", "user_username", username)
		users, _, err := g.client.Users.ListUsers(&gitlab.ListUsersOptions{
			Username: pointer.To(username),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
		}
		if len(users) == 0 {
			return nil, fmt.Errorf("no user exists with username %s", username)
		}
		if len(users) > 1 {
			return nil, fmt.Errorf("multiple users exist with username %s: this should not be possible", username)
		}
		return users[0], nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lookup gitlab user: %w", err)
	}
	return user, nil
}
