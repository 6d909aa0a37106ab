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

// Package github reads GitHub teams as access-control groups.
package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v61/github"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/cache"
	"github.com/abcxyz/pkg/logging"
)

const (
	IDSep = ":"

	// DefaultCacheDuration is the default time to live for the user and org
	// caches. We don't expect user info (e.g. profile email etc.) nor org
	// info to change frequently so a time to live of 1 day is the default.
	DefaultCacheDuration = time.Hour * 24
)

type Config struct {
	cacheDuration time.Duration
}

type Opt func(*Config)

// WithCacheDuration sets the time to live for the user and org cache entries.
func WithCacheDuration(duration time.Duration) Opt {
	return func(config *Config) {
		config.cacheDuration = duration
	}
}

// Ensure we conform to the interface.
var _ listsync.GroupReader = (*GroupReader)(nil)

// GroupReader reads the teams of a single GitHub organization as
// access-control groups. Group names are team names; member identities are
// the email addresses on the members' user profiles.
type GroupReader struct {
	client    *github.Client
	org       string
	orgCache  *cache.Cache[*github.Organization]
	userCache *cache.Cache[*github.User]
}

// NewGroupReader creates a GroupReader over the teams of the given org.
func NewGroupReader(client *github.Client, org string, opts ...Opt) *GroupReader {
	config := &Config{
		cacheDuration: DefaultCacheDuration,
	}
	for _, opt := range opts {
		opt(config)
	}
	return &GroupReader{
		client:    client,
		org:       org,
		orgCache:  cache.New[*github.Organization](config.cacheDuration),
		userCache: cache.New[*github.User](config.cacheDuration),
	}
}

// LookupGroup finds the team in the configured organization whose name is
// exactly name. The returned group ID is of the form 'orgID:teamID'. A name
// with no matching team returns an error wrapping listsync.ErrGroupNotFound.
//
// The teams list API has no name filter, so this pages through the org's
// teams and matches client side.
func (g *GroupReader) LookupGroup(ctx context.Context, name string) (*listsync.Group, error) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "looking up team",
		"org", g.org,
		"team_name", name,
	)

	orgID, err := g.orgID(ctx)
	if err != nil {
		return nil, err
	}

	var match *github.Team
	if err := paginate(func(listOpts *github.ListOptions) (*github.Response, error) {
		teams, resp, err := g.client.Teams.ListTeams(ctx, g.org, listOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams in org %q: %w", g.org, err)
		}
		for _, team := range teams {
			if team.GetName() == name {
				match = team
				// A nil response stops the pagination early.
				return nil, nil
			}
		}
		return resp, nil
	}); err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("no team named %q in org %q: %w", name, g.org, listsync.ErrGroupNotFound)
	}

	return &listsync.Group{
		ID:         encodeID(orgID, match.GetID()),
		Attributes: match,
	}, nil
}

// GroupMembers retrieves the team's direct members as normalized identities.
// The group ID must be of the form 'orgID:teamID'. Team rosters only carry
// logins, so each member's email is resolved from their user profile through
// the user cache. Members whose profile exposes no email have no mailbox the
// engine can manage and are skipped with a warning.
func (g *GroupReader) GroupMembers(ctx context.Context, groupID string) (listsync.MembershipSet, error) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "fetching members for team", "team_id", groupID)
	orgID, teamID, err := parseID(groupID)
	if err != nil {
		return nil, fmt.Errorf("could not parse groupID %s: %w", groupID, err)
	}

	logins := make(map[string]struct{}, 32)
	if err := paginate(func(listOpts *github.ListOptions) (*github.Response, error) {
		opts := &github.TeamListTeamMembersOptions{
			Role:        "all",
			ListOptions: *listOpts,
		}
		members, resp, err := g.client.Teams.ListTeamMembersByID(ctx, orgID, teamID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list team membership: %w", err)
		}
		for _, m := range members {
			// Login should be provided for active members.
			if v := m.GetLogin(); v != "" {
				logins[v] = struct{}{}
			}
		}
		return resp, nil
	}); err != nil {
		return nil, err
	}

	members := listsync.MembershipSet{}
	for login := range logins {
		user, err := g.getUser(ctx, login)
		if err != nil {
			return nil, err
		}
		email := user.GetEmail()
		if email == "" {
			logger.WarnContext(ctx, "skipping member without a visible email",
				"team_id", groupID,
				"user_login", login,
			)
			continue
		}
		members.Add(listsync.NewIdentity(email))
	}
	return members, nil
}

// getUser fetches the full user record for the login, consulting the cache
// first. Team member listings return login-only stubs without emails.
func (g *GroupReader) getUser(ctx context.Context, login string) (*github.User, error) {
	user, err := g.userCache.WriteThruLookup(login, func() (*github.User, error) {
		logger := logging.FromContext(ctx)
		logger.InfoContext(ctx, "fetching user", "user_login", login)
		user, _, err := g.client.Users.Get(ctx, login)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user %s: %w", login, err)
		}
		return user, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lookup github user: %w", err)
	}
	return user, nil
}

func (g *GroupReader) orgID(ctx context.Context) (int64, error) {
	org, err := g.orgCache.WriteThruLookup(g.org, func() (*github.Organization, error) {
		logger := logging.FromContext(ctx)
		logger.InfoContext(ctx, "fetching organization", "org", g.org)
		org, _, err := g.client.Organizations.Get(ctx, g.org)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch org %s: %w", g.org, err)
		}
		return org, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to lookup github org: %w", err)
	}
	return org.GetID(), nil
}

// parseID parses an ID string formatted using encodeID.
func parseID(groupID string) (int64, int64, error) {
	idComponents := strings.Split(groupID, IDSep)
	if len(idComponents) != 2 {
		return 0, 0, fmt.Errorf("invalid group id: %s", groupID)
	}
	orgID, err := strconv.ParseInt(strings.TrimSpace(idComponents[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("could not parse %s as a github org ID: %w", idComponents[0], err)
	}
	teamID, err := strconv.ParseInt(strings.TrimSpace(idComponents[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("could not parse %s as a github team ID: %w", idComponents[1], err)
	}
	return orgID, teamID, nil
}

// encodeID encodes the GitHub org ID and team ID as a single ID string.
func encodeID(orgID, teamID int64) string {
	return fmt.Sprintf("%d%s%d", orgID, IDSep, teamID)
}
