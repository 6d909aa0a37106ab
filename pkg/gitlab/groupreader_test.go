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

package gitlab

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/testutil"
)

// fakePageSize keeps the fake's pages small so tests exercise pagination.
const fakePageSize = 2

type gitLabData struct {
	groups       []*gitlab.Group                  // ordered for stable paging
	groupMembers map[string][]*gitlab.GroupMember // keyed by group ID
	users        map[string]*gitlab.User          // keyed by username
}

// writePage writes one page of items and the X-Next-Page header when more
// items remain.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	start := min((page-1)*fakePageSize, len(items))
	end := min(start+fakePageSize, len(items))
	if end < len(items) {
		w.Header().Set("X-Next-Page", strconv.Itoa(page+1))
	}
	jsn, err := json.Marshal(items[start:end])
	if err != nil {
		w.WriteHeader(500)
		fmt.Fprintf(w, "failed to marshal page")
		return
	}
	_, err = w.Write(jsn)
	if err != nil {
		return
	}
}

func fakeGitLab(data *gitLabData) *httptest.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /api/v4/groups", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GitLab's group search is a case-insensitive substring match.
		search := strings.ToLower(r.FormValue("search"))
		var matches []*gitlab.Group
		for _, group := range data.groups {
			if strings.Contains(strings.ToLower(group.Name), search) {
				matches = append(matches, group)
			}
		}
		writePage(w, r, matches)
	}))
	mux.Handle("GET /api/v4/groups/{group_id}/members", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		members, ok := data.groupMembers[r.PathValue("group_id")]
		if !ok {
			w.WriteHeader(404)
			fmt.Fprintf(w, "group not found")
			return
		}
		writePage(w, r, members)
	}))
	mux.Handle("GET /api/v4/users", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.FormValue("username")
		var users []*gitlab.User
		if user, ok := data.users[username]; ok {
			users = append(users, user)
		}
		jsn, err := json.Marshal(users)
		if err != nil {
			w.WriteHeader(500)
			fmt.Fprintf(w, "failed to marshal users")
			return
		}
		_, err = w.Write(jsn)
		if err != nil {
			return
		}
	}))
	return httptest.NewServer(mux)
}

func testGroupReader(t *testing.T, data *gitLabData) *GroupReader {
	t.Helper()

	server := fakeGitLab(data)
	t.Cleanup(server.Close)

	client, err := gitlab.NewClient("", gitlab.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create gitlab client: %v", err)
	}
	return NewGroupReader(client)
}

func TestGroupReader_LookupGroup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		data      *gitLabData
		groupName string
		wantID    string
		wantErr   string
	}{
		{
			name: "finds_group",
			data: &gitLabData{
				groups: []*gitlab.Group{
					{ID: 1, Name: "Finance-Team"},
				},
			},
			groupName: "Finance-Team",
			wantID:    "1",
		},
		{
			name: "search_narrows_match_stays_exact",
			data: &gitLabData{
				groups: []*gitlab.Group{
					{ID: 1, Name: "Platform-Ops"},
					{ID: 2, Name: "Platform-Ops-Oncall"},
					{ID: 3, Name: "Platform"},
				},
			},
			groupName: "Platform",
			wantID:    "3",
		},
		{
			name: "name_match_is_exact",
			data: &gitLabData{
				groups: []*gitlab.Group{
					{ID: 1, Name: "Platform"},
				},
			},
			groupName: "platform",
			wantErr:   "group not found",
		},
		{
			name:      "missing_group_not_found",
			data:      &gitLabData{},
			groupName: "Ghost-Team",
			wantErr:   "group not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()

			reader := testGroupReader(t, tc.data)
			got, err := reader.LookupGroup(ctx, tc.groupName)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Errorf("LookupGroup(%q) got unexpected error diff:\n%s", tc.groupName, diff)
			}
			if err != nil {
				return
			}
			if got.ID != tc.wantID {
				t.Errorf("LookupGroup(%q) ID = %q, want %q", tc.groupName, got.ID, tc.wantID)
			}
		})
	}
}

func TestGroupReader_LookupGroup_NotFoundSentinel(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	reader := testGroupReader(t, &gitLabData{})
	_, err := reader.LookupGroup(ctx, "Ghost-Team")
	if !errors.Is(err, listsync.ErrGroupNotFound) {
		t.Errorf("LookupGroup() error = %v, want ErrGroupNotFound", err)
	}
}

func TestGroupReader_GroupMembers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		data    *gitLabData
		groupID string
		want    []listsync.Identity
		wantErr string
	}{
		{
			name: "member_emails_from_roster",
			data: &gitLabData{
				groupMembers: map[string][]*gitlab.GroupMember{
					"1": {
						{ID: 10, Username: "amy", Email: "Amy@Contoso.COM"},
						{ID: 11, Username: "bob", Email: "bob@contoso.com"},
						{ID: 12, Username: "carol", Email: "carol@contoso.com"},
					},
				},
			},
			groupID: "1",
			want: []listsync.Identity{
				"amy@contoso.com",
				"bob@contoso.com",
				"carol@contoso.com",
			},
		},
		{
			name: "falls_back_to_public_email",
			data: &gitLabData{
				groupMembers: map[string][]*gitlab.GroupMember{
					"1": {
						{ID: 10, Username: "amy"},
					},
				},
				users: map[string]*gitlab.User{
					"amy": {ID: 10, Username: "amy", PublicEmail: "amy@contoso.com"},
				},
			},
			groupID: "1",
			want:    []listsync.Identity{"amy@contoso.com"},
		},
		{
			name: "skips_members_without_any_email",
			data: &gitLabData{
				groupMembers: map[string][]*gitlab.GroupMember{
					"1": {
						{ID: 10, Username: "amy", Email: "amy@contoso.com"},
						{ID: 11, Username: "ghost"},
					},
				},
				users: map[string]*gitlab.User{
					"ghost": {ID: 11, Username: "ghost"},
				},
			},
			groupID: "1",
			want:    []listsync.Identity{"amy@contoso.com"},
		},
		{
			name: "missing_user_record_is_an_error",
			data: &gitLabData{
				groupMembers: map[string][]*gitlab.GroupMember{
					"1": {
						{ID: 11, Username: "ghost"},
					},
				},
			},
			groupID: "1",
			wantErr: "no user exists with username ghost",
		},
		{
			name:    "unknown_group_is_an_error",
			data:    &gitLabData{},
			groupID: "9",
			wantErr: "failed to fetch group members",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()

			reader := testGroupReader(t, tc.data)
			got, err := reader.GroupMembers(ctx, tc.groupID)
			if diff := testutil.DiffErrString(err, tc.wantErr); diff != "" {
				t.Errorf("GroupMembers(%q) got unexpected error diff:\n%s", tc.groupID, diff)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tc.want, got.Identities()); diff != "" {
				t.Errorf("GroupMembers(%q) got diff (-want, +got):\n%s", tc.groupID, diff)
			}
		})
	}
}
