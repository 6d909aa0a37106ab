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

package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v61/github"
	"google.golang.org/protobuf/proto"

	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/pkg/testutil"
)

// fakePageSize keeps the fake's pages small so tests exercise pagination.
const fakePageSize = 2

type gitHubData struct {
	orgs        map[string]*github.Organization // keyed by org login
	teams       map[string][]*github.Team       // keyed by org login
	teamMembers map[int64][]*github.User        // keyed by team ID, login-only stubs
	users       map[string]*github.User         // full records keyed by login
	userFetches map[string]int                  // counts full user fetches per login
}

func githubClient(server *httptest.Server) *github.Client {
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	return client
}

// writePage writes one page of items and a Link header pointing at the next
// page when more items remain.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	start := min((page-1)*fakePageSize, len(items))
	end := min(start+fakePageSize, len(items))
	if end < len(items) {
		w.Header().Set("Link", fmt.Sprintf("<%s?page=%d>; rel=\"next\"", r.URL.Path, page+1))
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

func fakeGitHub(data *gitHubData) *httptest.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /orgs/{org}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org, ok := data.orgs[r.PathValue("org")]
		if !ok {
			w.WriteHeader(404)
			fmt.Fprintf(w, "org not found")
			return
		}
		jsn, err := json.Marshal(org)
		if err != nil {
			w.WriteHeader(500)
			fmt.Fprintf(w, "failed to marshal org")
			return
		}
		_, err = w.Write(jsn)
		if err != nil {
			return
		}
	}))
	mux.Handle("GET /orgs/{org}/teams", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgName := r.PathValue("org")
		if _, ok := data.orgs[orgName]; !ok {
			w.WriteHeader(404)
			fmt.Fprintf(w, "org not found")
			return
		}
		writePage(w, r, data.teams[orgName])
	}))
	mux.Handle("GET /organizations/{org_id}/team/{team_id}/members", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		teamID, err := strconv.ParseInt(r.PathValue("team_id"), 10, 64)
		if err != nil {
			w.WriteHeader(404)
			fmt.Fprintf(w, "malformed team id")
			return
		}
		members, ok := data.teamMembers[teamID]
		if !ok {
			w.WriteHeader(404)
			fmt.Fprintf(w, "team not found")
			return
		}
		writePage(w, r, members)
	}))
	mux.Handle("GET /users/{username}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.PathValue("username")
		if data.userFetches != nil {
			data.userFetches[username]++
		}
		user, ok := data.users[username]
		if !ok {
			w.WriteHeader(404)
			fmt.Fprintf(w, "user not found")
			return
		}
		jsn, err := json.Marshal(user)
		if err != nil {
			w.WriteHeader(500)
			fmt.Fprintf(w, "failed to marshal user")
			return
		}
		_, err = w.Write(jsn)
		if err != nil {
			return
		}
	}))
	return httptest.NewServer(mux)
}

func testGroupReader(t *testing.T, data *gitHubData) *GroupReader {
	t.Helper()

	server := fakeGitHub(data)
	t.Cleanup(server.Close)
	return NewGroupReader(githubClient(server), "acme")
}

func TestGroupReader_LookupGroup(t *testing.T) {
	t.Parallel()

	acme := map[string]*github.Organization{
		"acme": {ID: proto.Int64(100), Login: proto.String("acme")},
	}

	cases := []struct {
		name      string
		data      *gitHubData
		groupName string
		wantID    string
		wantErr   string
	}{
		{
			name: "finds_team",
			data: &gitHubData{
				orgs: acme,
				teams: map[string][]*github.Team{
					"acme": {
						{ID: proto.Int64(1), Name: proto.String("Finance-Team")},
					},
				},
			},
			groupName: "Finance-Team",
			wantID:    "100:1",
		},
		{
			name: "finds_team_on_later_page",
			data: &gitHubData{
				orgs: acme,
				teams: map[string][]*github.Team{
					"acme": {
						{ID: proto.Int64(1), Name: proto.String("Platform")},
						{ID: proto.Int64(2), Name: proto.String("Security")},
						{ID: proto.Int64(3), Name: proto.String("Design")},
						{ID: proto.Int64(4), Name: proto.String("Support")},
						{ID: proto.Int64(5), Name: proto.String("Finance-Team")},
					},
				},
			},
			groupName: "Finance-Team",
			wantID:    "100:5",
		},
		{
			name: "name_match_is_exact",
			data: &gitHubData{
				orgs: acme,
				teams: map[string][]*github.Team{
					"acme": {
						{ID: proto.Int64(1), Name: proto.String("Platform")},
					},
				},
			},
			groupName: "platform",
			wantErr:   "group not found",
		},
		{
			name: "missing_team_not_found",
			data: &gitHubData{
				orgs:  acme,
				teams: map[string][]*github.Team{},
			},
			groupName: "Ghost-Team",
			wantErr:   "group not found",
		},
		{
			name:      "unknown_org_is_an_error",
			data:      &gitHubData{orgs: map[string]*github.Organization{}},
			groupName: "Finance-Team",
			wantErr:   "failed to fetch org",
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

	reader := testGroupReader(t, &gitHubData{
		orgs: map[string]*github.Organization{
			"acme": {ID: proto.Int64(100), Login: proto.String("acme")},
		},
		teams: map[string][]*github.Team{},
	})
	_, err := reader.LookupGroup(ctx, "Ghost-Team")
	if !errors.Is(err, listsync.ErrGroupNotFound) {
		t.Errorf("LookupGroup() error = %v, want ErrGroupNotFound", err)
	}
}

func TestGroupReader_GroupMembers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		data    *gitHubData
		groupID string
		want    []listsync.Identity
		wantErr string
	}{
		{
			name: "resolves_and_normalizes_member_emails",
			data: &gitHubData{
				teamMembers: map[int64][]*github.User{
					1: {
						{Login: proto.String("amy")},
						{Login: proto.String("bob")},
						{Login: proto.String("carol")},
					},
				},
				users: map[string]*github.User{
					"amy":   {Login: proto.String("amy"), Email: proto.String("Amy@Contoso.COM")},
					"bob":   {Login: proto.String("bob"), Email: proto.String("bob@contoso.com")},
					"carol": {Login: proto.String("carol"), Email: proto.String("carol@contoso.com")},
				},
			},
			groupID: "100:1",
			want: []listsync.Identity{
				"amy@contoso.com",
				"bob@contoso.com",
				"carol@contoso.com",
			},
		},
		{
			name: "skips_members_without_visible_email",
			data: &gitHubData{
				teamMembers: map[int64][]*github.User{
					1: {
						{Login: proto.String("amy")},
						{Login: proto.String("ghost")},
					},
				},
				users: map[string]*github.User{
					"amy":   {Login: proto.String("amy"), Email: proto.String("amy@contoso.com")},
					"ghost": {Login: proto.String("ghost")},
				},
			},
			groupID: "100:1",
			want:    []listsync.Identity{"amy@contoso.com"},
		},
		{
			name:    "malformed_group_id",
			data:    &gitHubData{},
			groupID: "nonsense",
			wantErr: "invalid group id",
		},
		{
			name: "unknown_team_is_an_error",
			data: &gitHubData{
				teamMembers: map[int64][]*github.User{},
			},
			groupID: "100:9",
			wantErr: "failed to list team membership",
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

func TestGroupReader_GroupMembers_CachesUserLookups(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	data := &gitHubData{
		teamMembers: map[int64][]*github.User{
			1: {{Login: proto.String("amy")}},
			2: {{Login: proto.String("amy")}},
		},
		users: map[string]*github.User{
			"amy": {Login: proto.String("amy"), Email: proto.String("amy@contoso.com")},
		},
		userFetches: map[string]int{},
	}
	reader := testGroupReader(t, data)

	for _, groupID := range []string{"100:1", "100:2"} {
		got, err := reader.GroupMembers(ctx, groupID)
		if err != nil {
			t.Fatalf("GroupMembers(%q) returned unexpected error: %v", groupID, err)
		}
		want := []listsync.Identity{"amy@contoso.com"}
		if diff := cmp.Diff(want, got.Identities()); diff != "" {
			t.Errorf("GroupMembers(%q) got diff (-want, +got):\n%s", groupID, diff)
		}
	}

	if got := data.userFetches["amy"]; got != 1 {
		t.Errorf("expected exactly one user fetch for amy, got %d", got)
	}
}
