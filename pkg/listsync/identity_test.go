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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewIdentity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want Identity
	}{
		{
			name: "already_normalized",
			raw:  "amy@contoso.com",
			want: "amy@contoso.com",
		},
		{
			name: "mixed_case",
			raw:  "Amy@Contoso.COM",
			want: "amy@contoso.com",
		},
		{
			name: "surrounding_whitespace",
			raw:  "  Bob@contoso.com\n",
			want: "bob@contoso.com",
		},
		{
			name: "empty_string",
			raw:  "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := NewIdentity(tc.raw); got != tc.want {
				t.Errorf("NewIdentity(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNewIdentity_Equality(t *testing.T) {
	t.Parallel()

	// Two spellings of the same principal must normalize to equal identities.
	a := NewIdentity("Finance.Lead@Contoso.com")
	b := NewIdentity("finance.lead@contoso.com")
	if a != b {
		t.Errorf("expected %q and %q to be equal", a, b)
	}
}

func TestMembershipSet_Identities(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		set  MembershipSet
		want []Identity
	}{
		{
			name: "sorted_ascending",
			set:  NewMembershipSet("carol@contoso.com", "amy@contoso.com", "bob@contoso.com"),
			want: []Identity{"amy@contoso.com", "bob@contoso.com", "carol@contoso.com"},
		},
		{
			name: "empty_set",
			set:  NewMembershipSet(),
			want: []Identity{},
		},
		{
			name: "duplicates_collapse",
			set:  NewMembershipSet("amy@contoso.com", "amy@contoso.com"),
			want: []Identity{"amy@contoso.com"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.want, tc.set.Identities()); diff != "" {
				t.Errorf("Identities() got diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestMembershipSet_Contains(t *testing.T) {
	t.Parallel()

	set := NewMembershipSet("amy@contoso.com")
	if !set.Contains("amy@contoso.com") {
		t.Errorf("expected set to contain %q", "amy@contoso.com")
	}
	if set.Contains("bob@contoso.com") {
		t.Errorf("expected set to not contain %q", "bob@contoso.com")
	}
}
