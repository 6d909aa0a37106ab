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
	"fmt"
	"sync"
)

type testGroupReader struct {
	groups          map[string]*Group        // keyed by display name
	groupMembers    map[string]MembershipSet // keyed by group ID
	lookupGroupErrs map[string]error
	membersErrs     map[string]error
	mutex           sync.RWMutex
}

func (tc *testGroupReader) LookupGroup(ctx context.Context, name string) (*Group, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	if err, ok := tc.lookupGroupErrs[name]; ok {
		return nil, err
	}
	group, ok := tc.groups[name]
	if !ok {
		return nil, fmt.Errorf("no group named %q: %w", name, ErrGroupNotFound)
	}
	return group, nil
}

func (tc *testGroupReader) GroupMembers(ctx context.Context, groupID string) (MembershipSet, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	if err, ok := tc.membersErrs[groupID]; ok {
		return nil, err
	}
	members, ok := tc.groupMembers[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s not found", groupID)
	}
	return members, nil
}

type testListReadWriter struct {
	lists       map[string]*List          // keyed by address
	listMembers map[string]MembershipSet  // keyed by list ID
	getListErrs map[string]error
	createErrs  map[string]error
	membersErrs map[string]error
	addErrs     map[Identity]error
	removeErrs  map[Identity]error

	// mutation bookkeeping so tests can assert call behavior
	created     []string
	addCalls    int
	removeCalls int
	mutex       sync.RWMutex
}

func (tc *testListReadWriter) GetList(ctx context.Context, address string) (*List, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	if err, ok := tc.getListErrs[address]; ok {
		return nil, err
	}
	list, ok := tc.lists[address]
	if !ok {
		return nil, fmt.Errorf("no list at %q: %w", address, ErrListNotFound)
	}
	return list, nil
}

func (tc *testListReadWriter) CreateList(ctx context.Context, mapping *GroupMapping) (*List, error) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	if err, ok := tc.createErrs[mapping.Address]; ok {
		return nil, err
	}
	list := &List{
		ID:      "list-" + mapping.Alias,
		Address: mapping.Address,
	}
	tc.lists[mapping.Address] = list
	if tc.listMembers == nil {
		tc.listMembers = map[string]MembershipSet{}
	}
	tc.listMembers[list.ID] = MembershipSet{}
	tc.created = append(tc.created, mapping.Address)
	return list, nil
}

func (tc *testListReadWriter) ListMembers(ctx context.Context, listID string) (MembershipSet, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	if err, ok := tc.membersErrs[listID]; ok {
		return nil, err
	}
	members, ok := tc.listMembers[listID]
	if !ok {
		return nil, fmt.Errorf("list %s not found", listID)
	}
	// copy so callers cannot mutate the fake's state
	got := make(MembershipSet, len(members))
	for id := range members {
		got[id] = struct{}{}
	}
	return got, nil
}

func (tc *testListReadWriter) AddMember(ctx context.Context, listID string, member Identity) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.addCalls++
	if err, ok := tc.addErrs[member]; ok {
		return err
	}
	members, ok := tc.listMembers[listID]
	if !ok {
		return fmt.Errorf("list %s not found", listID)
	}
	members.Add(member)
	return nil
}

func (tc *testListReadWriter) RemoveMember(ctx context.Context, listID string, member Identity) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.removeCalls++
	if err, ok := tc.removeErrs[member]; ok {
		return err
	}
	members, ok := tc.listMembers[listID]
	if !ok {
		return fmt.Errorf("list %s not found", listID)
	}
	delete(members, member)
	return nil
}
