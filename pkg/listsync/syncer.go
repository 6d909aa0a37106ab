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
	"fmt"
	"runtime"
	"sync"

	"github.com/abcxyz/pkg/logging"
)

// Config holds optional Syncer settings.
type Config struct {
	concurrency int
	dryRun      bool
}

// Opt is a configuration option for a Syncer.
type Opt func(*Config)

// WithConcurrency sets how many mappings SyncAll reconciles in parallel.
// Values below 1 select runtime.NumCPU. The default is 1, which syncs
// mappings sequentially in input order.
func WithConcurrency(n int) Opt {
	return func(config *Config) {
		config.concurrency = n
	}
}

// WithDryRun makes the syncer compute and log membership diffs without
// applying any mutations. Missing lists are reported but not created.
func WithDryRun() Opt {
	return func(config *Config) {
		config.dryRun = true
	}
}

// Syncer reconciles distribution list membership against authoritative
// directory groups, one GroupMapping at a time.
type Syncer struct {
	groups      GroupReader
	lists       ListReadWriter
	concurrency int
	dryRun      bool
}

// NewSyncer creates a Syncer that resolves groups through the given reader
// and reconciles lists through the given read-writer.
func NewSyncer(groups GroupReader, lists ListReadWriter, opts ...Opt) *Syncer {
	config := &Config{concurrency: 1}
	for _, opt := range opts {
		opt(config)
	}
	concurrency := config.concurrency
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	return &Syncer{
		groups:      groups,
		lists:       lists,
		concurrency: concurrency,
		dryRun:      config.dryRun,
	}
}

// Sync reconciles a single mapping. It never returns an error: every failure
// is recorded on the returned outcome so a batch run can continue with the
// remaining mappings. Rerunning Sync with the same mapping is safe; a run
// that changed nothing leaves the list untouched.
func (s *Syncer) Sync(ctx context.Context, mapping *GroupMapping) *MappingOutcome {
	logger := logging.FromContext(ctx)
	outcome := &MappingOutcome{Mapping: mapping, Status: StatusPending}

	logger.InfoContext(ctx, "syncing mapping",
		"source_group", mapping.SourceGroup,
		"target_address", mapping.Address,
	)

	group, err := s.groups.LookupGroup(ctx, mapping.SourceGroup)
	if errors.Is(err, ErrGroupNotFound) {
		logger.InfoContext(ctx, "no directory group matches mapping, skipping",
			"source_group", mapping.SourceGroup,
		)
		outcome.Status = StatusSkippedGroupNotFound
		return outcome
	}
	if err != nil {
		outcome.Err = fmt.Errorf("failed to look up group %q: %w", mapping.SourceGroup, err)
		return outcome
	}
	outcome.Status = StatusResolved

	list, err := s.lists.GetList(ctx, mapping.Address)
	switch {
	case errors.Is(err, ErrListNotFound) && s.dryRun:
		logger.InfoContext(ctx, "list does not exist, dry run would create it",
			"target_address", mapping.Address,
			"display_name", mapping.DisplayName,
		)
		list = nil
	case errors.Is(err, ErrListNotFound):
		logger.InfoContext(ctx, "list does not exist, creating",
			"target_address", mapping.Address,
			"display_name", mapping.DisplayName,
			"alias", mapping.Alias,
		)
		list, err = s.lists.CreateList(ctx, mapping)
		if err != nil {
			logger.ErrorContext(ctx, "failed to create list",
				"target_address", mapping.Address,
				"error", err,
			)
			outcome.Status = StatusSkippedProvisionFailed
			outcome.Err = fmt.Errorf("failed to create list %q: %w", mapping.Address, err)
			return outcome
		}
		outcome.Created = true
	case err != nil:
		outcome.Err = fmt.Errorf("failed to get list %q: %w", mapping.Address, err)
		return outcome
	}
	outcome.Status = StatusProvisioned

	sourceMembers, err := s.groups.GroupMembers(ctx, group.ID)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to read members of group %q: %w", mapping.SourceGroup, err)
		return outcome
	}

	// A list that was just created has no members, and a list that does not
	// exist yet (dry run) has none to read.
	targetMembers := MembershipSet{}
	if list != nil && !outcome.Created {
		targetMembers, err = s.lists.ListMembers(ctx, list.ID)
		if err != nil {
			outcome.Err = fmt.Errorf("failed to read members of list %q: %w", mapping.Address, err)
			return outcome
		}
	}

	diff := Compute(sourceMembers, targetMembers)
	outcome.Diff = diff
	if diff.Empty() {
		logger.InfoContext(ctx, "list already matches group",
			"source_group", mapping.SourceGroup,
			"target_address", mapping.Address,
			"member_count", len(sourceMembers),
		)
		outcome.Status = StatusSynced
		return outcome
	}

	logger.InfoContext(ctx, "members to add",
		"target_address", mapping.Address,
		"add_identities", diff.ToAdd,
	)
	logger.InfoContext(ctx, "members to remove",
		"target_address", mapping.Address,
		"remove_identities", diff.ToRemove,
	)

	if s.dryRun {
		logger.InfoContext(ctx, "dry run, skipping membership mutations",
			"target_address", mapping.Address,
			"add_count", len(diff.ToAdd),
			"remove_count", len(diff.ToRemove),
		)
		outcome.Status = StatusSynced
		return outcome
	}

	for _, member := range diff.ToAdd {
		if err := s.lists.AddMember(ctx, list.ID, member); err != nil {
			logger.ErrorContext(ctx, "failed to add member to list",
				"target_address", mapping.Address,
				"member", member,
				"error", err,
			)
			outcome.ItemFailures = append(outcome.ItemFailures, ItemFailure{Identity: member, Reason: err.Error()})
			continue
		}
		outcome.Added++
	}
	for _, member := range diff.ToRemove {
		if err := s.lists.RemoveMember(ctx, list.ID, member); err != nil {
			logger.ErrorContext(ctx, "failed to remove member from list",
				"target_address", mapping.Address,
				"member", member,
				"error", err,
			)
			outcome.ItemFailures = append(outcome.ItemFailures, ItemFailure{Identity: member, Reason: err.Error()})
			continue
		}
		outcome.Removed++
	}

	outcome.Status = StatusSynced
	logger.InfoContext(ctx, "finished syncing mapping",
		"source_group", mapping.SourceGroup,
		"target_address", mapping.Address,
		"added", outcome.Added,
		"removed", outcome.Removed,
		"failed", len(outcome.ItemFailures),
	)
	return outcome
}

// SyncAll reconciles every mapping and returns one outcome per mapping, in
// input order. The returned error joins the failures across all mappings and
// is nil only when every mapping synced cleanly or was skipped because its
// group does not exist.
func (s *Syncer) SyncAll(ctx context.Context, mappings []*GroupMapping) ([]*MappingOutcome, error) {
	outcomes := make([]*MappingOutcome, len(mappings))
	if s.concurrency == 1 {
		for i, mapping := range mappings {
			outcomes[i] = s.Sync(ctx, mapping)
		}
	} else {
		// Each worker writes to distinct indexes, so no locking is needed.
		indexes := make(chan int, len(mappings))
		for i := range mappings {
			indexes <- i
		}
		close(indexes)
		waitGroup := sync.WaitGroup{}
		for i := 0; i < s.concurrency; i++ {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				for idx := range indexes {
					outcomes[idx] = s.Sync(ctx, mappings[idx])
				}
			}()
		}
		waitGroup.Wait()
	}

	var merr error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			merr = errors.Join(merr, fmt.Errorf("mapping %q: %w", outcome.Mapping.SourceGroup, outcome.Err))
		}
		for _, failure := range outcome.ItemFailures {
			merr = errors.Join(merr, fmt.Errorf("mapping %q: member %q: %s", outcome.Mapping.SourceGroup, failure.Identity, failure.Reason))
		}
	}
	return outcomes, merr
}
