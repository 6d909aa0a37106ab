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

// Status describes how far a mapping progressed through the sync pipeline.
type Status string

const (
	// StatusPending is the initial state before the source group has been
	// resolved.
	StatusPending Status = "PENDING"

	// StatusResolved means the source group was found in the directory.
	StatusResolved Status = "RESOLVED"

	// StatusSkippedGroupNotFound means no directory group matched the
	// mapping's display name. The mapping was skipped without touching the
	// mailing-list service.
	StatusSkippedGroupNotFound Status = "SKIPPED_GROUP_NOT_FOUND"

	// StatusProvisioned means the target list exists, either found or freshly
	// created.
	StatusProvisioned Status = "PROVISIONED"

	// StatusSkippedProvisionFailed means the target list was missing and
	// creating it failed. Membership was not reconciled.
	StatusSkippedProvisionFailed Status = "SKIPPED_PROVISION_FAILED"

	// StatusSynced means membership reconciliation ran to completion.
	// Individual mutations may still have failed; see ItemFailures.
	StatusSynced Status = "SYNCED"
)

// ItemFailure records a single membership mutation that failed. Item failures
// never abort the remainder of a mapping's mutations.
type ItemFailure struct {
	// Identity is the member whose mutation failed.
	Identity Identity `json:"identity"`

	// Reason is the human-readable cause, taken from the backend error.
	Reason string `json:"reason"`
}

// MappingOutcome is the per-mapping result of a sync run. On an unexpected
// error the Status keeps the last state the mapping reached, so callers can
// tell a group lookup failure apart from a membership read failure.
type MappingOutcome struct {
	// Mapping is the mapping this outcome describes.
	Mapping *GroupMapping `json:"mapping"`

	// Status is the terminal (or last reached) pipeline state.
	Status Status `json:"status"`

	// Created is true when this run created the target list.
	Created bool `json:"created"`

	// Added is the number of members successfully added to the list.
	Added int `json:"added"`

	// Removed is the number of members successfully removed from the list.
	Removed int `json:"removed"`

	// Diff is the membership delta computed for the mapping. In dry run mode
	// it is the plan that would have been applied. It is nil when the
	// pipeline stopped before both membership sets were read.
	Diff *Diff `json:"diff,omitempty"`

	// ItemFailures holds the membership mutations that failed, in the order
	// they were attempted.
	ItemFailures []ItemFailure `json:"item_failures,omitempty"`

	// Err is the error that prevented the mapping from reaching StatusSynced,
	// if any. A group-not-found skip is expected and leaves Err nil; mutation
	// failures are recorded in ItemFailures instead.
	Err error `json:"-"`
}

// Skipped reports whether the mapping was skipped for an expected reason
// rather than synced or failed.
func (o *MappingOutcome) Skipped() bool {
	return o.Status == StatusSkippedGroupNotFound || o.Status == StatusSkippedProvisionFailed
}

// Clean reports whether the mapping synced with no item failures.
func (o *MappingOutcome) Clean() bool {
	return o.Status == StatusSynced && o.Err == nil && len(o.ItemFailures) == 0
}
