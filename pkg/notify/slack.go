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

// Package notify posts sync run summaries to Slack. Notification is strictly
// observational: it reports outcomes and never influences them.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/abcxyz/list-link/pkg/listsync"
)

// Messager is the part of the Slack client the notifier uses.
type Messager interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Ensure the real client satisfies the interface.
var _ Messager = (*slack.Client)(nil)

// SlackNotifier posts a one-message summary of a sync run to a channel.
type SlackNotifier struct {
	client  Messager
	channel string
}

// NewSlackNotifier creates a notifier posting to the given channel,
// authenticating with the given token.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return NewSlackNotifierWithClient(slack.New(token), channel)
}

// NewSlackNotifierWithClient is like NewSlackNotifier with a caller-supplied
// client.
func NewSlackNotifierWithClient(client Messager, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  client,
		channel: channel,
	}
}

// Notify posts the run summary for the given outcomes.
func (n *SlackNotifier) Notify(ctx context.Context, outcomes []*listsync.MappingOutcome, dryRun bool) error {
	summary := Summary(outcomes, dryRun)
	if _, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(summary, false)); err != nil {
		return fmt.Errorf("failed to post summary to %s: %w", n.channel, err)
	}
	return nil
}

// Summary renders the per-mapping outcomes as a single plain-text message,
// one line per mapping in run order.
func Summary(outcomes []*listsync.MappingOutcome, dryRun bool) string {
	var clean, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Clean():
			clean++
		case o.Skipped() && o.Err == nil:
			skipped++
		default:
			failed++
		}
	}

	var b strings.Builder
	header := "list-link sync"
	if dryRun {
		header += " (dry run)"
	}
	fmt.Fprintf(&b, "%s: %d mappings, %d clean, %d skipped, %d failed\n",
		header, len(outcomes), clean, skipped, failed)

	for _, o := range outcomes {
		fmt.Fprintf(&b, "- %s (%s): %s", o.Mapping.SourceGroup, o.Mapping.Address, o.Status)
		if o.Created {
			fmt.Fprintf(&b, ", created list")
		}
		switch {
		case dryRun && o.Diff != nil:
			fmt.Fprintf(&b, ", would add %d, remove %d", len(o.Diff.ToAdd), len(o.Diff.ToRemove))
		case o.Status == listsync.StatusSynced:
			fmt.Fprintf(&b, ", added %d, removed %d", o.Added, o.Removed)
		}
		if n := len(o.ItemFailures); n > 0 {
			fmt.Fprintf(&b, ", failed changes: %d", n)
		}
		if o.Err != nil {
			fmt.Fprintf(&b, ", error: %v", o.Err)
		}
		fmt.Fprintf(&b, "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
