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

package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abcxyz/pkg/cli"
	"github.com/abcxyz/pkg/logging"

	lltypes "github.com/abcxyz/list-link/internal"
	"github.com/abcxyz/list-link/pkg/cloudidentity"
	"github.com/abcxyz/list-link/pkg/common"
	"github.com/abcxyz/list-link/pkg/config"
	"github.com/abcxyz/list-link/pkg/github"
	"github.com/abcxyz/list-link/pkg/gitlab"
	"github.com/abcxyz/list-link/pkg/listsync"
	"github.com/abcxyz/list-link/pkg/notify"
)

var (
	_                    cli.Command = (*SyncCommand)(nil)
	allowedSourceSystems             = []string{
		lltypes.SystemTypeCloudIdentity,
		lltypes.SystemTypeGitHub,
		lltypes.SystemTypeGitLab,
	}
)

type SyncCommand struct {
	cli.BaseCommand

	configPath        string
	source            string
	dryRun            bool
	concurrency       int
	googleCallTimeout time.Duration
	slackToken        string

	cloudIdentityConfig cloudidentity.ClientConfig
	githubConfig        github.ClientConfig
	gitlabConfig        gitlab.ClientConfig
}

func (c *SyncCommand) Desc() string {
	return `Reconcile distribution list membership against directory groups`
}

func (c *SyncCommand) Help() string {
	return `
Usage: {{ COMMAND }} [options]

  Reconcile the distribution lists named in a mapping config against their
  authoritative directory groups.

  Sync lists from Cloud Identity groups:

  llctl sync \
	-config lists.yaml \
	-cloud-identity-customer customers/C046psxkn

  Preview changes from a GitHub org without applying them:

  llctl sync \
	-config lists.yaml \
	-source github \
	-github-org acme \
	-dry-run
`
}

func (c *SyncCommand) Flags() *cli.FlagSet {
	set := c.NewFlagSet()

	// Command options
	f := set.NewSection("COMMAND OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "config",
		Target:  &c.configPath,
		Aliases: []string{"c"},
		Example: "lists.yaml",
		Usage:   `The config file naming the groups to mirror as distribution lists`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "source",
		Target:  &c.source,
		Aliases: []string{"src", "s"},
		Default: "cloudidentity",
		Example: "github",
		Usage:   `The source system to read group membership from: cloudidentity, github or gitlab`,
	})

	f.BoolVar(&cli.BoolVar{
		Name:   "dry-run",
		Target: &c.dryRun,
		Usage:  `Compute and report membership changes without applying them`,
	})

	f.IntVar(&cli.IntVar{
		Name:    "concurrency",
		Target:  &c.concurrency,
		Default: 1,
		Example: "4",
		Usage:   `How many mappings to reconcile in parallel, values below 1 use one worker per CPU`,
	})

	f.DurationVar(&cli.DurationVar{
		Name:    "google-call-timeout",
		Target:  &c.googleCallTimeout,
		Default: 30 * time.Second,
		Usage:   `Per-call timeout for Google Directory and Cloud Identity requests`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "slack-auth-token",
		EnvVar: "SLACK_AUTH_TOKEN",
		Target: &c.slackToken,
		Usage:  `Token used to post the run summary to Slack, notification is skipped when unset`,
	})

	c.cloudIdentityConfig.RegisterFlags(set)
	c.githubConfig.RegisterFlags(set)
	c.gitlabConfig.RegisterFlags(set)

	return set
}

func (c *SyncCommand) Run(ctx context.Context, args []string) error {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	args = f.Args()
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %q", args)
	}

	if ok := slices.Contains(allowedSourceSystems, strings.ToUpper(c.source)); !ok {
		return fmt.Errorf("source system %s not in allowed list: %s", c.source, strings.Join(allowedSourceSystems, ","))
	}

	if c.configPath == "" {
		return fmt.Errorf("config file is not provided")
	}

	switch strings.ToUpper(c.source) {
	case lltypes.SystemTypeCloudIdentity:
		if c.cloudIdentityConfig.Customer == "" {
			return fmt.Errorf("cloud identity customer is not provided")
		}
	case lltypes.SystemTypeGitHub:
		if c.githubConfig.Org == "" {
			return fmt.Errorf("github org is not provided")
		}
		if c.githubConfig.Token == "" {
			return fmt.Errorf("github auth token is not provided")
		}
	case lltypes.SystemTypeGitLab:
		if c.gitlabConfig.Token == "" {
			return fmt.Errorf("gitlab auth token is not provided")
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	// Both Google backends share the call timeout flag.
	c.cloudIdentityConfig.CallTimeout = c.googleCallTimeout

	groups, err := common.NewGroupReader(ctx, c.source, &common.Options{
		CloudIdentity: &c.cloudIdentityConfig,
		GitHub:        &c.githubConfig,
		GitLab:        &c.gitlabConfig,
	})
	if err != nil {
		return fmt.Errorf("failed to create group reader: %w", err)
	}

	lists, err := common.NewListReadWriter(ctx, cfg.EmailDomain, c.googleCallTimeout)
	if err != nil {
		return fmt.Errorf("failed to create list read-writer: %w", err)
	}

	opts := []listsync.Opt{listsync.WithConcurrency(c.concurrency)}
	if c.dryRun {
		opts = append(opts, listsync.WithDryRun())
	}
	syncer := listsync.NewSyncer(groups, lists, opts...)

	outcomes, merr := syncer.SyncAll(ctx, cfg.Mappings())
	c.Outf("%s", notify.Summary(outcomes, c.dryRun))

	// A notification failure must not fail a run that already applied its
	// changes.
	if c.slackToken != "" && cfg.SlackChannel != "" {
		notifier := notify.NewSlackNotifier(c.slackToken, cfg.SlackChannel)
		if err := notifier.Notify(ctx, outcomes, c.dryRun); err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "failed to post slack summary",
				"channel", cfg.SlackChannel,
				"error", err,
			)
		}
	}

	return merr
}
