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

// Package common builds the engine's backends from parsed configuration.
package common

import (
	"context"
	"fmt"
	"strings"

	lltypes "github.com/abcxyz/list-link/internal"
	"github.com/abcxyz/list-link/pkg/cloudidentity"
	"github.com/abcxyz/list-link/pkg/github"
	"github.com/abcxyz/list-link/pkg/gitlab"
	"github.com/abcxyz/list-link/pkg/listsync"
)

// Options carries the backend client configurations collected from flags.
type Options struct {
	CloudIdentity *cloudidentity.ClientConfig
	GitHub        *github.ClientConfig
	GitLab        *gitlab.ClientConfig
}

// NewGroupReader creates a GroupReader based on source type and input config.
func NewGroupReader(ctx context.Context, source string, opts *Options) (listsync.GroupReader, error) {
	switch strings.ToUpper(source) {
	case lltypes.SystemTypeCloudIdentity:
		return NewCloudIdentityGroupReader(ctx, opts.CloudIdentity)
	case lltypes.SystemTypeGitHub:
		reader, err := github.NewGitHubGroupReader(ctx, opts.GitHub)
		if err != nil {
			return nil, fmt.Errorf("failed to create github reader: %w", err)
		}
		return reader, nil
	case lltypes.SystemTypeGitLab:
		reader, err := gitlab.NewGitLabGroupReader(opts.GitLab)
		if err != nil {
			return nil, fmt.Errorf("failed to create gitlab reader: %w", err)
		}
		return reader, nil
	}
	return nil, fmt.Errorf("unsupported source type: %s", source)
}

// NewCloudIdentityGroupReader creates a GroupReader backed by the Cloud
// Identity API. Currently we only support auth using application default
// credentials.
func NewCloudIdentityGroupReader(ctx context.Context, config *cloudidentity.ClientConfig) (listsync.GroupReader, error) {
	service, err := cloudidentity.NewService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud identity reader: %w", err)
	}
	return cloudidentity.NewGroupReader(service, config.Customer), nil
}
