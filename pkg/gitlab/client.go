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
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/abcxyz/pkg/cli"
)

const DefaultGitLabServerEndpoint = "https://gitlab.com"

// ClientConfig is the config for the gitlab directory backend.
type ClientConfig struct {
	Endpoint string
	Token    string
}

func (c *ClientConfig) RegisterFlags(set *cli.FlagSet) {
	f := set.NewSection("GITLAB OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "gitlab-server-endpoint",
		EnvVar:  "GITLAB_SERVER_URL",
		Target:  &c.Endpoint,
		Default: DefaultGitLabServerEndpoint,
		Usage:   `URL for gitlab endpoint, example: "https://gitlab.com"`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "gitlab-client-auth-token",
		EnvVar: "GITLAB_AUTH_TOKEN",
		Target: &c.Token,
		Usage:  `Token to authenticate with gitlab.`,
	})

	set.AfterParse(func(merr error) error {
		// In case the user exported GITLAB_SERVER_URL to an empty string.
		if c.Endpoint == "" {
			c.Endpoint = DefaultGitLabServerEndpoint
		}
		return nil
	})
}

// NewGitLabClient creates a gitlab.Client based on the ClientConfig.
func NewGitLabClient(c *ClientConfig) (*gitlab.Client, error) {
	client, err := gitlab.NewClient(c.Token, gitlab.WithBaseURL(c.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}
	return client, nil
}

// NewGitLabGroupReader creates a GroupReader for the configured endpoint.
func NewGitLabGroupReader(c *ClientConfig) (*GroupReader, error) {
	client, err := NewGitLabClient(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab group reader: %w", err)
	}
	return NewGroupReader(client), nil
}
