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
	"context"
	"fmt"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/abcxyz/pkg/cli"
)

const DefaultGitHubServerEndpoint = "https://github.com"

// ClientConfig is the config for the github directory backend.
type ClientConfig struct {
	Endpoint string
	Org      string
	Token    string
}

func (c *ClientConfig) RegisterFlags(set *cli.FlagSet) {
	f := set.NewSection("GITHUB OPTIONS")

	// Flag values are resolved in priority order:
	// 1. Read from input flags.
	// 2. Read from env vars.
	// 3. Use the default value.
	f.StringVar(&cli.StringVar{
		Name:    "github-server-endpoint",
		EnvVar:  "GITHUB_SERVER_URL",
		Target:  &c.Endpoint,
		Default: DefaultGitHubServerEndpoint,
		Usage:   `URL for github endpoint, example: "https://github.com"`,
	})

	f.StringVar(&cli.StringVar{
		Name:    "github-org",
		EnvVar:  "GITHUB_ORG",
		Target:  &c.Org,
		Example: "acme",
		Usage:   `GitHub organization whose teams act as the access-control groups.`,
	})

	f.StringVar(&cli.StringVar{
		Name:   "github-client-auth-token",
		EnvVar: "GITHUB_AUTH_TOKEN",
		Target: &c.Token,
		Usage:  `Token to authenticate with github.`,
	})

	set.AfterParse(func(merr error) error {
		// In case the user exported GITHUB_SERVER_URL to an empty string.
		if c.Endpoint == "" {
			c.Endpoint = DefaultGitHubServerEndpoint
		}
		return nil
	})
}

// NewGitHubClient creates a github.Client based on the ClientConfig.
func NewGitHubClient(ctx context.Context, c *ClientConfig) (*github.Client, error) {
	ghc := github.NewClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: c.Token,
	})))
	var err error
	if c.Endpoint != DefaultGitHubServerEndpoint {
		if ghc, err = ghc.WithEnterpriseURLs(c.Endpoint, c.Endpoint); err != nil {
			return nil, fmt.Errorf("failed to create github client with enterprise endpoint %s: %w", c.Endpoint, err)
		}
	}
	return ghc, nil
}

// NewGitHubGroupReader creates a GroupReader for the configured org.
func NewGitHubGroupReader(ctx context.Context, c *ClientConfig) (*GroupReader, error) {
	client, err := NewGitHubClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create github group reader: %w", err)
	}
	return NewGroupReader(client, c.Org), nil
}
