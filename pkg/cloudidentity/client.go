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

package cloudidentity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/cloudidentity/v1"
	"google.golang.org/api/option"

	"github.com/abcxyz/pkg/cli"
)

// DefaultCallTimeout bounds each Cloud Identity API call when the config does
// not set one. The session is non-interactive, so calls must not hang forever.
const DefaultCallTimeout = 30 * time.Second

// ClientConfig is the config for the Cloud Identity client.
type ClientConfig struct {
	Customer    string
	CallTimeout time.Duration
}

func (c *ClientConfig) RegisterFlags(set *cli.FlagSet) {
	f := set.NewSection("CLOUD IDENTITY OPTIONS")

	f.StringVar(&cli.StringVar{
		Name:    "cloud-identity-customer",
		EnvVar:  "CLOUD_IDENTITY_CUSTOMER",
		Target:  &c.Customer,
		Example: "customers/C046psxkn",
		Usage:   `Customer resource the directory groups live under, of the form "customers/<id>".`,
	})

	set.AfterParse(func(merr error) error {
		if c.Customer != "" && !strings.HasPrefix(c.Customer, "customers/") {
			c.Customer = "customers/" + c.Customer
		}
		return nil
	})
}

// NewService creates a Cloud Identity service authenticated with Application
// Default Credentials and the groups read-only scope. The engine never writes
// to the directory.
func NewService(ctx context.Context, c *ClientConfig) (*cloudidentity.Service, error) {
	httpClient, err := google.DefaultClient(ctx, cloudidentity.CloudIdentityGroupsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to load default credentials: %w", err)
	}
	httpClient.Timeout = c.CallTimeout
	if c.CallTimeout <= 0 {
		httpClient.Timeout = DefaultCallTimeout
	}
	service, err := cloudidentity.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudidentity service: %w", err)
	}
	return service, nil
}
