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

package googlegroups

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

// DefaultCallTimeout bounds each Admin SDK call when no timeout is given.
const DefaultCallTimeout = 30 * time.Second

// NewService creates an Admin SDK Directory service authenticated with
// Application Default Credentials and the group and member management scopes.
// The credentials must belong to (or impersonate) a workspace admin. See
// https://cloud.google.com/docs/authentication/application-default-credentials
func NewService(ctx context.Context, callTimeout time.Duration) (*admin.Service, error) {
	httpClient, err := google.DefaultClient(ctx,
		admin.AdminDirectoryGroupScope,
		admin.AdminDirectoryGroupMemberScope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load default credentials: %w", err)
	}
	httpClient.Timeout = callTimeout
	if callTimeout <= 0 {
		httpClient.Timeout = DefaultCallTimeout
	}
	service, err := admin.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin service: %w", err)
	}
	return service, nil
}
