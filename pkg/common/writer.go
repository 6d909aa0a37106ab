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

package common

import (
	"context"
	"fmt"
	"time"

	"github.com/abcxyz/list-link/pkg/googlegroups"
	"github.com/abcxyz/list-link/pkg/listsync"
)

// NewListReadWriter creates the mailing-list backend. Distribution lists are
// Google Groups managed through the Admin SDK Directory API; auth uses
// application default credentials.
func NewListReadWriter(ctx context.Context, emailDomain string, callTimeout time.Duration) (listsync.ListReadWriter, error) {
	service, err := googlegroups.NewService(ctx, callTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create google groups writer: %w", err)
	}
	return googlegroups.NewListReadWriter(service, emailDomain), nil
}
