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
	"fmt"

	"github.com/google/go-github/v61/github"
)

// paginate is a helper function that iterates through a series of
// well-structured GitHub responses by continuously invoking `f` for each
// `NextPage` value. It is the caller's responsibility to capture any values
// inside the closure (e.g. append to a slice or map); this function does not
// accumulate responses. Returning a nil response from `f` stops the
// iteration early.
func paginate(f func(opts *github.ListOptions) (*github.Response, error)) error {
	opts := &github.ListOptions{
		PerPage: 100,
	}

	for {
		resp, err := f(opts)
		if err != nil {
			return fmt.Errorf("failed to paginate: %w", err)
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return nil
}
