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

// Package config loads the YAML mapping configuration that names the
// access-control groups to mirror and the email domain their distribution
// lists live under. Backend connection settings and secrets are deliberately
// not part of this file; they come from flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/abcxyz/list-link/pkg/listsync"
)

// Config is the parsed mapping configuration.
type Config struct {
	// EmailDomain is the bare domain the derived list addresses and aliases
	// are placed under, e.g. "contoso.com".
	EmailDomain string `json:"emailDomain"`

	// Groups are the display names of the authoritative groups to mirror, in
	// the order they should be processed.
	Groups []string `json:"groups"`

	// SlackChannel optionally names the channel that receives the run
	// summary. An empty channel disables notification.
	SlackChannel string `json:"slackChannel,omitempty"`
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return &c, nil
}

// Validate checks the parts of the config the engine cannot run without.
// Config problems are fatal: a run never starts against a half-valid file.
func (c *Config) Validate() error {
	var merr error
	if c.EmailDomain == "" {
		merr = errors.Join(merr, fmt.Errorf("emailDomain must be set"))
	} else if strings.ContainsAny(c.EmailDomain, "@ ") {
		merr = errors.Join(merr, fmt.Errorf("emailDomain %q is not a bare domain", c.EmailDomain))
	}
	if len(c.Groups) == 0 {
		merr = errors.Join(merr, fmt.Errorf("at least one group must be listed"))
	}
	// Duplicate names are allowed and processed independently; a repeated
	// mapping is redundant but idempotent.
	for i, name := range c.Groups {
		if strings.TrimSpace(name) == "" {
			merr = errors.Join(merr, fmt.Errorf("groups[%d] is empty", i))
		}
	}
	return merr
}

// Mappings derives the list naming for every configured group, preserving
// config order.
func (c *Config) Mappings() []*listsync.GroupMapping {
	mappings := make([]*listsync.GroupMapping, 0, len(c.Groups))
	for _, name := range c.Groups {
		mappings = append(mappings, listsync.NewGroupMapping(name, c.EmailDomain))
	}
	return mappings
}
