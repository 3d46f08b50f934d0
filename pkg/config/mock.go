// Copyright 2025 Fotocabin Systems B.V.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"sync"
	"time"
)

// MockConfigManager is a mock implementation of ConfigManager for testing
type MockConfigManager struct {
	Config          FullConfig
	ConfigError     error
	ConfigDelay     time.Duration
	GetConfigCalled bool
	GetConfigCalls  int

	mutex sync.Mutex
}

// NewMockConfigManager creates a new MockConfigManager seeded with the
// default config
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		Config: DefaultConfig(),
	}
}

// WithConfig replaces the config returned by GetConfig
func (m *MockConfigManager) WithConfig(config FullConfig) *MockConfigManager {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Config = config

	return m
}

// WithConfigError makes GetConfig fail with the given error
func (m *MockConfigManager) WithConfigError(err error) *MockConfigManager {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.ConfigError = err

	return m
}

// GetConfig implements the ConfigManager interface
func (m *MockConfigManager) GetConfig(ctx context.Context, tick uint64) (FullConfig, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.GetConfigCalled = true
	m.GetConfigCalls++

	if m.ConfigDelay > 0 {
		select {
		case <-time.After(m.ConfigDelay):
		case <-ctx.Done():
			return FullConfig{}, ctx.Err()
		}
	}

	if m.ConfigError != nil {
		return FullConfig{}, m.ConfigError
	}

	return m.Config, nil
}
