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
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fotocabin/booth-core/pkg/alerting"
	"github.com/fotocabin/booth-core/pkg/backoff"
	"github.com/fotocabin/booth-core/pkg/config/ctxmutex"
	"github.com/fotocabin/booth-core/pkg/config/ctxrwmutex"
	"github.com/fotocabin/booth-core/pkg/constants"
	"github.com/fotocabin/booth-core/pkg/logger"
	"github.com/fotocabin/booth-core/pkg/metrics"
	filesystem "github.com/fotocabin/booth-core/pkg/service/filesystem"
)

// singleton instance
// we avoid having more than one instance of the config manager because it can lead to race conditions
// if we ensure that we have only one instance, we can avoid race conditions by using mutexes in this single instance as we do here
var (
	instance ConfigManager
	once     sync.Once
)

// ConfigManager is the interface for config management
type ConfigManager interface {
	// GetConfig returns the current config
	GetConfig(ctx context.Context, tick uint64) (FullConfig, error)
}

// FileConfigManager implements the ConfigManager interface by reading from a file
type FileConfigManager struct {
	// configPath is the path to the config file
	configPath string

	// fsService handles filesystem operations
	fsService filesystem.Service

	// logger is the logger for the config manager
	logger *zap.SugaredLogger

	// mutexAtomicUpdate for full cycle read and write access (atomic update) to the config file
	// all writes to the config need to happen under this mutex -> writeConfig is therefore not exposed
	// we use our own implementation of a context aware mutex here to avoid deadlocks
	mutexAtomicUpdate ctxmutex.CtxMutex

	// simple mutex for read access or write access to the config file
	// it will be used by GetConfig and writeConfig
	// this mutex will allow multiple GetConfig calls to happen in parallel
	// we use our own implementation of a context aware mutex here to avoid deadlocks
	mutexReadOrWrite ctxrwmutex.CtxRWMutex
}

// NewFileConfigManager creates a new FileConfigManager
// Note: This should only be used in tests or if you need a custom config manager.
// Prefer NewFileConfigManagerWithBackoff() for application use.
func NewFileConfigManager() *FileConfigManager {
	return &FileConfigManager{
		configPath:        constants.DefaultConfigPath,
		fsService:         filesystem.NewDefaultService(),
		logger:            logger.For(logger.ComponentConfigManager),
		mutexAtomicUpdate: *ctxmutex.NewCtxMutex(),
		mutexReadOrWrite:  *ctxrwmutex.NewCtxRWMutex(),
	}
}

// WithConfigPath allows setting a custom config file path
func (m *FileConfigManager) WithConfigPath(path string) *FileConfigManager {
	m.configPath = path
	return m
}

// WithFileSystemService allows setting a custom filesystem service
// useful for testing or advanced use cases
func (m *FileConfigManager) WithFileSystemService(fsService filesystem.Service) *FileConfigManager {
	m.fsService = fsService
	return m
}

// GetConfigOrCreateDefault returns the config, creating the config file with
// default values first if it does not exist yet. Used in main.go on startup
// so a freshly imaged booth comes up with a working threshold set.
func (m *FileConfigManager) GetConfigOrCreateDefault(ctx context.Context) (FullConfig, error) {
	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	err := m.mutexAtomicUpdate.Lock(ctx)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to lock config file: %w", err)
	}
	defer m.mutexAtomicUpdate.Unlock()

	exists, err := m.fsService.PathExists(ctx, m.configPath)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to check if config file exists in %s: %w", m.configPath, err)
	}

	if exists {
		return m.GetConfig(ctx, 0)
	}

	config := DefaultConfig()
	if err := m.writeConfig(ctx, config); err != nil {
		return FullConfig{}, fmt.Errorf("failed to write default config: %w", err)
	}

	m.logger.Infof("Created default config at %s", m.configPath)

	return config, nil
}

// GetConfig returns the current config, always reading fresh from disk.
// Zero-valued sections are filled with defaults before validation; a config
// that fails validation is returned as an ErrValidatorConfig error.
func (m *FileConfigManager) GetConfig(ctx context.Context, tick uint64) (FullConfig, error) {
	// we use a read lock here, because we only read the config file
	err := m.mutexReadOrWrite.RLock(ctx)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to lock config file: %w", err)
	}
	defer m.mutexReadOrWrite.RUnlock()

	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	// Create the directory if it doesn't exist
	dir := filepath.Dir(m.configPath)
	if err := m.fsService.EnsureDirectory(ctx, dir); err != nil {
		return FullConfig{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	exists, err := m.fsService.PathExists(ctx, m.configPath)
	if err != nil {
		return FullConfig{}, err
	}

	if !exists {
		return FullConfig{}, fmt.Errorf("config file does not exist: %s", m.configPath)
	}

	data, err := m.fsService.ReadFile(ctx, m.configPath)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FullConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FullConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Sometimes, due to a filesystem error, the file can come back empty.
	// Return an error so the caller retries on the next cycle instead of
	// running with a zeroed threshold set.
	if reflect.DeepEqual(config, FullConfig{}) {
		return FullConfig{}, fmt.Errorf("config file is empty: %s", m.configPath)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return FullConfig{}, err
	}

	return config, nil
}

// writeConfig writes the config to the file
// it should not be exposed or used outside of the config manager, due to potential race conditions
func (m *FileConfigManager) writeConfig(ctx context.Context, config FullConfig) error {
	// we use a write lock here, because we write the config file
	err := m.mutexReadOrWrite.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to lock config file: %w", err)
	}
	defer m.mutexReadOrWrite.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Create the directory if it doesn't exist
	dir := filepath.Dir(m.configPath)
	if err := m.fsService.EnsureDirectory(ctx, dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := m.fsService.WriteFile(ctx, m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.logger.Infof("Successfully wrote config to %s", m.configPath)

	return nil
}

// FileConfigManagerWithBackoff wraps a FileConfigManager and implements backoff for GetConfig errors
type FileConfigManagerWithBackoff struct {
	// The wrapped file config manager
	configManager *FileConfigManager

	// Backoff manager
	backoffManager *backoff.BackoffManager

	// Logger
	logger *zap.SugaredLogger
}

// NewFileConfigManagerWithBackoff creates a new FileConfigManagerWithBackoff with exponential backoff
func NewFileConfigManagerWithBackoff() (*FileConfigManagerWithBackoff, error) {
	if instance != nil {
		return nil, fmt.Errorf("config manager already initialized, only one instance is allowed")
	}

	once.Do(func() {
		configManager := NewFileConfigManager()
		logger := logger.For(logger.ComponentConfigManager)

		// Create backoff manager with default settings
		backoffConfig := backoff.DefaultConfig("ConfigManager", logger)
		backoffManager := backoff.NewBackoffManager(backoffConfig)

		instance = &FileConfigManagerWithBackoff{
			configManager:  configManager,
			backoffManager: backoffManager,
			logger:         logger,
		}
	})

	return instance.(*FileConfigManagerWithBackoff), nil
}

// GetConfigOrCreateDefault wraps the FileConfigManager's GetConfigOrCreateDefault method
// it is used in main.go to read or seed the config on startup
func (m *FileConfigManagerWithBackoff) GetConfigOrCreateDefault(ctx context.Context) (FullConfig, error) {
	return m.configManager.GetConfigOrCreateDefault(ctx)
}

// WithConfigPath allows setting a custom config file path on the wrapped FileConfigManager
func (m *FileConfigManagerWithBackoff) WithConfigPath(path string) *FileConfigManagerWithBackoff {
	m.configManager.WithConfigPath(path)
	return m
}

// WithFileSystemService allows setting a custom filesystem service on the wrapped FileConfigManager
// useful for testing or advanced use cases
func (m *FileConfigManagerWithBackoff) WithFileSystemService(fsService filesystem.Service) *FileConfigManagerWithBackoff {
	m.configManager.WithFileSystemService(fsService)
	return m
}

// GetConfig returns the current config with backoff logic for failures
// This is a wrapper around the FileConfigManager's GetConfig method
// It adds backoff logic to handle temporary and permanent failures
// It will return either a temporary backoff error or a permanent failure error
func (m *FileConfigManagerWithBackoff) GetConfig(ctx context.Context, tick uint64) (FullConfig, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveTickTime(metrics.ComponentConfigManager, "get_config", time.Since(start))
	}()

	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	// Check if we should skip operation due to backoff
	if m.backoffManager.ShouldSkipOperation(tick) {
		backoffErr := m.backoffManager.GetBackoffError(tick)

		// Log additional information for permanent failures
		if m.backoffManager.IsPermanentlyFailed() {
			alerting.ReportIssuef(alerting.IssueTypeError, m.logger, "ConfigManager is permanently failed. Last error: %v", m.backoffManager.GetLastError())
		}

		return FullConfig{}, backoffErr
	}

	getConfigCtx, cancel := context.WithTimeout(ctx, constants.ConfigGetConfigTimeout)
	defer cancel()

	config, err := m.configManager.GetConfig(getConfigCtx, tick)
	if err != nil {
		m.backoffManager.SetError(err, tick)
		return FullConfig{}, err
	}

	m.backoffManager.Reset()

	return config, nil
}

// ResetInstance clears the singleton. Only for tests.
func ResetInstance() {
	instance = nil
	once = sync.Once{}
}
