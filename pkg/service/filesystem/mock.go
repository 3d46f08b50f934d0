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

package filesystem

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// MockFileSystem is a mock implementation of the filesystem Service interface.
// By default it acts as an in-memory filesystem; individual operations can be
// overridden with the *Func fields.
type MockFileSystem struct {
	ReadFileFunc        func(ctx context.Context, path string) ([]byte, error)
	WriteFileFunc       func(ctx context.Context, path string, data []byte, perm os.FileMode) error
	PathExistsFunc      func(ctx context.Context, path string) (bool, error)
	EnsureDirectoryFunc func(ctx context.Context, path string) error
	RemoveFunc          func(ctx context.Context, path string) error
	StatFunc            func(ctx context.Context, path string) (os.FileInfo, error)
	ReadDirFunc         func(ctx context.Context, path string) ([]os.DirEntry, error)
	RenameFunc          func(ctx context.Context, oldPath, newPath string) error

	files map[string][]byte
	dirs  map[string]bool
	mutex sync.Mutex
}

// NewMockFileSystem creates a new MockFileSystem instance.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// WithFile seeds the in-memory filesystem with a file.
func (m *MockFileSystem) WithFile(path string, data []byte) *MockFileSystem {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.files[path] = data

	return m
}

// EnsureDirectory creates a directory if it doesn't exist.
func (m *MockFileSystem) EnsureDirectory(ctx context.Context, path string) error {
	if m.EnsureDirectoryFunc != nil {
		return m.EnsureDirectoryFunc(ctx, path)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.dirs[path] = true

	return nil
}

// ReadFile reads a file's contents respecting the context.
func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(ctx, path)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("failed to read file %s: %w", path, os.ErrNotExist)
	}

	return data, nil
}

// WriteFile writes data to a file respecting the context.
func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(ctx, path, data, perm)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.files[path] = data

	return nil
}

// PathExists checks if a file or directory exists at the given path.
func (m *MockFileSystem) PathExists(ctx context.Context, path string) (bool, error) {
	if m.PathExistsFunc != nil {
		return m.PathExistsFunc(ctx, path)
	}

	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.files[path]; ok {
		return true, nil
	}

	return m.dirs[path], nil
}

// Remove removes a file or directory.
func (m *MockFileSystem) Remove(ctx context.Context, path string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, path)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.files, path)
	delete(m.dirs, path)

	return nil
}

// Stat returns file info.
func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if m.StatFunc != nil {
		return m.StatFunc(ctx, path)
	}

	return nil, fmt.Errorf("stat not supported by in-memory mock for %s", path)
}

// ReadDir reads a directory, returning all its directory entries.
func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if m.ReadDirFunc != nil {
		return m.ReadDirFunc(ctx, path)
	}

	return nil, fmt.Errorf("readdir not supported by in-memory mock for %s", path)
}

// Rename renames (moves) a file or directory from oldPath to newPath.
func (m *MockFileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, oldPath, newPath)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("failed to rename %s: %w", oldPath, os.ErrNotExist)
	}

	delete(m.files, oldPath)
	m.files[newPath] = data

	return nil
}
