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

package validators

import (
	"errors"
	"fmt"
)

// ErrDuplicateValidator is returned when a validator name is registered
// twice. Registration-time configuration errors are fatal; silently
// replacing a validator would mask a wiring bug.
var ErrDuplicateValidator = errors.New("validator already registered")

// Registry holds the active validator set in registration order. The order
// matters only for deterministic feedback priority, not for aggregation.
// Not safe for concurrent mutation; the booth registers validators once at
// session start and only reads afterwards.
type Registry struct {
	order      []string
	validators map[string]Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]Validator),
	}
}

// Register adds a validator. Fails with ErrDuplicateValidator when the name
// is already present; the registry is left unchanged in that case.
func (r *Registry) Register(v Validator) error {
	if _, exists := r.validators[v.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateValidator, v.Name())
	}

	r.validators[v.Name()] = v
	r.order = append(r.order, v.Name())

	return nil
}

// Unregister removes a validator by name. Removing an unknown name is a
// no-op.
func (r *Registry) Unregister(name string) {
	if _, exists := r.validators[name]; !exists {
		return
	}

	delete(r.validators, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ActiveValidators returns the registered validators in registration order.
// The returned slice is a copy.
func (r *Registry) ActiveValidators() []Validator {
	active := make([]Validator, 0, len(r.order))
	for _, name := range r.order {
		active = append(active, r.validators[name])
	}

	return active
}

// Get returns the validator with the given name.
func (r *Registry) Get(name string) (Validator, bool) {
	v, ok := r.validators[name]
	return v, ok
}

// Len returns the number of registered validators.
func (r *Registry) Len() int {
	return len(r.order)
}
