// Copyright 2025 Poiesic Systems
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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidColor indicates an RGB triple with a component outside [0,255].
	ErrInvalidColor = errors.New("invalid color")

	// ErrMissingColor indicates an operation needed a dominant color that was never annotated.
	ErrMissingColor = errors.New("dominant color missing")

	// ErrInvalidCatalogItem indicates a CatalogItem failed validation.
	ErrInvalidCatalogItem = errors.New("invalid catalog item")

	// ErrInvalidGender indicates a value outside the closed GenderClass set.
	ErrInvalidGender = errors.New("invalid gender class")

	// ErrMalformedColor indicates a persisted or imported color string could not be parsed.
	ErrMalformedColor = errors.New("malformed color")
)
