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

package vision

import "errors"

var (
	// ErrResourceNotFound indicates the photo could not be located or fetched.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrColorMissing indicates the photo was fetched but no color could be extracted.
	ErrColorMissing = errors.New("color missing")

	// ErrUnsupportedLocator indicates a photo locator with an unknown scheme.
	ErrUnsupportedLocator = errors.New("unsupported photo locator")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrFetcherRequired is returned when an extractor is built without a fetcher.
	ErrFetcherRequired = errors.New("fetcher required")
)
