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

// Package storage provides the storage abstraction layer for colormatch.
//
// This package defines repository interfaces that decouple the catalog store
// from the pipelines that read and annotate it. Implementations live in
// sub-packages (see storage/badger).
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//   - CatalogRepository: catalog items keyed by their external identity
//   - JobRepository: finished batch jobs and the job id sequence
//
// Catalog items are always traversed in ascending identity order, which
// gives the backfill pipeline a stable, restartable scan.
//
// # Usage
//
//	catalog, jobs, backend, err := badger.OpenRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	catalog, jobs, backend, err := badger.NewMemoryRepositories()
//
// # Serialization
//
// Records are encoded with mus-go. Every encoded record starts with a format
// version so older stores can be detected.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
