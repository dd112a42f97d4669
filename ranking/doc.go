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

// Package ranking finds the catalog items whose dominant colors are
// closest to a reference item.
//
// Ranking is a pure query over a snapshot of candidates:
//   - candidates without a color are ignored
//   - the reference item itself is never returned
//   - results are ordered by ascending Lab distance, ties broken by item ID
//
// Distances come from the colorspace package, so the ordering is stable
// and reproducible across runs.
package ranking
