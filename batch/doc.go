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

// Package batch runs chunk-oriented jobs over a stream of records.
//
// A Step wires a Reader, a Processor and a Writer together. Run pulls up to
// ChunkSize records from the Reader, hands each record to the Processor on a
// bounded worker pool, and commits the surviving records of the chunk to the
// Writer in a single call. Chunks are strictly sequential: chunk N+1 is not
// read before chunk N has been written. Inside a chunk records are processed
// in parallel and their relative order is not preserved.
//
// Work is dispatched to an ants pool of Policy.Workers goroutines. When every
// worker is busy, records wait in a queue of Policy.QueueCapacity slots, and
// when the queue is full too the calling goroutine processes the record
// itself. No record is dropped and no dispatch blocks indefinitely.
//
// Failures are split in two levels:
//   - item failures (a Processor error or panic) are counted and logged, and
//     the job continues
//   - job failures (invalid parameters, a read error, a write error or a
//     cancelled context) stop the job with StatusFailed
//
// Every run produces a ChunkJob describing its outcome. Observers receive
// a snapshot after every committed chunk.
package batch
