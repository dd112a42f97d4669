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

package batch

import "errors"

var (
	// ErrInvalidJobParameter is returned when job parameters fail validation.
	// The job fails before any chunk is read.
	ErrInvalidJobParameter = errors.New("invalid job parameter")

	// ErrChunkWrite wraps a Writer failure. A chunk write failure fails the job.
	ErrChunkWrite = errors.New("chunk write failed")

	// ErrRead wraps a Reader failure other than io.EOF.
	ErrRead = errors.New("read failed")

	// ErrProcessorPanic is recorded as an item failure when a Processor panics.
	ErrProcessorPanic = errors.New("processor panicked")

	// ErrReaderRequired is returned when a Step has no Reader.
	ErrReaderRequired = errors.New("reader required")

	// ErrProcessorRequired is returned when a Step has no Processor.
	ErrProcessorRequired = errors.New("processor required")

	// ErrWriterRequired is returned when a Step has no Writer.
	ErrWriterRequired = errors.New("writer required")

	// ErrInvalidChunkSize is returned when a Step's chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrInvalidPolicy is returned for a concurrency policy with fewer than one
	// worker or a negative queue capacity.
	ErrInvalidPolicy = errors.New("invalid concurrency policy")
)
