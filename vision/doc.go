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

// Package vision defines the color-extraction collaborator used to annotate
// catalog items with a dominant color.
//
// A ColorExtractor turns a photo locator into a core.ColorVector. Two
// implementations are provided:
//   - vision/local decodes the image and picks the dominant color itself
//   - vision/openai asks an OpenAI-compatible multimodal model
//
// Both load images through a Fetcher, which understands http(s) URLs,
// file URLs, plain paths and scheme-relative locators such as
// "//images.example.com/p.jpg".
//
// # Errors
//
// Extractors report two recoverable failures:
//   - ErrResourceNotFound when the photo does not exist or cannot be fetched
//   - ErrColorMissing when the photo was fetched but yielded no color
//
// Batch pipelines treat both as item failures.
package vision
