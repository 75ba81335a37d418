// Copyright 2025 The Historia Authors
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


// Package snipper provides pluggable text-segmentation strategies that
// split document content into retrieval-sized snippets.
//
// Snippers are pure: they never mutate their input and the returned
// sequence can be iterated any number of times with identical results.
package snipper

import "iter"

// Snipper generates snippets from document content.
// Implementations must be safe for concurrent use.
type Snipper interface {
	// GenerateSnippets returns a finite, restartable sequence of snippets
	// derived from content. The sequence yields snippets in document order.
	GenerateSnippets(content string) iter.Seq[string]
}
