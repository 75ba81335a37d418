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


package datasource

import "errors"

// Connector errors
var (
	// ErrFetch indicates a single identifier could not be resolved to
	// content. Recorded per item, never aborts a batch.
	ErrFetch = errors.New("failed to fetch document content")

	// ErrInvalidParams indicates the data source parameters from the
	// run configuration are missing or malformed.
	ErrInvalidParams = errors.New("invalid data source parameters")
)
