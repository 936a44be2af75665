// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package serializer writes validation reports in multiple formats.
//
// # Supported Formats
//
// JSON:
//   - Machine-parseable, indented representation
//   - Standard encoding/json package
//
// YAML:
//   - Human-readable with preserved structure
//   - gopkg.in/yaml.v3 package
//
// Table:
//   - Terminal view rendered with text/tabwriter
//   - Values implementing TableRenderer control their own columns and rows;
//     OUTCOME and STATUS cells are title-cased
//   - Any other value is flattened into FIELD/VALUE rows
//
// # Usage
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatTable, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, report); err != nil {
//	    return err
//	}
//
// An empty path or "-" writes to stdout. Unknown formats fall back to JSON
// with a warning.
package serializer
