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

package serializer

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultValueKey = "value"

// labelColumns are title-cased when rendered, e.g. "passed" becomes "Passed".
var labelColumns = map[string]bool{"OUTCOME": true, "STATUS": true}

var (
	upper = cases.Upper(language.English)
	title = cases.Title(language.English)
)

func (w *Writer) serializeTable(value any) error {
	tw := tabwriter.NewWriter(w.output, 0, 0, 2, ' ', 0)

	if tr, ok := value.(TableRenderer); ok {
		writeRendered(tw, tr)
	} else if !writeFlattened(tw, value) {
		fmt.Fprintln(w.output, "<empty>")
		return nil
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	if f, ok := value.(Footer); ok {
		fmt.Fprintf(w.output, "\n%s\n", f.Footer())
	}
	return nil
}

func writeRendered(out io.Writer, tr TableRenderer) {
	cols := tr.Columns()
	header := make([]string, len(cols))
	label := make([]bool, len(cols))
	for i, c := range cols {
		header[i] = upper.String(c)
		label[i] = labelColumns[header[i]]
	}
	fmt.Fprintln(out, strings.Join(header, "\t"))

	for _, row := range tr.Rows() {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(label) && label[i] {
				cell = title.String(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintln(out, strings.Join(cells, "\t"))
	}
}

func writeFlattened(out io.Writer, value any) bool {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(value), "")
	if len(flat) == 0 {
		return false
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(out, "FIELD\tVALUE")
	fmt.Fprintln(out, "-----\t-----")
	for _, key := range keys {
		fmt.Fprintf(out, "%s\t%v\n", key, flat[key])
	}
	return true
}

func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // We handle the common cases explicitly; all others go to default
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if field.Anonymous {
				name = ""
			}
			flattenValue(out, val.Field(i), joinKey(prefix, name))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			key := joinKey(prefix, fmt.Sprintf("[%d]", i))
			flattenValue(out, val.Index(i), key)
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
