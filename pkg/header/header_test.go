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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_Init(t *testing.T) {
	var h Header
	h.SetMetadata("stale", "value")
	h.Init(KindValidationReport, "validator.nvidia.com/v1alpha1", "v1.0.0")

	assert.Equal(t, KindValidationReport, h.Kind)
	assert.Equal(t, "validator.nvidia.com/v1alpha1", h.APIVersion)
	assert.Equal(t, "v1.0.0", h.Metadata["version"])
	assert.NotContains(t, h.Metadata, "stale")

	ts, ok := h.Metadata["timestamp"]
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestHeader_InitWithoutVersion(t *testing.T) {
	var h Header
	h.Init(KindValidationReport, "v1", "")
	assert.NotContains(t, h.Metadata, "version")
}

func TestHeader_SetMetadata(t *testing.T) {
	var h Header
	h.SetMetadata("context", "prod")
	h.SetMetadata("empty", "")

	assert.Equal(t, "prod", h.Metadata["context"])
	assert.NotContains(t, h.Metadata, "empty")
}

func TestKind_IsValid(t *testing.T) {
	assert.True(t, KindValidationReport.IsValid())
	assert.False(t, Kind("Snapshot").IsValid())
	assert.Equal(t, "ValidationReport", KindValidationReport.String())
}
