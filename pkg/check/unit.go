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

package check

import (
	"context"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/NVIDIA/cluster-validator/pkg/errors"
)

// KubeletUnit is the systemd unit the kubelet runs under.
const KubeletUnit = "kubelet.service"

// UnitState is the load and activity state of a systemd unit.
type UnitState struct {
	Name        string `json:"name" yaml:"name"`
	LoadState   string `json:"loadState" yaml:"loadState"`
	ActiveState string `json:"activeState" yaml:"activeState"`
	SubState    string `json:"subState" yaml:"subState"`
}

// UnitStater reads the state of a systemd unit.
type UnitStater interface {
	UnitState(ctx context.Context, unit string) (UnitState, error)
}

// SystemdUnits reads unit state from the local systemd bus. It only works
// when the validator runs on a node.
type SystemdUnits struct{}

// UnitState implements UnitStater.
func (SystemdUnits) UnitState(ctx context.Context, unit string) (UnitState, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return UnitState{}, errors.Wrap(errors.ErrCodeCommandFailure, "failed to connect to systemd", err)
	}
	defer conn.Close()

	props, err := conn.GetUnitPropertiesContext(ctx, unit)
	if err != nil {
		return UnitState{}, errors.Wrap(errors.ErrCodeCommandFailure, "failed to get unit properties", err)
	}

	return UnitState{
		Name:        unit,
		LoadState:   stringProp(props, "LoadState"),
		ActiveState: stringProp(props, "ActiveState"),
		SubState:    stringProp(props, "SubState"),
	}, nil
}

func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}
