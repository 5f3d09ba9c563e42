// Copyright 2026 The Tailstream Authors
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

package aggs

import (
	"github.com/tailstream-io/tailstream/errors"
	"github.com/tailstream-io/tailstream/types"
)

const (
	FirstValueFunctionName = "first_value"
	LastValueFunctionName  = "last_value"
)

// AggFuncDesc describes a registered aggregate function by name. Whether the
// retractable flavour exists is a static property of the registration, callers
// that need retraction must check Retractable before instantiating.
type AggFuncDesc struct {
	name        string
	first       bool
	retractable bool
}

var aggFuncRegistry = map[string]*AggFuncDesc{
	FirstValueFunctionName: {name: FirstValueFunctionName, first: true, retractable: true},
	LastValueFunctionName:  {name: LastValueFunctionName, first: false, retractable: true},
}

func LookupAggFunc(name string) (*AggFuncDesc, error) {
	desc, ok := aggFuncRegistry[name]
	if !ok {
		return nil, errors.NewTailstreamErrorf(errors.UnknownAggFunction, "unknown aggregate function '%s'", name)
	}
	return desc, nil
}

func (d *AggFuncDesc) Name() string {
	return d.name
}

func (d *AggFuncDesc) Retractable() bool {
	return d.retractable
}

// CreateStateMachine instantiates the function for the given value column
// type. withRetract selects the retractable flavour and fails with
// RetractNotSupported when the function has none.
func (d *AggFuncDesc) CreateStateMachine(ft types.ColumnType, withRetract bool) (AggStateMachine, error) {
	if withRetract && !d.retractable {
		return nil, errors.NewTailstreamErrorf(errors.RetractNotSupported,
			"aggregate function '%s' does not support retraction", d.name)
	}
	return CreateAggStateMachine(ft, d.first, withRetract)
}
