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

package opers

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tailstream-io/tailstream/aggs"
	"github.com/tailstream-io/tailstream/common"
	"github.com/tailstream-io/tailstream/encoding"
	"github.com/tailstream-io/tailstream/errors"
	"github.com/tailstream-io/tailstream/evbatch"
	log "github.com/tailstream-io/tailstream/logger"
	"github.com/tailstream-io/tailstream/types"
)

const defaultStateCacheSize = 1024

// FirstLastOperatorConfig describes how a first/last value aggregation maps
// onto the columns of the input batches. OrderColIndex and RetractColIndex are
// -1 when the stream carries no order key or retraction flag.
type FirstLastOperatorConfig struct {
	FuncName        string
	InSchema        *evbatch.EventSchema
	KeyColIndexes   []int
	ValueColIndex   int
	OrderColIndex   int
	RetractColIndex int
	SlabID          uint64
	StateCacheSize  int
}

// FirstLastOperator applies batches of observations to per group accumulators
// and emits one result row per group touched by the batch. Accumulator state
// lives serialized in a StateStore, with an LRU cache over the decoded state
// machines. Instances are not safe for concurrent use.
type FirstLastOperator struct {
	id           uuid.UUID
	cfg          FirstLastOperatorConfig
	desc         *aggs.AggFuncDesc
	withRetract  bool
	keyColTypes  []types.ColumnType
	valueColType types.ColumnType
	outSchema    *evbatch.EventSchema
	keyPrefix    []byte
	store        StateStore
	cache        *lru.Cache
}

func NewFirstLastOperator(cfg FirstLastOperatorConfig, store StateStore) (*FirstLastOperator, error) {
	desc, err := aggs.LookupAggFunc(cfg.FuncName)
	if err != nil {
		return nil, err
	}
	inTypes := cfg.InSchema.ColumnTypes()
	inNames := cfg.InSchema.ColumnNames()
	numCols := len(inTypes)
	used := make(map[int]bool)
	checkIndex := func(index int, what string) error {
		if index < 0 || index >= numCols {
			return errors.NewInvalidConfigurationError(fmt.Sprintf("%s column index %d out of range", what, index))
		}
		if used[index] {
			return errors.NewInvalidConfigurationError(fmt.Sprintf("%s column index %d used more than once", what, index))
		}
		used[index] = true
		return nil
	}
	for _, keyIndex := range cfg.KeyColIndexes {
		if err := checkIndex(keyIndex, "key"); err != nil {
			return nil, err
		}
	}
	if err := checkIndex(cfg.ValueColIndex, "value"); err != nil {
		return nil, err
	}
	if cfg.OrderColIndex != -1 {
		if err := checkIndex(cfg.OrderColIndex, "order"); err != nil {
			return nil, err
		}
		orderType := inTypes[cfg.OrderColIndex]
		if orderType.ID() != types.ColumnTypeIDInt && orderType.ID() != types.ColumnTypeIDTimestamp {
			return nil, errors.NewInvalidConfigurationError(fmt.Sprintf("order column must be of type int or timestamp, got %s",
				orderType.String()))
		}
	}
	withRetract := cfg.RetractColIndex != -1
	if withRetract {
		if err := checkIndex(cfg.RetractColIndex, "retract"); err != nil {
			return nil, err
		}
		if inTypes[cfg.RetractColIndex].ID() != types.ColumnTypeIDBool {
			return nil, errors.NewInvalidConfigurationError(fmt.Sprintf("retract column must be of type bool, got %s",
				inTypes[cfg.RetractColIndex].String()))
		}
		if !desc.Retractable() {
			return nil, errors.NewTailstreamErrorf(errors.RetractNotSupported,
				"aggregate function '%s' does not support retraction", cfg.FuncName)
		}
	}
	valueColType := inTypes[cfg.ValueColIndex]
	// probe the value type is supported before any batches arrive
	if _, err := desc.CreateStateMachine(valueColType, withRetract); err != nil {
		return nil, err
	}
	keyColTypes := make([]types.ColumnType, len(cfg.KeyColIndexes))
	outNames := make([]string, len(cfg.KeyColIndexes)+1)
	outTypes := make([]types.ColumnType, len(cfg.KeyColIndexes)+1)
	for i, keyIndex := range cfg.KeyColIndexes {
		keyColTypes[i] = inTypes[keyIndex]
		outNames[i] = inNames[keyIndex]
		outTypes[i] = inTypes[keyIndex]
	}
	outNames[len(outNames)-1] = fmt.Sprintf("%s(%s)", cfg.FuncName, inNames[cfg.ValueColIndex])
	outTypes[len(outTypes)-1] = valueColType
	cacheSize := cfg.StateCacheSize
	if cacheSize == 0 {
		cacheSize = defaultStateCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	id := uuid.New()
	oper := &FirstLastOperator{
		id:           id,
		cfg:          cfg,
		desc:         desc,
		withRetract:  withRetract,
		keyColTypes:  keyColTypes,
		valueColType: valueColType,
		outSchema:    evbatch.NewEventSchema(outNames, outTypes),
		keyPrefix:    encoding.EncodeEntryPrefix(id[:], cfg.SlabID, 64),
		store:        store,
		cache:        cache,
	}
	log.Debugf("created %s operator %s slab id %d out schema [%s]", cfg.FuncName, id.String(), cfg.SlabID,
		types.ColumnTypesToString(outTypes))
	return oper, nil
}

func (f *FirstLastOperator) OutSchema() *evbatch.EventSchema {
	return f.outSchema
}

type pendingGroup struct {
	keyBytes []byte
	firstRow int
	rows     []int
}

// HandleStreamBatch applies the batch to the per group accumulators and
// returns one result row per touched group, in first touched order.
func (f *FirstLastOperator) HandleStreamBatch(batch *evbatch.Batch) (*evbatch.Batch, error) {
	groups, groupOrder, err := f.groupRows(batch)
	if err != nil {
		return nil, err
	}
	outBuilders := evbatch.CreateColBuilders(f.outSchema.ColumnTypes())
	for _, sKey := range groupOrder {
		group := groups[sKey]
		sm, err := f.loadStateMachine(sKey, group.keyBytes)
		if err != nil {
			return nil, err
		}
		for _, row := range group.rows {
			if err := f.applyRow(sm, batch, row); err != nil {
				return nil, err
			}
		}
		if err := f.storeStateMachine(sKey, group.keyBytes, sm); err != nil {
			return nil, err
		}
		for i, keyIndex := range f.cfg.KeyColIndexes {
			evbatch.CopyColumnEntryWithCol(f.keyColTypes[i], batch.Columns[keyIndex], outBuilders[i], group.firstRow)
		}
		evbatch.AppendAny(f.valueColType, outBuilders[len(outBuilders)-1], sm.GetValue())
	}
	return evbatch.NewBatchFromBuilders(f.outSchema, outBuilders...), nil
}

func (f *FirstLastOperator) groupRows(batch *evbatch.Batch) (map[string]*pendingGroup, []string, error) {
	inTypes := f.cfg.InSchema.ColumnTypes()
	groups := map[string]*pendingGroup{}
	var groupOrder []string
	keyVals := make([]any, len(f.cfg.KeyColIndexes))
	for row := 0; row < batch.RowCount; row++ {
		for i, keyIndex := range f.cfg.KeyColIndexes {
			keyVals[i] = evbatch.GetAny(inTypes[keyIndex], batch.Columns[keyIndex], row)
		}
		keyBytes := make([]byte, len(f.keyPrefix), 64)
		copy(keyBytes, f.keyPrefix)
		keyBytes, err := encoding.EncodeKeyCols(keyBytes, keyVals, f.keyColTypes)
		if err != nil {
			return nil, nil, err
		}
		sKey := common.ByteSliceToStringZeroCopy(keyBytes)
		group, ok := groups[sKey]
		if !ok {
			group = &pendingGroup{
				keyBytes: keyBytes,
				firstRow: row,
			}
			groups[sKey] = group
			groupOrder = append(groupOrder, sKey)
		}
		group.rows = append(group.rows, row)
	}
	return groups, groupOrder, nil
}

func (f *FirstLastOperator) applyRow(sm aggs.AggStateMachine, batch *evbatch.Batch, row int) error {
	inTypes := f.cfg.InSchema.ColumnTypes()
	val := evbatch.GetAny(f.valueColType, batch.Columns[f.cfg.ValueColIndex], row)
	retraction := false
	if f.withRetract {
		retractCol := batch.GetBoolColumn(f.cfg.RetractColIndex)
		retraction = !retractCol.IsNull(row) && retractCol.Get(row)
	}
	if f.cfg.OrderColIndex == -1 {
		if retraction {
			return sm.Retract(val)
		}
		return sm.Accumulate(val)
	}
	var orderKey int64
	orderNull := true
	orderCol := batch.Columns[f.cfg.OrderColIndex]
	if !orderCol.IsNull(row) {
		orderNull = false
		if inTypes[f.cfg.OrderColIndex].ID() == types.ColumnTypeIDTimestamp {
			orderKey = orderCol.(*evbatch.TimestampColumn).Get(row).Val
		} else {
			orderKey = orderCol.(*evbatch.IntColumn).Get(row)
		}
	}
	if retraction {
		return sm.RetractWithOrder(val, orderKey, orderNull)
	}
	return sm.AccumulateWithOrder(val, orderKey, orderNull)
}

func (f *FirstLastOperator) loadStateMachine(sKey string, keyBytes []byte) (aggs.AggStateMachine, error) {
	cached, ok := f.cache.Get(sKey)
	if ok {
		return cached.(aggs.AggStateMachine), nil
	}
	sm, err := f.desc.CreateStateMachine(f.valueColType, f.withRetract)
	if err != nil {
		return nil, err
	}
	stored, err := f.store.Get(keyBytes)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		offset := sm.Deserialize(stored, 0)
		if offset != len(stored) {
			return nil, errors.NewInternalError(fmt.Sprintf("corrupt state for key %x: %d trailing bytes", keyBytes, len(stored)-offset))
		}
		if log.DebugEnabled {
			log.Debugf("operator %s loaded state for key %x from store", f.id.String(), keyBytes)
		}
	}
	return sm, nil
}

func (f *FirstLastOperator) storeStateMachine(sKey string, keyBytes []byte, sm aggs.AggStateMachine) error {
	if err := f.store.Put(keyBytes, sm.Serialize(nil)); err != nil {
		return err
	}
	f.cache.Add(sKey, sm)
	return nil
}
