package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/tailstream-io/tailstream/errors"
	"github.com/tailstream-io/tailstream/evbatch"
	log "github.com/tailstream-io/tailstream/logger"
	"github.com/tailstream-io/tailstream/opers"
	"github.com/tailstream-io/tailstream/types"
	"github.com/tidwall/gjson"
)

type arguments struct {
	Input        string     `help:"Path to a JSON lines input file" type:"existingfile" required:""`
	Function     string     `help:"Aggregate function to apply" enum:"first_value,last_value" default:"first_value"`
	KeyFields    []string   `help:"JSON fields forming the group key" default:"key"`
	ValueField   string     `help:"JSON field holding the aggregated value" default:"value"`
	ValueType    string     `help:"Type of the aggregated value, e.g. int, string or decimal(38,6)" default:"string"`
	OrderField   string     `help:"JSON field holding the numeric order key, empty to use arrival order"`
	RetractField string     `help:"JSON field holding the retraction flag, empty to disable retraction"`
	BatchSize    int        `help:"Number of input lines per processed batch" default:"1024"`
	Log          log.Config `help:"Configuration for the logger" embed:"" prefix:"log-"`
}

type runner struct {
	args arguments
}

func (r *runner) loadConfig(args []string) error {
	parser, err := kong.New(&r.args)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := parser.Parse(args); err != nil {
		return errors.WithStack(err)
	}
	return r.args.Log.Configure()
}

// run streams the input file through a first/last operator in batches,
// printing the updated result row for every group a batch touches.
func (r *runner) run(out io.Writer) error {
	valueType, err := types.StringToColumnType(r.args.ValueType)
	if err != nil {
		return err
	}
	schema, cfg := r.buildOperatorConfig(valueType)
	oper, err := opers.NewFirstLastOperator(cfg, opers.NewMemStateStore())
	if err != nil {
		return err
	}

	file, err := os.Open(r.args.Input)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Warnf("failed to close input file: %v", err)
		}
	}()

	scanner := bufio.NewScanner(file)
	builders := evbatch.CreateColBuilders(schema.ColumnTypes())
	rows := 0
	flush := func() error {
		if rows == 0 {
			return nil
		}
		batch := evbatch.NewBatchFromBuilders(schema, builders...)
		outBatch, err := oper.HandleStreamBatch(batch)
		if err != nil {
			return err
		}
		r.printBatch(out, oper.OutSchema(), outBatch)
		builders = evbatch.CreateColBuilders(schema.ColumnTypes())
		rows = 0
		return nil
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return errors.Errorf("invalid JSON line: %s", line)
		}
		if err := r.appendLine(line, schema, builders); err != nil {
			return err
		}
		rows++
		if rows == r.args.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WithStack(err)
	}
	return flush()
}

func (r *runner) buildOperatorConfig(valueType types.ColumnType) (*evbatch.EventSchema, opers.FirstLastOperatorConfig) {
	var colNames []string
	var colTypes []types.ColumnType
	var keyIndexes []int
	for _, keyField := range r.args.KeyFields {
		keyIndexes = append(keyIndexes, len(colNames))
		colNames = append(colNames, keyField)
		colTypes = append(colTypes, types.ColumnTypeString)
	}
	valueIndex := len(colNames)
	colNames = append(colNames, r.args.ValueField)
	colTypes = append(colTypes, valueType)
	orderIndex := -1
	if r.args.OrderField != "" {
		orderIndex = len(colNames)
		colNames = append(colNames, r.args.OrderField)
		colTypes = append(colTypes, types.ColumnTypeInt)
	}
	retractIndex := -1
	if r.args.RetractField != "" {
		retractIndex = len(colNames)
		colNames = append(colNames, r.args.RetractField)
		colTypes = append(colTypes, types.ColumnTypeBool)
	}
	schema := evbatch.NewEventSchema(colNames, colTypes)
	return schema, opers.FirstLastOperatorConfig{
		FuncName:        r.args.Function,
		InSchema:        schema,
		KeyColIndexes:   keyIndexes,
		ValueColIndex:   valueIndex,
		OrderColIndex:   orderIndex,
		RetractColIndex: retractIndex,
	}
}

func (r *runner) appendLine(line string, schema *evbatch.EventSchema, builders []evbatch.ColumnBuilder) error {
	colNames := schema.ColumnNames()
	colTypes := schema.ColumnTypes()
	for i, colName := range colNames {
		res := gjson.Get(line, colName)
		val, err := jsonToColumnValue(res, colTypes[i])
		if err != nil {
			return err
		}
		evbatch.AppendAny(colTypes[i], builders[i], val)
	}
	return nil
}

func jsonToColumnValue(res gjson.Result, ft types.ColumnType) (any, error) {
	if !res.Exists() || res.Type == gjson.Null {
		return nil, nil
	}
	switch ft.ID() {
	case types.ColumnTypeIDInt:
		return res.Int(), nil
	case types.ColumnTypeIDFloat:
		return res.Float(), nil
	case types.ColumnTypeIDBool:
		return res.Bool(), nil
	case types.ColumnTypeIDDecimal:
		decType := ft.(*types.DecimalType)
		if res.Type == gjson.Number {
			if !strings.ContainsAny(res.Raw, ".eE") {
				return types.NewDecimalFromInt64(res.Int(), decType.Precision, decType.Scale), nil
			}
			dec, err := types.NewDecimalFromFloat64(res.Float(), decType.Precision, decType.Scale)
			if err != nil {
				return nil, errors.Errorf("invalid decimal value '%s'", res.Raw)
			}
			return dec, nil
		}
		dec, err := types.NewDecimalFromString(res.String(), decType.Precision, decType.Scale)
		if err != nil {
			return nil, errors.Errorf("invalid decimal value '%s'", res.String())
		}
		return dec, nil
	case types.ColumnTypeIDString:
		return res.String(), nil
	case types.ColumnTypeIDBytes:
		return []byte(res.String()), nil
	case types.ColumnTypeIDTimestamp:
		return types.NewTimestamp(res.Int()), nil
	default:
		return nil, errors.Errorf("unsupported column type %s", ft.String())
	}
}

func (r *runner) printBatch(out io.Writer, schema *evbatch.EventSchema, batch *evbatch.Batch) {
	colTypes := schema.ColumnTypes()
	colNames := schema.ColumnNames()
	for row := 0; row < batch.RowCount; row++ {
		var sb strings.Builder
		for i, colName := range colNames {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(colName)
			sb.WriteString(": ")
			sb.WriteString(formatValue(evbatch.GetAny(colTypes[i], batch.Columns[i], row)))
		}
		fmt.Fprintln(out, sb.String())
	}
}

func formatValue(val any) string {
	if val == nil {
		return "null"
	}
	switch v := val.(type) {
	case types.Decimal:
		return v.String()
	case types.Timestamp:
		return fmt.Sprintf("%d", v.Val)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
