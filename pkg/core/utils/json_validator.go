package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Strategy names the parser that accepted a document in SmartParse.
type Strategy string

const (
	StrategyJSON     Strategy = "json"
	StrategyRepaired Strategy = "json_repair"
	StrategyHJSON    Strategy = "hjson"
)

// RepairJSON fixes hand-edited JSON: trailing commas, single quotes,
// unquoted keys, comments and unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// HJSONToJSON converts an Hjson document to standard JSON so that custom
// json.Unmarshaler implementations still apply when decoding it.
func HJSONToJSON(data []byte) ([]byte, error) {
	var tree interface{}
	if err := hjson.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return out, nil
}

// SmartParse decodes input into v, trying in order:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson (most lenient)
// The first error is reported when every strategy fails, since strict JSON
// gives the most precise position.
func SmartParse(input []byte, v interface{}) (Strategy, error) {
	strictErr := json.Unmarshal(input, v)
	if strictErr == nil {
		return StrategyJSON, nil
	}

	if repaired, err := RepairJSON(string(input)); err == nil {
		reset(v)
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return StrategyRepaired, nil
		}
	}

	if converted, err := HJSONToJSON(input); err == nil {
		reset(v)
		if err := json.Unmarshal(converted, v); err == nil {
			return StrategyHJSON, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: %v", strictErr)
}

// reset zeroes *v so a failed attempt leaves nothing behind for the next.
func reset(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
}
