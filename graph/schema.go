package graph

import (
	"fmt"
	"maps"
	"reflect"
)

// Reducer defines how a state value is updated. It takes the current value
// and the incoming value and returns the merged value. Reducers used under
// parallel fan-out must not depend on the order of incoming updates.
type Reducer func(current, incoming any) (any, error)

// StateSchema defines the structure and update logic for the graph state.
type StateSchema[S any] interface {
	// Init returns the initial state.
	Init() S

	// Update merges the incoming partial state into the current state.
	Update(current, incoming S) (S, error)
}

// MapSchema implements StateSchema for map[string]any states. Keys without a
// registered reducer are overwritten (last write wins).
type MapSchema struct {
	Reducers map[string]Reducer
}

// NewMapSchema creates a new MapSchema.
func NewMapSchema() *MapSchema {
	return &MapSchema{
		Reducers: make(map[string]Reducer),
	}
}

// RegisterReducer adds a reducer for a specific key.
func (s *MapSchema) RegisterReducer(key string, reducer Reducer) {
	s.Reducers[key] = reducer
}

// Init returns an empty map.
func (s *MapSchema) Init() map[string]any {
	return make(map[string]any)
}

// Update merges the incoming map into the current map using registered
// reducers. The current map is not mutated.
func (s *MapSchema) Update(current, incoming map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(current)+len(incoming))
	maps.Copy(result, current)

	for k, v := range incoming {
		if reducer, ok := s.Reducers[k]; ok {
			mergedVal, err := reducer(result[k], v)
			if err != nil {
				return nil, fmt.Errorf("failed to reduce key %s: %w", k, err)
			}
			result[k] = mergedVal
		} else {
			result[k] = v
		}
	}

	return result, nil
}

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(current, incoming any) (any, error) {
	return incoming, nil
}

// AppendReducer appends the incoming value to the current slice. It supports
// appending a slice to a slice, or a single element to a slice.
func AppendReducer(current, incoming any) (any, error) {
	if incoming == nil {
		return current, nil
	}
	if current == nil {
		newVal := reflect.ValueOf(incoming)
		if newVal.Kind() == reflect.Slice {
			return incoming, nil
		}
		sliceType := reflect.SliceOf(reflect.TypeOf(incoming))
		slice := reflect.MakeSlice(sliceType, 0, 1)
		slice = reflect.Append(slice, newVal)
		return slice.Interface(), nil
	}

	currVal := reflect.ValueOf(current)
	newVal := reflect.ValueOf(incoming)

	if currVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("current value is not a slice")
	}

	if newVal.Kind() == reflect.Slice {
		if currVal.Type().Elem() != newVal.Type().Elem() {
			// Element types differ, fall back to []any
			result := make([]any, 0, currVal.Len()+newVal.Len())
			for i := 0; i < currVal.Len(); i++ {
				result = append(result, currVal.Index(i).Interface())
			}
			for i := 0; i < newVal.Len(); i++ {
				result = append(result, newVal.Index(i).Interface())
			}
			return result, nil
		}
		return reflect.AppendSlice(currVal, newVal).Interface(), nil
	}

	return reflect.Append(currVal, newVal).Interface(), nil
}
