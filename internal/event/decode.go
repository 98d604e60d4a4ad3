package event

import "encoding/json"

// DecodePayload converts an event payload into T.
// In-process MemoryBus events already carry the typed struct; anything that went
// through serialization (dead-letter replay, external transports) is decoded via JSON.
func DecodePayload[T any](input interface{}) (T, error) {
	if v, ok := input.(T); ok {
		return v, nil
	}
	if v, ok := input.(*T); ok && v != nil {
		return *v, nil
	}
	var result T
	data, err := json.Marshal(input)
	if err != nil {
		return result, err
	}
	return result, json.Unmarshal(data, &result)
}
