package workout

import (
	"encoding/json"
	"fmt"
)

// EncodeExercises serializes the log as a bare JSON array.
func EncodeExercises(exercises []Exercise) ([]byte, error) {
	if exercises == nil {
		exercises = []Exercise{}
	}
	data, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}
	return data, nil
}

func DecodeExercises(data []byte) ([]Exercise, error) {
	var exercises []Exercise
	if err := json.Unmarshal(data, &exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercises: %w", err)
	}
	if exercises == nil {
		// "null" blob
		exercises = []Exercise{}
	}
	return exercises, nil
}
