package store

import (
	"encoding/json"
	"fmt"

	"github.com/zhanong/ecsframework/internal/trace"
)

// marshalDetail encodes event detail as canonical JSON. Nil detail is "{}".
func marshalDetail(detail map[string]string) (string, error) {
	if detail == nil {
		return "{}", nil
	}
	b, err := trace.MarshalCanonical(detail)
	if err != nil {
		return "", fmt.Errorf("marshal detail: %w", err)
	}
	return string(b), nil
}

// unmarshalDetail decodes a detail column. "{}" reads back as nil so events
// round-trip unchanged.
func unmarshalDetail(s string) (map[string]string, error) {
	var detail map[string]string
	if err := json.Unmarshal([]byte(s), &detail); err != nil {
		return nil, fmt.Errorf("unmarshal detail: %w", err)
	}
	if len(detail) == 0 {
		return nil, nil
	}
	return detail, nil
}
