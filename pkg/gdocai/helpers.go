package gdocai

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON renders a protocol buffer message with protojson and anything else
// with encoding/json, indented for debug dumps.
func ToJSON(data any) (string, error) {
	if msg, ok := data.(proto.Message); ok {
		out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
		if err != nil {
			return "", fmt.Errorf("failed to marshal proto: %w", err)
		}
		return string(out), nil
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(out), nil
}
