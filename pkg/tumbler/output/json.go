// Package output serializes tumbler results and snapshots.
package output

import (
	"encoding/json"
	"fmt"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// ToJSON serializes a generation result.
func ToJSON(result *models.Result, pretty bool) ([]byte, error) {
	return marshal(result, pretty)
}

// FrameToJSON serializes the slots of a frame.
func FrameToJSON(frame *models.Frame, pretty bool) ([]byte, error) {
	return marshal(frame, pretty)
}

// EmbedToJSON serializes an embed URL and snippet.
func EmbedToJSON(embed *models.Embed, pretty bool) ([]byte, error) {
	return marshal(embed, pretty)
}

// SnapshotToJSON serializes a history snapshot.
func SnapshotToJSON(snap *models.Snapshot, pretty bool) ([]byte, error) {
	return marshal(snap, pretty)
}

// ParseSnapshot decodes a snapshot written by SnapshotToJSON.
func ParseSnapshot(data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version == 0 {
		return nil, fmt.Errorf("decode snapshot: missing version")
	}
	return &snap, nil
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
