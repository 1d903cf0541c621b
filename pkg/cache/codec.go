package cache

import (
	"encoding/json"
	"errors"
	"fmt"
)

// formatVersion is the current on-wire entry format. It is the first byte
// of every stored value so the encoding can evolve without misreading old
// or foreign data as an entry.
const formatVersion byte = 1

var (
	// ErrUnknownVersion indicates the stored value carries a format
	// version this build does not understand.
	ErrUnknownVersion = errors.New("unknown cache entry format version")

	// ErrCorruptEntry indicates the stored value could not be decoded.
	ErrCorruptEntry = errors.New("corrupt cache entry")
)

// Encode serializes an entry into its storable byte representation:
// a one-byte format version tag followed by a JSON payload. Body bytes
// are base64-encoded inside the JSON, so arbitrary binary survives.
func Encode(entry *Entry) ([]byte, error) {
	if entry == nil {
		return nil, fmt.Errorf("cache entry cannot be nil")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}

	data := make([]byte, 0, len(payload)+1)
	data = append(data, formatVersion)
	data = append(data, payload...)
	return data, nil
}

// Decode deserializes a stored value back into an entry.
// Empty data, an unknown version tag, or an unreadable payload all return
// a decode error; callers treat any of these as a cache miss.
func Decode(data []byte) (*Entry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrCorruptEntry)
	}
	if data[0] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, data[0])
	}

	var entry Entry
	if err := json.Unmarshal(data[1:], &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return &entry, nil
}
