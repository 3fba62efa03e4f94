package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON decodes the JSON file at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// SaveJSON encodes v as indented JSON and writes it under the file lock.
func SaveJSON(ctx context.Context, path string, v any) error {
	data, err := encodeJSON(path, v)
	if err != nil {
		return err
	}
	return writeLocked(ctx, path, data)
}

// UpdateJSON decodes the file at path into v, calls fn and, when fn reports a
// change, writes v back. The file lock is held from the read to the write, so
// other writers cannot interleave. Nothing is written when fn fails.
func UpdateJSON(ctx context.Context, path string, v any, fn func() (bool, error)) error {
	return withLock(ctx, path, func() error {
		if err := LoadJSON(path, v); err != nil {
			return err
		}
		changed, err := fn()
		if err != nil || !changed {
			return err
		}
		data, err := encodeJSON(path, v)
		if err != nil {
			return err
		}
		return writeAtomic(path, data)
	})
}

func encodeJSON(path string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return append(data, '\n'), nil
}
