package encoding

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rjfmedia/lempicka-sync/pkg/filesystem"
	"github.com/rjfmedia/lempicka-sync/pkg/logging"
)

// LoadAndUnmarshal reads the data at the specified path and then invokes the
// specified unmarshaling callback (usually a closure) to decode it. A
// non-existent path is returned unwrapped so that callers can test it with
// os.IsNotExist.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("unable to load file: %w", err)
	}

	if err := unmarshal(data); err != nil {
		return fmt.Errorf("unable to unmarshal data: %w", err)
	}

	return nil
}

// MarshalAndSave invokes the specified marshaling callback and writes the
// result atomically to the specified path, creating parent directories as
// needed. The data is saved with read/write permissions for the user only.
func MarshalAndSave(path string, logger *logging.Logger, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return fmt.Errorf("unable to marshal message: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("unable to create parent directory: %w", err)
	}

	if err := filesystem.WriteFileAtomic(path, data, 0600, logger); err != nil {
		return fmt.Errorf("unable to write message data: %w", err)
	}

	return nil
}
