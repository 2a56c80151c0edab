package filesystem

import (
	"fmt"
	"io"
	"os"
)

// Rename renames oldpath to newpath. If the underlying os.Rename fails
// because oldpath and newpath reside on different devices, Rename falls back
// to copying the contents of oldpath to newpath (creating newpath with
// oldpath's permissions if it doesn't already exist) and then removing
// oldpath. This
// fallback is not itself atomic, but the os.Rename fast path used on a single
// device always is, which covers the case that matters for journal and
// backup file swaps performed within a single target directory.
func Rename(oldpath, newpath string) error {
	if err := os.Rename(oldpath, newpath); err == nil {
		return nil
	} else if !isCrossDeviceError(err) {
		return err
	}

	info, err := os.Stat(oldpath)
	if err != nil {
		return fmt.Errorf("unable to stat source file: %w", err)
	}

	source, err := os.Open(oldpath)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer source.Close()

	destination, err := os.OpenFile(newpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}

	if _, err = io.Copy(destination, source); err != nil {
		destination.Close()
		os.Remove(newpath)
		return fmt.Errorf("unable to copy file contents across devices: %w", err)
	}

	if err = destination.Sync(); err != nil {
		destination.Close()
		os.Remove(newpath)
		return fmt.Errorf("unable to flush destination file: %w", err)
	}

	if err = destination.Close(); err != nil {
		os.Remove(newpath)
		return fmt.Errorf("unable to close destination file: %w", err)
	}

	if err = os.Remove(oldpath); err != nil {
		return fmt.Errorf("unable to remove source file after cross-device copy: %w", err)
	}

	return nil
}
