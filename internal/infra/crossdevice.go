package infra

import (
	"errors"
	"fmt"
	"os"
)

// renameFunc is swapped in tests to simulate cross-device failures.
var renameFunc = os.Rename

// CrossDeviceError reports a trash move that would cross a filesystem boundary.
// The move is never emulated with copy and delete.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cannot move %q to %q across filesystems: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice reports whether err is a CrossDeviceError.
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// moveFile renames src to dst, tagging EXDEV failures as CrossDeviceError.
func moveFile(src, dst string) error {
	if err := renameFunc(src, dst); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}
