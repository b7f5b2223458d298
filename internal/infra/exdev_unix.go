//go:build unix

package infra

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isEXDEV(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
