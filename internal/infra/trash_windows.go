package infra

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

var (
	modShell32           = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW = modShell32.NewProc("SHFileOperationW")
)

const (
	foDelete          = 0x0003
	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoErrorUI      = 0x0400
)

// shFileOpStruct mirrors SHFILEOPSTRUCTW with 64-bit natural alignment.
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

// TrashStrategy sends files to the Recycle Bin through the Shell API.
type TrashStrategy struct {
	logger *zap.Logger
}

// NewTrashStrategy creates the Recycle Bin strategy. home is unused on Windows.
func NewTrashStrategy(home string, logger *zap.Logger) *TrashStrategy {
	return &TrashStrategy{logger: logger}
}

func (t *TrashStrategy) Mode() domain.DisposalMode {
	return domain.DisposalTrash
}

// Dispose moves path to the Recycle Bin without UI. A nonzero result or an
// aborted operation is an error.
func (t *TrashStrategy) Dispose(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// pFrom is a double-NUL terminated list.
	from, err := windows.UTF16FromString(abs)
	if err != nil {
		return err
	}
	from = append(from, 0)

	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  &from[0],
		fFlags: fofAllowUndo | fofNoConfirmation | fofSilent | fofNoErrorUI,
	}
	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return fmt.Errorf("SHFileOperationW failed for %s: code 0x%x", abs, uint32(ret))
	}
	if op.fAnyOperationsAborted != 0 {
		return fmt.Errorf("recycle of %s was aborted", abs)
	}
	t.logger.Debug("moved to recycle bin", zap.String("path", abs))
	return nil
}

// Ensure TrashStrategy implements domain.DisposalStrategy.
var _ domain.DisposalStrategy = (*TrashStrategy)(nil)
