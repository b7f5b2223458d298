package infra

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// PermanentStrategy unlinks files.
type PermanentStrategy struct{}

// NewPermanentStrategy creates the irreversible disposal strategy.
func NewPermanentStrategy() *PermanentStrategy {
	return &PermanentStrategy{}
}

func (p *PermanentStrategy) Mode() domain.DisposalMode {
	return domain.DisposalPermanent
}

// Dispose removes a single file or empty directory. It never recurses.
func (p *PermanentStrategy) Dispose(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// NewDisposalStrategies returns the trash and permanent strategies for this OS.
func NewDisposalStrategies(home string, logger *zap.Logger) []domain.DisposalStrategy {
	return []domain.DisposalStrategy{
		NewTrashStrategy(home, logger),
		NewPermanentStrategy(),
	}
}

// Ensure PermanentStrategy implements domain.DisposalStrategy.
var _ domain.DisposalStrategy = (*PermanentStrategy)(nil)
