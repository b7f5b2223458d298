package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// UUIDGenerator produces random session IDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

var (
	_ domain.Clock       = RealClock{}
	_ domain.IDGenerator = UUIDGenerator{}
)
