package idgen

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/sonyflake"
)

// SonyflakeGenerator generates ids using sonyflake.
// Ids are time ordered, which keeps message primary keys monotonic.
type SonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// NewSonyflakeGenerator creates a new SonyflakeGenerator
func NewSonyflakeGenerator(machineID uint16) (*SonyflakeGenerator, error) {
	st := sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) {
			return machineID, nil
		},
	}

	sf, err := sonyflake.New(st)
	if err != nil {
		return nil, fmt.Errorf("failed to create sonyflake: %w", err)
	}

	return &SonyflakeGenerator{sf: sf}, nil
}

// NextID generates a new unique ID
func (g *SonyflakeGenerator) NextID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return strconv.FormatUint(id, 10), nil
}

// Global default generator
var (
	defaultGenerator *SonyflakeGenerator
	once             sync.Once
	initErr          error
)

// NextID generates a new ID using the default generator, a
// SonyflakeGenerator with machineID 1
func NextID() (string, error) {
	once.Do(func() {
		defaultGenerator, initErr = NewSonyflakeGenerator(1)
	})
	if initErr != nil {
		return "", initErr
	}
	return defaultGenerator.NextID()
}

// NewUUID returns a random UUID string for rows keyed by uuid
func NewUUID() string {
	return uuid.NewString()
}
