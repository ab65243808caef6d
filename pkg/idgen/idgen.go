package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/sonyflake"
)

// Supported generator kinds
const (
	KindSonyflake = "sonyflake"
	KindUUID      = "uuid"
)

// IDGenerator is the interface for generating unique IDs
type IDGenerator interface {
	// NextID generates a new unique ID
	NextID() (string, error)
}

// SonyflakeGenerator implements IDGenerator using sonyflake
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

// NextID generates a new unique ID.
// Ids are zero-padded to a fixed width so string order follows generation order.
func (g *SonyflakeGenerator) NextID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return fmt.Sprintf("%020d", id), nil
}

// UUIDGenerator implements IDGenerator using random UUIDs
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NextID generates a new UUID v4
func (g *UUIDGenerator) NextID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return id.String(), nil
}

// Global default generator
var (
	mu               sync.Mutex
	defaultGenerator IDGenerator
)

// SetDefaultGenerator sets the default ID generator
func SetDefaultGenerator(gen IDGenerator) {
	mu.Lock()
	defer mu.Unlock()
	defaultGenerator = gen
}

// New creates a generator of the given kind. machineID only applies to sonyflake.
func New(kind string, machineID uint16) (IDGenerator, error) {
	switch kind {
	case KindSonyflake, "":
		return NewSonyflakeGenerator(machineID)
	case KindUUID:
		return NewUUIDGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported id generator: %s", kind)
	}
}

// Init installs a generator of the given kind as the default
func Init(kind string, machineID uint16) error {
	gen, err := New(kind, machineID)
	if err != nil {
		return err
	}
	SetDefaultGenerator(gen)
	return nil
}

// GetDefaultGenerator returns the default ID generator
// If not set, creates a SonyflakeGenerator with machineID 1
func GetDefaultGenerator() (IDGenerator, error) {
	mu.Lock()
	defer mu.Unlock()
	if defaultGenerator == nil {
		gen, err := NewSonyflakeGenerator(1)
		if err != nil {
			return nil, err
		}
		defaultGenerator = gen
	}
	return defaultGenerator, nil
}

// NextID generates a new ID using the default generator
func NextID() (string, error) {
	gen, err := GetDefaultGenerator()
	if err != nil {
		return "", err
	}
	return gen.NextID()
}
