package eventbus

import (
	"fmt"

	"youth-press/config"
)

const (
	DriverKafka  = "kafka"
	DriverMemory = "memory"
)

// New builds the bus selected by cfg.Driver. The memory bus only reaches
// subscribers in the same process.
func New(cfg config.EventBusConfig) (EventBus, error) {
	switch cfg.Driver {
	case DriverKafka:
		if cfg.Brokers == "" {
			return nil, fmt.Errorf("eventbus.brokers (KAFKA_BROKERS) is required for the kafka driver")
		}
		return NewKafkaEventBus(cfg.Brokers)
	case DriverMemory, "":
		return NewMemoryEventBus(), nil
	}
	return nil, fmt.Errorf("unknown eventbus driver: %s", cfg.Driver)
}
