package kafka

import "fmt"

// ConsumerFactory builds a configured consumer driver.
type ConsumerFactory func(Config) (Consumer, error)

// ProducerFactory builds a configured producer driver.
type ProducerFactory func(Config) (Producer, error)

var (
	consumers = map[string]ConsumerFactory{}
	producers = map[string]ProducerFactory{}
)

// RegisterConsumer is called from each driver's init() or from main().
func RegisterConsumer(name string, f ConsumerFactory) { consumers[name] = f }

func RegisterProducer(name string, f ProducerFactory) { producers[name] = f }

// NewConsumer returns a consumer built by the named driver ("sarama", ...).
func NewConsumer(name string, cfg Config) (Consumer, error) {
	if f, ok := consumers[name]; ok {
		return f(cfg)
	}
	return nil, fmt.Errorf("kafka: unsupported driver %q", name)
}

func NewProducer(name string, cfg Config) (Producer, error) {
	if f, ok := producers[name]; ok {
		return f(cfg)
	}
	return nil, fmt.Errorf("kafka: unsupported driver %q", name)
}
