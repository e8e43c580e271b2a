package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kafkatap/internal/logging"
	"kafkatap/internal/telemetry"
	"kafkatap/record"

	"github.com/IBM/sarama"
)

func init() {
	RegisterConsumer("sarama", NewSaramaConsumer)
	RegisterProducer("sarama", NewSaramaProducer)
}

// saramaConfig translates the driver-neutral Config into sarama's native
// configuration.
func saramaConfig(cfg Config) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	if cfg.Version != "" {
		ver, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, err
		}
		sc.Version = ver
	}
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	sc.Consumer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	return sc, nil
}

func initialOffset(cfg Config) int64 {
	if cfg.StartFrom == "oldest" {
		return sarama.OffsetOldest
	}
	return sarama.OffsetNewest
}

// SaramaConsumer adapts sarama's channel-driven partition consumers into
// the blocking poll shape the stream core expects. Partition consumers fan
// into one buffered channel; Poll drains it under a timeout.
type SaramaConsumer struct {
	cfg  Config
	cl   sarama.Client
	cons sarama.Consumer

	mu     sync.Mutex
	topics []string
	parts  []sarama.PartitionConsumer
	done   chan struct{}
	fwd    sync.WaitGroup

	msgs chan *sarama.ConsumerMessage
	errs chan error
}

func NewSaramaConsumer(cfg Config) (Consumer, error) {
	sc, err := saramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	cl, err := sarama.NewClient(cfg.Brokers, sc)
	if err != nil {
		return nil, err
	}
	cons, err := sarama.NewConsumerFromClient(cl)
	if err != nil {
		_ = cl.Close()
		return nil, err
	}
	return &SaramaConsumer{
		cfg:  cfg,
		cl:   cl,
		cons: cons,
		msgs: make(chan *sarama.ConsumerMessage, cfg.ChannelBuffer),
		errs: make(chan error, 1),
	}, nil
}

func (c *SaramaConsumer) Subscribe(topics ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = topics
	return c.openLocked(initialOffset(c.cfg))
}

func (c *SaramaConsumer) SeekToEnd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.topics) == 0 {
		return fmt.Errorf("kafka: seek before subscribe")
	}
	// tear down and wait for the forwarders before draining: a goroutine
	// already committed to its send could otherwise slip a pre-seek record
	// past the drain
	c.closePartsLocked()
	c.fwd.Wait()
	c.drainBuffered()
	return c.openLocked(sarama.OffsetNewest)
}

// openLocked (re)creates one partition consumer per assigned partition at
// the given offset and starts the fan-in goroutines. Must hold c.mu.
func (c *SaramaConsumer) openLocked(offset int64) error {
	c.closePartsLocked()
	c.done = make(chan struct{})
	for _, topic := range c.topics {
		parts, err := c.cons.Partitions(topic)
		if err != nil {
			return err
		}
		for _, part := range parts {
			pc, err := c.cons.ConsumePartition(topic, part, offset)
			if err != nil {
				return err
			}
			c.parts = append(c.parts, pc)
			c.fwd.Add(1)
			go c.forward(pc, c.done)
		}
	}
	logging.Component("sarama-consumer").Debug("partitions opened",
		"topics", c.topics, "partitions", len(c.parts))
	return nil
}

func (c *SaramaConsumer) forward(pc sarama.PartitionConsumer, done chan struct{}) {
	defer c.fwd.Done()
	for {
		select {
		case m, ok := <-pc.Messages():
			if !ok {
				return
			}
			select {
			case c.msgs <- m:
			case <-done:
				return
			}
		case cerr, ok := <-pc.Errors():
			if !ok {
				return
			}
			select {
			case c.errs <- cerr:
			default:
				logging.Component("sarama-consumer").Warn("dropping consumer error",
					"err", cerr)
			}
		case <-done:
			return
		}
	}
}

// Poll blocks up to timeout for at least one record, then drains whatever
// else is already buffered, capped by MaxPollRecords. A zero timeout never
// blocks; it only drains, which is how a seek is flushed.
func (c *SaramaConsumer) Poll(ctx context.Context, timeout time.Duration) ([]record.Record, error) {
	telemetry.Polls.Inc()

	var batch []record.Record
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case m := <-c.msgs:
			batch = append(batch, fromMessage(m))
		case err := <-c.errs:
			return nil, err
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	for len(batch) < c.cfg.MaxPollRecords {
		select {
		case m := <-c.msgs:
			batch = append(batch, fromMessage(m))
		case err := <-c.errs:
			return nil, err
		default:
			if len(batch) == 0 {
				telemetry.EmptyPolls.Inc()
			} else {
				telemetry.Records.Add(float64(len(batch)))
			}
			return batch, nil
		}
	}
	telemetry.Records.Add(float64(len(batch)))
	return batch, nil
}

func (c *SaramaConsumer) Close() error {
	c.mu.Lock()
	c.closePartsLocked()
	c.fwd.Wait()
	c.mu.Unlock()
	_ = c.cons.Close()
	return c.cl.Close()
}

// closePartsLocked tears down existing partition consumers and their
// fan-in goroutines. Must hold c.mu.
func (c *SaramaConsumer) closePartsLocked() {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	for _, pc := range c.parts {
		_ = pc.Close()
	}
	c.parts = nil
}

func (c *SaramaConsumer) drainBuffered() {
	for {
		select {
		case <-c.msgs:
		default:
			return
		}
	}
}

// fromMessage is the explicit projection from sarama's native message into
// the plain record shape: the known fields, nothing reflective.
func fromMessage(m *sarama.ConsumerMessage) record.Record {
	return record.Record{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   toHeaderMap(m.Headers),
		Timestamp: m.Timestamp,
	}
}

func toHeaderMap(src []*sarama.RecordHeader) map[string][]byte {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(src))
	for _, h := range src {
		out[string(h.Key)] = h.Value
	}
	return out
}
