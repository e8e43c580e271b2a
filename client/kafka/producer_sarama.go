package kafka

import (
	"context"
	"sync"

	"kafkatap/internal/telemetry"
	"kafkatap/record"

	"github.com/IBM/sarama"
)

// SaramaProducer wraps sarama's async producer. Sarama reports every
// message on exactly one of its Successes/Errors channels; the dispatch
// goroutines turn that into exactly one callback invocation per send.
type SaramaProducer struct {
	p  sarama.AsyncProducer
	wg sync.WaitGroup
}

// sendState rides in the native message's Metadata slot so the dispatchers
// can find the caller's callback on completion.
type sendState struct {
	cb record.Callback
}

func NewSaramaProducer(cfg Config) (Producer, error) {
	sc, err := saramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	p, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, err
	}
	return newSaramaProducer(p), nil
}

func newSaramaProducer(p sarama.AsyncProducer) *SaramaProducer {
	sp := &SaramaProducer{p: p}
	sp.wg.Add(2)
	go sp.dispatchSuccesses()
	go sp.dispatchErrors()
	return sp
}

// SendAsync fires the underlying asynchronous send. Send failures are
// surfaced only through the callback's error argument; the returned error
// covers enqueueing alone. A nil cb is allowed for fire-and-forget.
func (sp *SaramaProducer) SendAsync(ctx context.Context, rec record.Record, cb record.Callback) error {
	msg := &sarama.ProducerMessage{
		Topic:    rec.Topic,
		Value:    sarama.ByteEncoder(rec.Value),
		Metadata: &sendState{cb: cb},
	}
	if rec.Key != nil {
		msg.Key = sarama.ByteEncoder(rec.Key)
	}
	for k, v := range rec.Headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: v})
	}

	select {
	case sp.p.Input() <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sp *SaramaProducer) dispatchSuccesses() {
	defer sp.wg.Done()
	for m := range sp.p.Successes() {
		telemetry.Sends.WithLabelValues("ok").Inc()
		if st, ok := m.Metadata.(*sendState); ok && st.cb != nil {
			st.cb(record.Metadata{Topic: m.Topic, Partition: m.Partition, Offset: m.Offset}, nil)
		}
	}
}

func (sp *SaramaProducer) dispatchErrors() {
	defer sp.wg.Done()
	for pe := range sp.p.Errors() {
		telemetry.Sends.WithLabelValues("error").Inc()
		if st, ok := pe.Msg.Metadata.(*sendState); ok && st.cb != nil {
			st.cb(record.Metadata{}, pe.Err)
		}
	}
}

// Close flushes in-flight sends and waits for every callback to fire.
func (sp *SaramaProducer) Close() error {
	err := sp.p.Close()
	sp.wg.Wait()
	return err
}
