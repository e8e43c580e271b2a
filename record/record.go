package record

import "time"

// Record is the plain projection of a consumed Kafka message. Drivers fill
// it via an explicit field mapping from their native message type; no
// reflection is involved.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
	Timestamp time.Time
}

// Pair is the key/value projection of a Record.
type Pair struct {
	Key   []byte
	Value []byte
}

func (r Record) Pair() Pair { return Pair{Key: r.Key, Value: r.Value} }

// Metadata reports where a produced record landed.
type Metadata struct {
	Topic     string
	Partition int32
	Offset    int64
}

// Callback receives the outcome of one asynchronous send: populated
// metadata with a nil error, or zero metadata with the send failure.
// The driver invokes it exactly once per send.
type Callback func(Metadata, error)
