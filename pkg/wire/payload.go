package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uns-lab/sensorsim/pkg/sensor"
)

// TimestampLayout is the payload timestamp format.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidPayload is returned when a payload cannot be decoded into a
// reading.
var ErrInvalidPayload = errors.New("invalid payload")

// Encoding selects the payload serialization.
type Encoding string

// Supported encodings.
const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding validates an encoding name. The empty string selects JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingCBOR:
		return EncodingCBOR, nil
	default:
		return "", fmt.Errorf("unknown payload encoding %q", s)
	}
}

// Payload is the structured record published for each reading. Field order
// is the JSON key order.
type Payload struct {
	Value     any    `json:"value" cbor:"value"`
	Unit      string `json:"unit,omitempty" cbor:"unit,omitempty"`
	Timestamp string `json:"timestamp" cbor:"timestamp"`
}

// NewPayload converts a reading. A zero reading timestamp is replaced with
// the current time.
func NewPayload(r sensor.Reading) Payload {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return Payload{
		Value:     r.Value,
		Unit:      r.Unit,
		Timestamp: ts.Format(TimestampLayout),
	}
}

// Encode serializes a reading.
func Encode(enc Encoding, r sensor.Reading) ([]byte, error) {
	p := NewPayload(r)
	switch enc {
	case "", EncodingJSON:
		return json.Marshal(p)
	case EncodingCBOR:
		return encMode.Marshal(p)
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", enc)
	}
}

// Decode parses a payload back into a reading. Numeric values are returned
// as float64; the sensor name is not part of the payload and is left empty.
func Decode(enc Encoding, data []byte) (sensor.Reading, error) {
	var p Payload
	var err error
	switch enc {
	case "", EncodingJSON:
		err = json.Unmarshal(data, &p)
	case EncodingCBOR:
		err = decMode.Unmarshal(data, &p)
	default:
		return sensor.Reading{}, fmt.Errorf("unknown payload encoding %q", enc)
	}
	if err != nil {
		return sensor.Reading{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	value, err := normalizeValue(p.Value)
	if err != nil {
		return sensor.Reading{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return sensor.Reading{}, fmt.Errorf("%w: timestamp: %v", ErrInvalidPayload, err)
	}
	return sensor.Reading{Value: value, Unit: p.Unit, Timestamp: ts}, nil
}

func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case nil:
		return nil, fmt.Errorf("%w: missing value", ErrInvalidPayload)
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrInvalidPayload, v)
	}
}
