package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot maps canonical keys to records and remembers insertion order,
// which is the order the remote source listed the instruments in.
type Snapshot struct {
	keys    []string
	records map[string]InstrumentRecord
}

func NewSnapshot() *Snapshot {
	return &Snapshot{records: make(map[string]InstrumentRecord)}
}

// Add inserts rec under key unless the key is already present.
// It reports whether rec was stored.
func (s *Snapshot) Add(key string, rec InstrumentRecord) bool {
	if s.records == nil {
		s.records = make(map[string]InstrumentRecord)
	}
	if _, ok := s.records[key]; ok {
		return false
	}
	s.keys = append(s.keys, key)
	s.records[key] = rec
	return true
}

func (s *Snapshot) Get(key string) (InstrumentRecord, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s *Snapshot) Len() int {
	return len(s.keys)
}

func (s *Snapshot) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Records returns the records in insertion order.
func (s *Snapshot) Records() []InstrumentRecord {
	res := make([]InstrumentRecord, 0, len(s.keys))
	for _, k := range s.keys {
		res = append(res, s.records[k])
	}
	return res
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeTrimmed(enc, &buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeTrimmed(enc, &buf, s.records[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// encodeTrimmed drops the newline json.Encoder appends after every value.
func encodeTrimmed(enc *json.Encoder, buf *bytes.Buffer, v any) error {
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	*s = Snapshot{records: make(map[string]InstrumentRecord)}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot must be a json object, got %v", tok)
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected snapshot key %v", tok)
		}

		var rec InstrumentRecord
		if err = dec.Decode(&rec); err != nil {
			return fmt.Errorf("decode record %q: %w", key, err)
		}
		s.Add(key, rec)
	}

	if _, err = dec.Token(); err != nil {
		return err
	}

	return nil
}

// EncodeSnapshot renders the durable form: two-space indented UTF-8 with
// non-ASCII text left unescaped.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func DecodeSnapshot(data []byte) (*Snapshot, error) {
	s := NewSnapshot()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}
