package cache

import (
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Entry is a resolved resource. The payload is owned by the entry and never
// mutated after construction, so it can be shared by any number of readers.
// Text and object decodings are computed on first use and then shared.
type Entry struct {
	data []byte

	textOnce sync.Once
	text     string

	objMu  sync.Mutex
	obj    any
	objSet bool
}

// NewEntry copies data into a new entry.
func NewEntry(data []byte) *Entry {
	return &Entry{data: append([]byte(nil), data...)}
}

// Bytes returns the shared payload. Callers must treat it as read-only.
func (e *Entry) Bytes() []byte {
	return e.data
}

// Len returns the payload size in bytes.
func (e *Entry) Len() int {
	return len(e.data)
}

// Text decodes the payload as text. A UTF-8 or UTF-16 byte order mark selects
// the encoding and is stripped; without one the payload is read as UTF-8 with
// invalid sequences replaced.
func (e *Entry) Text() string {
	e.textOnce.Do(func() {
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		decoded, _, err := transform.Bytes(decoder, e.data)
		if err != nil {
			e.text = string(e.data)
			return
		}
		e.text = string(decoded)
	})
	return e.text
}

// Object returns the decoded payload, calling decode on first use. Failed
// decodes are not remembered and are retried by the next caller.
func (e *Entry) Object(decode func([]byte) (any, error)) (any, error) {
	e.objMu.Lock()
	defer e.objMu.Unlock()

	if e.objSet {
		return e.obj, nil
	}

	obj, err := decode(e.data)
	if err != nil {
		return nil, err
	}

	e.obj = obj
	e.objSet = true
	return obj, nil
}
