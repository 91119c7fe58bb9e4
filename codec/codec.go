// Package codec turns raw resource bytes into objects for GetObject.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Decoder converts a resource payload into a value. Implementations must be
// safe for concurrent use and must not retain data.
type Decoder interface {
	Decode(data []byte) (any, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (any, error)

// Decode calls f.
func (f DecoderFunc) Decode(data []byte) (any, error) {
	return f(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// Raw returns a private copy of the payload.
type Raw struct{}

func (Raw) Decode(data []byte) (any, error) {
	return bytes.Clone(data), nil
}

// JSON decodes documents into the generic encoding/json representation.
type JSON struct{}

func (JSON) Decode(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(stripBOM(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// YAML decodes documents with gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(stripBOM(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// TOML decodes documents into a map; TOML documents are always tables.
type TOML struct{}

func (TOML) Decode(data []byte) (any, error) {
	v := map[string]any{}
	if err := toml.Unmarshal(stripBOM(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Proto decodes wire format payloads into clones of a prototype message.
type Proto struct {
	prototype proto.Message
}

// NewProto returns a decoder producing messages of the prototype's type.
func NewProto(prototype proto.Message) *Proto {
	return &Proto{prototype: prototype}
}

func (p *Proto) Decode(data []byte) (any, error) {
	msg := proto.Clone(p.prototype)
	proto.Reset(msg)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ByName returns the decoder registered under a configuration name.
// Protobuf decoding needs a prototype and is only available through NewProto.
func ByName(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "toml":
		return TOML{}, nil
	case "raw", "bytes":
		return Raw{}, nil
	default:
		return nil, fmt.Errorf("unknown object format %q", name)
	}
}
