// Package bundle serves string resources from go-i18n message files. A base
// path holds one file per culture named messages.<culture>.<format>, and the
// invariant messages in messages.<format>. TOML, YAML and JSON are supported.
package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"gopkg.in/yaml.v3"

	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/provider"
)

const defaultFilePrefix = "messages"

var formats = []string{"toml", "yaml", "yml", "json"} //nolint:gochecknoglobals // probe order for message files

type scope struct {
	basePath string
	tag      culture.Tag
}

// Provider reads message files from a file system and serves each message's
// "other" form as the resource value.
type Provider struct {
	fsys          fs.FS
	prefix        string
	unmarshalFunc map[string]i18n.UnmarshalFunc

	mu     sync.RWMutex
	parsed map[scope]map[string]*i18n.Message
}

// Option configures the bundle provider.
type Option func(*Provider)

// WithFilePrefix changes the message file name prefix from "messages".
func WithFilePrefix(prefix string) Option {
	return func(p *Provider) {
		p.prefix = prefix
	}
}

// New returns a provider reading from fsys, typically os.DirFS or an embed.FS.
func New(fsys fs.FS, opts ...Option) *Provider {
	p := &Provider{
		fsys:   fsys,
		prefix: defaultFilePrefix,
		unmarshalFunc: map[string]i18n.UnmarshalFunc{
			"toml": toml.Unmarshal,
			"yaml": yaml.Unmarshal,
			"yml":  yaml.Unmarshal,
			"json": json.Unmarshal,
		},
		parsed: map[scope]map[string]*i18n.Message{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Provider) fileName(tag culture.Tag, format string) string {
	if tag.IsInvariant() {
		return fmt.Sprintf("%s.%s", p.prefix, format)
	}
	return fmt.Sprintf("%s.%s.%s", p.prefix, tag, format)
}

// parsePath names the file for go-i18n, which reads the language from it.
func parsePath(dir string, tag culture.Tag, format string) string {
	lang := "und"
	if !tag.IsInvariant() {
		lang = tag.String()
	}
	return path.Join(dir, fmt.Sprintf("%s.%s.%s", defaultFilePrefix, lang, format))
}

// messages returns the parsed messages for the scope; nil means no file exists.
func (p *Provider) messages(basePath string, tag culture.Tag) (map[string]*i18n.Message, error) {
	key := scope{basePath: basePath, tag: tag}

	p.mu.RLock()
	msgs, ok := p.parsed[key]
	p.mu.RUnlock()
	if ok {
		return msgs, nil
	}

	msgs, err := p.load(basePath, tag)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, found := p.parsed[key]; found {
		return existing, nil
	}
	p.parsed[key] = msgs
	return msgs, nil
}

func (p *Provider) load(basePath string, tag culture.Tag) (map[string]*i18n.Message, error) {
	dir := strings.TrimPrefix(path.Clean(basePath), "/")
	if dir == "" {
		dir = "."
	}

	for _, format := range formats {
		name := path.Join(dir, p.fileName(tag, format))

		buf, err := fs.ReadFile(p.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read message file %s: %w", name, err)
		}

		file, err := i18n.ParseMessageFileBytes(buf, parsePath(dir, tag, format), p.unmarshalFunc)
		if err != nil {
			return nil, fmt.Errorf("parse message file %s: %w", name, err)
		}

		msgs := make(map[string]*i18n.Message, len(file.Messages))
		for _, msg := range file.Messages {
			msgs[msg.ID] = msg
		}
		return msgs, nil
	}

	return nil, nil
}

// Open returns the message text for key.
func (p *Provider) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msgs, err := p.messages(basePath, tag)
	if err != nil {
		return nil, err
	}

	msg, ok := msgs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", provider.ErrNotFound, key, provider.CultureDir(basePath, tag))
	}

	text := msg.Other
	if text == "" {
		text = msg.One
	}
	return []byte(text), nil
}

// Exists reports whether a message file exists for the culture.
func (p *Provider) Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	msgs, err := p.messages(basePath, tag)
	if err != nil {
		return false, err
	}
	return msgs != nil, nil
}

// Reload forgets parsed files so that edits on disk are picked up.
func (p *Provider) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parsed = map[scope]map[string]*i18n.Message{}
}
