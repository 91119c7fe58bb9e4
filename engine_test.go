package lingua_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pitabwire/lingua"
	"github.com/pitabwire/lingua/codec"
	"github.com/pitabwire/lingua/culture"
	"github.com/pitabwire/lingua/notify"
	"github.com/pitabwire/lingua/provider"
)

var (
	french         = culture.MustParse("fr")
	frenchCanadian = culture.MustParse("fr-CA")
	german         = culture.MustParse("de")
	swahili        = culture.MustParse("sw")
)

type openCall struct {
	basePath string
	tag      culture.Tag
	key      string
	found    bool
}

// recordingProvider wraps a static provider, remembers every Open and can be
// told to fail or block for a culture.
type recordingProvider struct {
	*provider.Static

	mu       sync.Mutex
	calls    []openCall
	failures map[culture.Tag]error
	gate     map[string]chan struct{}
	entered  chan struct{}
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{
		Static:   provider.NewStatic(),
		failures: map[culture.Tag]error{},
		gate:     map[string]chan struct{}{},
		entered:  make(chan struct{}, 1),
	}
}

func (r *recordingProvider) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	r.mu.Lock()
	failure := r.failures[tag]
	gate := r.gate[basePath]
	r.mu.Unlock()

	if gate != nil {
		select {
		case r.entered <- struct{}{}:
		default:
		}

		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	data, err := r.Static.Open(ctx, basePath, tag, key)
	if failure != nil {
		data, err = nil, failure
	}

	r.mu.Lock()
	r.calls = append(r.calls, openCall{basePath: basePath, tag: tag, key: key, found: err == nil})
	r.mu.Unlock()
	return data, err
}

func (r *recordingProvider) fail(tag culture.Tag, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, tag)
		return
	}
	r.failures[tag] = err
}

func (r *recordingProvider) block(basePath string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.gate[basePath] = ch
	return ch
}

func (r *recordingProvider) opens() []openCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]openCall(nil), r.calls...)
}

func (r *recordingProvider) opensFor(tag culture.Tag) int {
	count := 0
	for _, call := range r.opens() {
		if call.tag == tag {
			count++
		}
	}
	return count
}

func (r *recordingProvider) lastFound() (openCall, bool) {
	calls := r.opens()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].found {
			return calls[i], true
		}
	}
	return openCall{}, false
}

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	provider *recordingProvider
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = newRecordingProvider()
	s.provider.
		AddString("/login", culture.Invariant, "title", "Sign in").
		AddString("/login", culture.Invariant, "footer", "Terms").
		AddString("/login", culture.Invariant, "settings", `{"theme":"light"}`).
		AddString("/login", french, "title", "Connexion").
		AddString("/login", french, "settings", `{"theme":"clair"}`).
		AddString("/login", frenchCanadian, "greeting", "Allo").
		AddString("/login", swahili, "title", "Ingia").
		AddString("/signup", culture.Invariant, "title", "Create account").
		AddString("/signup", french, "title", "Inscription")
}

func (s *EngineSuite) newEngine(opts ...lingua.Option) *lingua.Engine {
	opts = append([]lingua.Option{lingua.WithDefaultCulture(culture.English)}, opts...)
	engine, err := lingua.New(s.provider, opts...)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = engine.Close() })
	return engine
}

func (s *EngineSuite) newEngineAt(basePath string, tag culture.Tag, opts ...lingua.Option) *lingua.Engine {
	engine := s.newEngine(opts...)
	s.Require().NoError(engine.SetCulture(s.ctx, tag))
	s.Require().NoError(engine.UpdateContext(s.ctx, basePath))
	return engine
}

func (s *EngineSuite) getString(engine *lingua.Engine, key string) string {
	value, found, err := engine.GetString(s.ctx, key)
	s.Require().NoError(err)
	s.Require().True(found, key)
	return value
}

func (s *EngineSuite) TestNewRequiresProvider() {
	_, err := lingua.New(nil)
	s.Require().ErrorIs(err, lingua.ErrInvalidArgument)
}

func (s *EngineSuite) TestInitialState() {
	engine := s.newEngine()

	s.Equal(culture.English, engine.GetLanguage())
	basePath, ok := engine.Context()
	s.False(ok)
	s.Empty(basePath)
}

func (s *EngineSuite) TestFallbackResolution() {
	testCases := []struct {
		name    string
		culture culture.Tag
		key     string
		want    string
	}{
		{name: "exact culture", culture: french, key: "title", want: "Connexion"},
		{name: "region falls back to language", culture: frenchCanadian, key: "title", want: "Connexion"},
		{name: "region specific value", culture: frenchCanadian, key: "greeting", want: "Allo"},
		{name: "language falls back to invariant", culture: french, key: "footer", want: "Terms"},
		{name: "unknown culture uses invariant", culture: german, key: "title", want: "Sign in"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			engine := s.newEngineAt("/login", tc.culture)
			s.Equal(tc.want, s.getString(engine, tc.key))
		})
	}
}

func (s *EngineSuite) TestFallbackChains() {
	engine := s.newEngine()
	s.Equal([]culture.Tag{frenchCanadian, french, culture.Invariant}, engine.Resolver().Resolve(frenchCanadian))
	s.Equal([]culture.Tag{french, culture.Invariant}, engine.Resolver().Resolve(french))

	withDefault := s.newEngine(lingua.WithFallback(culture.English))
	s.Equal([]culture.Tag{culture.English}, withDefault.Resolver().Resolve(culture.English))
	s.Equal([]culture.Tag{french, culture.English}, withDefault.Resolver().Resolve(french))
}

func (s *EngineSuite) TestCultureChangeClearsCache() {
	engine := s.newEngineAt("/login", french)

	s.Equal("Connexion", s.getString(engine, "title"))
	s.Equal("Connexion", s.getString(engine, "title"))
	s.Equal(1, s.provider.opensFor(french), "second lookup is served from the cache")

	s.Require().NoError(engine.SetLanguage(s.ctx, "sw"))
	s.Equal("Ingia", s.getString(engine, "title"))

	s.Require().NoError(engine.SetLanguage(s.ctx, "fr"))
	s.Equal("Connexion", s.getString(engine, "title"))
	s.Equal(2, s.provider.opensFor(french), "switching back re-probes the provider")
}

func (s *EngineSuite) TestContextChangeClearsCache() {
	engine := s.newEngineAt("/login", french)
	s.Equal("Connexion", s.getString(engine, "title"))

	s.Require().NoError(engine.UpdateContext(s.ctx, "/signup"))
	s.Equal("Inscription", s.getString(engine, "title"))

	basePath, ok := engine.Context()
	s.True(ok)
	s.Equal("/signup", basePath)
}

func (s *EngineSuite) TestRepeatedMutationsNotifyOnce() {
	engine := s.newEngine()

	var changes []notify.Change
	engine.Subscribe(func(_ context.Context, change notify.Change) error {
		changes = append(changes, change)
		return nil
	})

	s.Require().NoError(engine.SetLanguage(s.ctx, "fr"))
	s.Require().NoError(engine.SetLanguage(s.ctx, "FR"))
	s.Require().NoError(engine.SetCulture(s.ctx, french))
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))

	s.Equal([]notify.Change{
		{Property: notify.PropertyLanguage, Culture: french},
		{Property: notify.PropertyContext, Culture: french, BasePath: "/login"},
	}, changes)
}

func (s *EngineSuite) TestContextIgnoresSurroundingSpaces() {
	engine := s.newEngineAt("/login", french)
	s.getString(engine, "title")

	var notified int
	engine.Subscribe(func(context.Context, notify.Change) error {
		notified++
		return nil
	})

	s.Require().NoError(engine.UpdateContext(s.ctx, " /login "))
	s.Zero(notified)
	s.getString(engine, "title")
	s.Equal(1, s.provider.opensFor(french), "the cache survives an equivalent path")

	s.Require().NoError(engine.UpdateContext(s.ctx, "/signup\n"))
	basePath, _ := engine.Context()
	s.Equal("/signup", basePath)
	s.Equal(1, notified)
}

func (s *EngineSuite) TestRepeatedCultureKeepsCache() {
	engine := s.newEngineAt("/login", french)
	s.getString(engine, "title")

	s.Require().NoError(engine.SetLanguage(s.ctx, "fr"))
	s.getString(engine, "title")
	s.Equal(1, s.provider.opensFor(french))
}

func (s *EngineSuite) TestGettersAgreeOnCulture() {
	s.provider.AddString("/login", frenchCanadian, "settings", `{"theme":"erable"}`)

	found := map[string]culture.Tag{}
	lookups := map[string]func(e *lingua.Engine) bool{
		"string": func(e *lingua.Engine) bool {
			_, ok, err := e.GetString(s.ctx, "settings")
			s.Require().NoError(err)
			return ok
		},
		"object": func(e *lingua.Engine) bool {
			_, ok, err := e.GetObject(s.ctx, "settings")
			s.Require().NoError(err)
			return ok
		},
		"stream": func(e *lingua.Engine) bool {
			stream, ok, err := e.GetStream(s.ctx, "settings")
			s.Require().NoError(err)
			if stream != nil {
				_ = stream.Close()
			}
			return ok
		},
	}

	for kind, lookup := range lookups {
		engine := s.newEngineAt("/login", frenchCanadian)
		s.Require().True(lookup(engine), kind)

		call, ok := s.provider.lastFound()
		s.Require().True(ok)
		found[kind] = call.tag
	}

	s.Equal(frenchCanadian, found["string"])
	s.Equal(found["string"], found["object"])
	s.Equal(found["string"], found["stream"])
}

func (s *EngineSuite) TestGetObject() {
	engine := s.newEngineAt("/login", french)

	obj, found, err := engine.GetObject(s.ctx, "settings")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(map[string]any{"theme": "clair"}, obj)

	again, _, err := engine.GetObject(s.ctx, "settings")
	s.Require().NoError(err)
	s.Equal(obj, again)
	s.Equal(1, s.provider.opensFor(french))
}

func (s *EngineSuite) TestGetObjectWithDecoder() {
	s.provider.AddString("/login", culture.Invariant, "menu", "items:\n  - home\n  - about\n")
	engine := s.newEngineAt("/login", french, lingua.WithDecoder(codec.YAML{}))

	obj, found, err := engine.GetObject(s.ctx, "menu")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(map[string]any{"items": []any{"home", "about"}}, obj)
}

func (s *EngineSuite) TestDeserializationFailureIsNotMemoised() {
	var attempts atomic.Int32
	decoder := codec.DecoderFunc(func(data []byte) (any, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("corrupt")
		}
		return string(data), nil
	})
	engine := s.newEngineAt("/login", french, lingua.WithDecoder(decoder))

	_, found, err := engine.GetObject(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrDeserializationFailed)
	s.False(found)

	obj, found, err := engine.GetObject(s.ctx, "title")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("Connexion", obj)
	s.Equal(1, s.provider.opensFor(french), "the raw bytes stay cached")

	value := s.getString(engine, "title")
	s.Equal("Connexion", value)
}

func (s *EngineSuite) TestMalformedObject() {
	engine := s.newEngineAt("/login", french)

	_, _, err := engine.GetObject(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrDeserializationFailed)
}

func (s *EngineSuite) TestStreamsAreIndependent() {
	engine := s.newEngineAt("/login", french)

	first, found, err := engine.GetStream(s.ctx, "title")
	s.Require().NoError(err)
	s.Require().True(found)
	second, found, err := engine.GetStream(s.ctx, "title")
	s.Require().NoError(err)
	s.Require().True(found)

	buf := make([]byte, 3)
	_, err = io.ReadFull(first, buf)
	s.Require().NoError(err)
	s.Equal("Con", string(buf))

	s.Require().NoError(first.Close())
	s.Require().NoError(first.Close())
	_, err = first.Read(buf)
	s.Require().ErrorIs(err, lingua.ErrStreamClosed)

	data, err := io.ReadAll(second)
	s.Require().NoError(err)
	s.Equal("Connexion", string(data))
	s.Equal(int64(len("Connexion")), second.Size())

	_, err = second.Seek(3, io.SeekStart)
	s.Require().NoError(err)
	rest, err := io.ReadAll(second)
	s.Require().NoError(err)
	s.Equal("nexion", string(rest))
	s.Require().NoError(second.Close())

	third, found, err := engine.GetStream(s.ctx, "title")
	s.Require().NoError(err)
	s.Require().True(found)
	data, err = io.ReadAll(third)
	s.Require().NoError(err)
	s.Equal("Connexion", string(data))
	s.Require().NoError(third.Close())
	s.Equal(1, s.provider.opensFor(french), "closing handles never evicts the entry")
}

func (s *EngineSuite) TestMissingKey() {
	engine := s.newEngineAt("/login", frenchCanadian)

	value, found, err := engine.GetString(s.ctx, "missing-key")
	s.Require().NoError(err)
	s.False(found)
	s.Empty(value)

	obj, found, err := engine.GetObject(s.ctx, "missing-key")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(obj)

	stream, found, err := engine.GetStream(s.ctx, "missing-key")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(stream)

	opens := len(s.provider.opens())
	_, _, err = engine.GetString(s.ctx, "missing-key")
	s.Require().NoError(err)
	s.Len(s.provider.opens(), opens, "absences are cached")
}

func (s *EngineSuite) TestArgumentErrors() {
	engine := s.newEngine()

	_, _, err := engine.GetString(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrContextNotSet)
	_, _, err = engine.GetObject(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrContextNotSet)
	_, _, err = engine.GetStream(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrContextNotSet)

	s.Require().ErrorIs(engine.UpdateContext(s.ctx, ""), lingua.ErrInvalidArgument)
	s.Require().ErrorIs(engine.UpdateContext(s.ctx, "  "), lingua.ErrInvalidArgument)
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))

	_, _, err = engine.GetString(s.ctx, "")
	s.Require().ErrorIs(err, lingua.ErrInvalidArgument)
	_, _, err = engine.GetObject(s.ctx, "")
	s.Require().ErrorIs(err, lingua.ErrInvalidArgument)
	_, _, err = engine.GetStream(s.ctx, "")
	s.Require().ErrorIs(err, lingua.ErrInvalidArgument)
}

func (s *EngineSuite) TestInvalidCulture() {
	engine := s.newEngine()

	var notified int
	engine.Subscribe(func(context.Context, notify.Change) error {
		notified++
		return nil
	})

	for _, name := range []string{"", "not a culture", "en_US!!"} {
		err := engine.SetLanguage(s.ctx, name)
		s.Require().ErrorIs(err, lingua.ErrInvalidCulture, name)
	}
	s.Equal(culture.English, engine.GetLanguage())
	s.Zero(notified)
}

func (s *EngineSuite) TestProviderUnavailable() {
	engine := s.newEngineAt("/login", frenchCanadian)
	outage := errors.New("storage offline")
	s.provider.fail(french, outage)

	_, _, err := engine.GetString(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrProviderUnavailable)
	s.Require().ErrorIs(err, outage)
	s.Equal(1, s.provider.opensFor(frenchCanadian))

	s.provider.fail(french, nil)
	s.Equal("Connexion", s.getString(engine, "title"))
	s.Equal(2, s.provider.opensFor(frenchCanadian), "the failed attempt cached nothing")
}

func (s *EngineSuite) TestProviderTimeout() {
	engine := s.newEngineAt("/login", french, lingua.WithProviderTimeout(20*time.Millisecond))
	gate := s.provider.block("/login")
	defer close(gate)

	_, _, err := engine.GetString(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrProviderUnavailable)
	s.Require().ErrorIs(err, context.DeadlineExceeded)
}

func (s *EngineSuite) TestCallerCancellation() {
	engine := s.newEngineAt("/login", french)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, _, err := engine.GetString(ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrProviderUnavailable)
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *EngineSuite) TestCulturesWithoutResourcesAreSkipped() {
	engine := s.newEngineAt("/login", culture.MustParse("de-AT"))

	s.Equal("Sign in", s.getString(engine, "title"))
	s.Zero(s.provider.opensFor(culture.MustParse("de-AT")))
	s.Zero(s.provider.opensFor(german))
}

func (s *EngineSuite) TestProviderWithoutProber() {
	plain := provider.Func(s.provider.Open)
	engine, err := lingua.New(plain, lingua.WithDefaultCulture(german))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = engine.Close() })
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))

	s.Equal("Sign in", s.getString(engine, "title"))
	s.Equal(1, s.provider.opensFor(german))
}

// A lookup racing a context switch returns the old context's value but
// must not leave it cached under the new context.
func (s *EngineSuite) TestContextSwitchDuringLookup() {
	engine := s.newEngineAt("/login", french)
	gate := s.provider.block("/login")

	type result struct {
		value string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, _, err := engine.GetString(s.ctx, "title")
		done <- result{value: value, err: err}
	}()

	select {
	case <-s.provider.entered:
	case <-time.After(time.Second):
		s.FailNow("lookup never reached the provider")
	}

	s.Require().NoError(engine.UpdateContext(s.ctx, "/signup"))
	close(gate)

	old := <-done
	s.Require().NoError(old.err)
	s.Equal("Connexion", old.value)

	s.Equal("Inscription", s.getString(engine, "title"))
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))
	s.Equal("Connexion", s.getString(engine, "title"))
}

func (s *EngineSuite) TestConcurrentContextSwitches() {
	s.provider.AddString("/a", culture.Invariant, "k", "A").AddString("/b", culture.Invariant, "k", "B")
	engine := s.newEngineAt("/a", culture.Invariant)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	var bad atomic.Int32

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}

				value, found, err := engine.GetString(s.ctx, "k")
				if err != nil || !found || (value != "A" && value != "B") {
					bad.Add(1)
				}
			}
		}()
	}

	for i := range 200 {
		path := "/a"
		if i%2 == 0 {
			path = "/b"
		}
		s.Require().NoError(engine.UpdateContext(s.ctx, path))

		want := "A"
		if path == "/b" {
			want = "B"
		}
		s.Equal(want, s.getString(engine, "k"), "a lookup after the switch sees only the new context")
	}

	close(stop)
	wg.Wait()
	s.Zero(bad.Load())
}

func (s *EngineSuite) TestNotificationsAfterCommit() {
	engine := s.newEngineAt("/login", french)

	var seenCulture culture.Tag
	var seenTitle string
	engine.Subscribe(func(ctx context.Context, change notify.Change) error {
		seenCulture = engine.GetLanguage()
		value, _, err := engine.GetString(ctx, "title")
		seenTitle = value
		return err
	})

	s.Require().NoError(engine.SetLanguage(s.ctx, "sw"))
	s.Equal(swahili, seenCulture)
	s.Equal("Ingia", seenTitle)
}

func (s *EngineSuite) TestFaultyHandlersDoNotBreakMutators() {
	engine := s.newEngine()

	var delivered []string
	engine.Subscribe(func(context.Context, notify.Change) error { panic("broken subscriber") })
	engine.Subscribe(func(context.Context, notify.Change) error { return errors.New("failing subscriber") })
	sub := engine.Subscribe(func(_ context.Context, change notify.Change) error {
		delivered = append(delivered, string(change.Property))
		return nil
	})

	s.Require().NoError(engine.SetLanguage(s.ctx, "fr"))
	s.Require().NoError(engine.UpdateContext(s.ctx, "/login"))
	s.Equal([]string{"Language", "Context"}, delivered)

	s.True(engine.Unsubscribe(sub))
	s.False(engine.Unsubscribe(sub))
	s.Require().NoError(engine.SetLanguage(s.ctx, "sw"))
	s.Len(delivered, 2)
}

func (s *EngineSuite) TestTextDecoding() {
	s.provider.
		Add("/login", culture.Invariant, "bom", []byte("\xEF\xBB\xBFHello")).
		Add("/login", culture.Invariant, "utf16", []byte{0xFF, 0xFE, 'H', 0, 'i', 0})
	engine := s.newEngineAt("/login", culture.Invariant)

	s.Equal("Hello", s.getString(engine, "bom"))
	s.Equal("Hi", s.getString(engine, "utf16"))
}

func (s *EngineSuite) TestPreload() {
	engine := s.newEngineAt("/login", french)

	found, err := engine.Preload(s.ctx, "title", "footer", "settings", "missing")
	s.Require().NoError(err)
	s.Equal(3, found)

	opens := len(s.provider.opens())
	s.Equal("Connexion", s.getString(engine, "title"))
	s.Equal("Terms", s.getString(engine, "footer"))
	_, ok, err := engine.GetString(s.ctx, "missing")
	s.Require().NoError(err)
	s.False(ok)
	s.Len(s.provider.opens(), opens, "preloaded keys are served from the cache")
}

func (s *EngineSuite) TestPreloadErrors() {
	engine := s.newEngine()

	_, err := engine.Preload(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrContextNotSet)

	s.Require().NoError(engine.Close())
	s.Require().NoError(engine.Close())

	_, err = engine.Preload(s.ctx, "title")
	s.Require().ErrorIs(err, lingua.ErrClosed)
}

func (s *EngineSuite) TestEnginesAreIsolated() {
	first := s.newEngineAt("/login", french)
	second := s.newEngineAt("/login", swahili)

	s.Equal("Connexion", s.getString(first, "title"))
	s.Equal("Ingia", s.getString(second, "title"))

	s.Require().NoError(second.UpdateContext(s.ctx, "/signup"))
	s.Equal("Connexion", s.getString(first, "title"))
}

func (s *EngineSuite) TestMetrics() {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	engine := s.newEngineAt("/login", french, lingua.WithMeterProvider(meterProvider))

	s.getString(engine, "title")
	s.getString(engine, "title")
	s.getString(engine, "title")

	var rm metricdata.ResourceMetrics
	s.Require().NoError(reader.Collect(s.ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}

	s.Equal(int64(2), totals["lingua/cache_hits"])
	s.Equal(int64(1), totals["lingua/cache_misses"])
	s.Equal(int64(1), totals["lingua/provider_opens"])
}
