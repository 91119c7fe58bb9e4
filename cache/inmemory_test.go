package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingua/cache"
)

type InMemoryCacheSuite struct {
	suite.Suite
}

func TestInMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(InMemoryCacheSuite))
}

func (s *InMemoryCacheSuite) TestStoredValueIsCopied() {
	ctx := context.Background()
	raw := cache.NewInMemoryCache()
	s.T().Cleanup(func() { _ = raw.Close() })

	value := []byte("original")
	s.Require().NoError(raw.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, found, err := raw.Get(ctx, "k")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("original", string(got))
}

func (s *InMemoryCacheSuite) TestExpiration() {
	ctx := context.Background()
	raw := cache.NewInMemoryCache(cache.WithMaxAge(30 * time.Millisecond))
	s.T().Cleanup(func() { _ = raw.Close() })

	s.Require().NoError(raw.Set(ctx, "default-ttl", []byte("v"), 0))
	s.Require().NoError(raw.Set(ctx, "explicit-ttl", []byte("v"), time.Hour))

	s.Eventually(func() bool {
		exists, err := raw.Exists(ctx, "default-ttl")
		return err == nil && !exists
	}, time.Second, 10*time.Millisecond)

	_, found, err := raw.Get(ctx, "explicit-ttl")
	s.Require().NoError(err)
	s.True(found)
}

func (s *InMemoryCacheSuite) TestFlushAndClose() {
	ctx := context.Background()
	raw := cache.NewInMemoryCache()

	s.Require().NoError(raw.Set(ctx, "a", []byte("1"), 0))
	s.Require().NoError(raw.Set(ctx, "b", []byte("2"), 0))
	s.Require().NoError(raw.Flush(ctx))

	for _, key := range []string{"a", "b"} {
		exists, err := raw.Exists(ctx, key)
		s.Require().NoError(err)
		s.False(exists)
	}

	s.Require().NoError(raw.Close())
	s.Require().NoError(raw.Close(), "closing twice is harmless")
}
