// Package cachetest holds the behaviour every RawCache backend must satisfy.
package cachetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingua/cache"
)

// RawCacheSuite runs the shared RawCache contract against the cache returned
// by New. New is called once per test.
type RawCacheSuite struct {
	suite.Suite
	New func() cache.RawCache
}

func (s *RawCacheSuite) newCache() cache.RawCache {
	raw := s.New()
	s.T().Cleanup(func() { _ = raw.Close() })
	return raw
}

func (s *RawCacheSuite) TestSetGetExistsDelete() {
	ctx := context.Background()
	raw := s.newCache()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{"plain", "contract:plain", []byte("value"), 0},
		{"with ttl", "contract:ttl", []byte("value"), time.Hour},
		{"binary", "contract:binary", []byte{0x00, 0xff, 0x10}, 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Require().NoError(raw.Set(ctx, tt.key, tt.value, tt.ttl))

			got, found, err := raw.Get(ctx, tt.key)
			s.Require().NoError(err)
			s.True(found)
			s.Equal(tt.value, got)

			exists, err := raw.Exists(ctx, tt.key)
			s.Require().NoError(err)
			s.True(exists)

			s.Require().NoError(raw.Delete(ctx, tt.key))
			_, found, err = raw.Get(ctx, tt.key)
			s.Require().NoError(err)
			s.False(found)
		})
	}
}

func (s *RawCacheSuite) TestExpiry() {
	ctx := context.Background()
	raw := s.newCache()

	s.Require().NoError(raw.Set(ctx, "contract:expiring", []byte("v"), time.Second))
	s.Eventually(func() bool {
		_, found, err := raw.Get(ctx, "contract:expiring")
		return err == nil && !found
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RawCacheSuite) TestFlush() {
	ctx := context.Background()
	raw := s.newCache()

	s.Require().NoError(raw.Set(ctx, "contract:flush:a", []byte("a"), 0))
	s.Require().NoError(raw.Set(ctx, "contract:flush:b", []byte("b"), 0))
	s.Require().NoError(raw.Flush(ctx))

	for _, key := range []string{"contract:flush:a", "contract:flush:b"} {
		exists, err := raw.Exists(ctx, key)
		s.Require().NoError(err)
		s.False(exists)
	}
}
