package redis_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingua/cache"
	"github.com/pitabwire/lingua/cache/cachetest"
	cacheredis "github.com/pitabwire/lingua/cache/redis"
	"github.com/pitabwire/lingua/internal/testvalkey"
)

func TestRedisCacheSuite(t *testing.T) {
	addr := testvalkey.Start(t)

	suite.Run(t, &cachetest.RawCacheSuite{
		New: func() cache.RawCache {
			raw, err := cacheredis.New(cache.WithURL(addr), cache.WithName("lingua-test"))
			require.NoError(t, err)
			return raw
		},
	})
}

func TestRedisCacheRejectsBadURL(t *testing.T) {
	_, err := cacheredis.New(cache.WithURL("://bad-url"))
	require.Error(t, err)
}
