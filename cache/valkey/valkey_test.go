package valkey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/lingua/cache"
	"github.com/pitabwire/lingua/cache/cachetest"
	cachevalkey "github.com/pitabwire/lingua/cache/valkey"
	"github.com/pitabwire/lingua/internal/testvalkey"
)

func TestValkeyCacheSuite(t *testing.T) {
	addr := testvalkey.Start(t)
	valkeyURL := "valkey://" + strings.TrimPrefix(addr, "redis://")

	suite.Run(t, &cachetest.RawCacheSuite{
		New: func() cache.RawCache {
			raw, err := cachevalkey.New(cache.WithURL(valkeyURL), cache.WithName("lingua-test"))
			require.NoError(t, err)
			return raw
		},
	})
}

func TestValkeyCacheRejectsBadURL(t *testing.T) {
	_, err := cachevalkey.New(cache.WithURL("://bad-url"))
	require.Error(t, err)
}
