// Package testvalkey starts a disposable Valkey server for integration tests.
package testvalkey

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcValKey "github.com/testcontainers/testcontainers-go/modules/valkey"
)

// ValKeyImage is the container image used for tests.
const ValKeyImage = "docker.io/valkey/valkey:latest"

// Start runs a Valkey container for the lifetime of t and returns its
// redis:// connection string. The test is skipped when no container runtime
// is reachable.
func Start(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	container, err := tcValKey.Run(ctx, ValKeyImage)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("failed to start valkey container: %v", err)
	}

	conn, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string for valkey container: %v", err)
	}

	return conn
}
