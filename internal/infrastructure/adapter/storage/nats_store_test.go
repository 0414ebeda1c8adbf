package storage

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// startTestServer starts an in-process JetStream server on a random port
func startTestServer(t *testing.T) *nats.Conn {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)
	t.Cleanup(natsServer.Shutdown)

	nc, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestNatsObjectStore_SaveLoad(t *testing.T) {
	nc := startTestServer(t)
	ctx := context.Background()

	store, err := NewNatsObjectStore(ctx, nc, "tts-artifacts")
	require.NoError(t, err)

	location, err := store.Save(ctx, "gen-1.wav", []byte("RIFF....WAVE"))
	require.NoError(t, err)
	assert.Equal(t, "nats://tts-artifacts/gen-1.wav", location)

	data, err := store.Load(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF....WAVE"), data)
}

func TestNatsObjectStore_BindsExistingBucket(t *testing.T) {
	nc := startTestServer(t)
	ctx := context.Background()

	first, err := NewNatsObjectStore(ctx, nc, "shared")
	require.NoError(t, err)
	location, err := first.Save(ctx, "a.wav", []byte("a"))
	require.NoError(t, err)

	second, err := NewNatsObjectStore(ctx, nc, "shared")
	require.NoError(t, err)

	data, err := second.Load(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
}

func TestNatsObjectStore_LoadMissing(t *testing.T) {
	nc := startTestServer(t)
	ctx := context.Background()

	store, err := NewNatsObjectStore(ctx, nc, "tts-artifacts")
	require.NoError(t, err)

	_, err = store.Load(ctx, "nats://tts-artifacts/nope.wav")
	assert.ErrorIs(t, err, errs.ErrArtifactNotFound)

	_, err = store.Load(ctx, "nats://other-bucket/a.wav")
	assert.ErrorIs(t, err, errs.ErrArtifactNotFound)

	_, err = store.Load(ctx, "/tmp/a.wav")
	assert.ErrorIs(t, err, errs.ErrArtifactNotFound)
}
