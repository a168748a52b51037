package cli

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeClosesStoresWhenListenFails(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	var closed atomic.Bool
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	err = serve(logger, server, map[string]gfshutdown.Operation{
		"stores": func(context.Context) error {
			closed.Store(true)
			return nil
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
	assert.True(t, closed.Load())
}
