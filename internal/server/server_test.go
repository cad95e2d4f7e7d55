package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunday4k/sunday4k/internal/httpx"
	"github.com/sunday4k/sunday4k/internal/server"
	"github.com/sunday4k/sunday4k/pkg/logger"
)

func TestRun_ServesAndShutsDown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
			server.Address("127.0.0.1:0"),
			server.OnListen(func(a net.Addr) { addrCh <- a }),
			server.StartupHook(record("start")),
			server.ShutdownHook(record("stop-1")),
			server.ShutdownHook(record("stop-2")),
		)
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"start", "stop-1", "stop-2"}, order)
}

func TestRun_StartupFailure(t *testing.T) {
	t.Parallel()

	startErr := errors.New("jobs: cannot start")
	stopped := false

	err := server.Run(context.Background(), nil,
		server.StartupHook(func(context.Context) error { return startErr }),
		server.ShutdownHook(func(context.Context) error { stopped = true; return nil }),
	)

	require.ErrorIs(t, err, startErr)
	require.True(t, stopped, "shutdown hooks release resources after a failed start")
}

func TestRun_WithoutHandler(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hookErr := errors.New("close failed")

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, nil, server.ShutdownHook(func(context.Context) error { return hookErr }))
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, hookErr)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := server.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		require.Len(t, seen, 36)
		require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("upstream correlation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "corr-42", seen)
		require.Equal(t, "corr-42", rec.Header().Get("X-Request-ID"))
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	eh := httpx.JSONErrorHandler(logger.NewNope())
	h := server.RequestID(server.Recover(logger.NewNope(), eh)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Internal Server Error","request_id":"abc"}`, rec.Body.String())
}

func TestRecover_AbortHandler(t *testing.T) {
	t.Parallel()

	h := server.Recover(nil, httpx.JSONErrorHandler(nil))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	eh := httpx.JSONErrorHandler(nil)
	h := server.Timeout(20 * time.Millisecond)(httpx.Wrap(func(_ http.ResponseWriter, r *http.Request) error {
		<-r.Context().Done()
		return r.Context().Err()
	}, eh))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestAccessLog_PassesThrough(t *testing.T) {
	t.Parallel()

	h := server.AccessLog(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
