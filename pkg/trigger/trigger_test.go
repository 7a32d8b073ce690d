package trigger_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handybase/handy/pkg/trigger"
)

type mockKeySource struct {
	mu  sync.Mutex
	key string
}

func (m *mockKeySource) CronKey(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.key, nil
}

func (m *mockKeySource) RotateCronKey(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = "rotated-" + m.key
	return m.key, nil
}

type mockRunner struct {
	mu   sync.Mutex
	runs int
}

func (m *mockRunner) Run(_ context.Context, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	return nil
}

func (m *mockRunner) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServer(t *testing.T, keys *mockKeySource, runner *mockRunner) *httptest.Server {
	t.Helper()

	router, err := trigger.NewRouter(keys, runner, trigger.WithLogger(quietLogger()))
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	t.Run("nil key source", func(t *testing.T) {
		t.Parallel()

		_, err := trigger.NewRouter(nil, &mockRunner{})
		require.ErrorIs(t, err, trigger.ErrNilKeySource)
	})

	t.Run("nil runner", func(t *testing.T) {
		t.Parallel()

		_, err := trigger.NewRouter(&mockKeySource{}, nil)
		require.ErrorIs(t, err, trigger.ErrNilRunner)
	})
}

func TestCronTrigger(t *testing.T) {
	t.Parallel()

	t.Run("matching key runs due tasks", func(t *testing.T) {
		t.Parallel()

		keys := &mockKeySource{key: "secret"}
		runner := &mockRunner{}
		srv := newServer(t, keys, runner)

		status, body := get(t, srv.URL+"/cron/secret")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "done", body)
		assert.Equal(t, 1, runner.count())
	})

	t.Run("wrong key responds identically without running", func(t *testing.T) {
		t.Parallel()

		keys := &mockKeySource{key: "secret"}
		runner := &mockRunner{}
		srv := newServer(t, keys, runner)

		status, body := get(t, srv.URL+"/cron/wrong")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "done", body)
		assert.Zero(t, runner.count())
	})

	t.Run("unknown route is 404", func(t *testing.T) {
		t.Parallel()

		srv := newServer(t, &mockKeySource{key: "secret"}, &mockRunner{})

		status, _ := get(t, srv.URL+"/cron")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCronKeyReset(t *testing.T) {
	t.Parallel()

	t.Run("matching key rotates", func(t *testing.T) {
		t.Parallel()

		keys := &mockKeySource{key: "secret"}
		runner := &mockRunner{}
		srv := newServer(t, keys, runner)

		status, body := get(t, srv.URL+"/cron/secret/reset")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "done", body)

		current, err := keys.CronKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "rotated-secret", current)

		// the old key no longer triggers anything
		_, _ = get(t, srv.URL+"/cron/secret")
		assert.Zero(t, runner.count())
	})

	t.Run("wrong key does not rotate", func(t *testing.T) {
		t.Parallel()

		keys := &mockKeySource{key: "secret"}
		srv := newServer(t, keys, &mockRunner{})

		_, _ = get(t, srv.URL+"/cron/wrong/reset")

		current, err := keys.CronKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "secret", current)
	})
}
