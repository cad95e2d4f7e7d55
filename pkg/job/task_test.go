package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendEmailPayload struct {
	Template string `json:"template"`
	To       string `json:"to"`
	QuoteID  string `json:"quote_id,omitempty"`
}

type sendEmailTask struct {
	err      error
	payload  sendEmailPayload
	executed bool
}

func (t *sendEmailTask) Name() string { return "send_email" }

func (t *sendEmailTask) Handle(_ context.Context, p sendEmailPayload) error {
	t.executed = true
	t.payload = p
	return t.err
}

type weeklyTask struct {
	calls int
}

func (t *weeklyTask) Name() string     { return "weekly_quote" }
func (t *weeklyTask) Schedule() string { return "0 9 * * 0" }
func (t *weeklyTask) Handle(context.Context) error {
	t.calls++
	return nil
}

func TestTaskRegistry(t *testing.T) {
	t.Parallel()

	registry := newTaskRegistry()
	assert.Empty(t, registry.names())

	registry.register("weekly_quote", scheduledTaskExecutor(func(context.Context) error { return nil }))
	registry.register("send_email", newTaskWrapper[sendEmailPayload](&sendEmailTask{}))

	executor, ok := registry.get("send_email")
	assert.True(t, ok)
	assert.NotNil(t, executor)

	_, ok = registry.get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"send_email", "weekly_quote"}, registry.names())
}

func TestTaskWrapper_Execute(t *testing.T) {
	t.Parallel()

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()

		task := &sendEmailTask{}
		raw, err := json.Marshal(sendEmailPayload{Template: "welcome", To: "ann@example.com"})
		require.NoError(t, err)

		require.NoError(t, newTaskWrapper[sendEmailPayload](task).Execute(context.Background(), raw))
		assert.True(t, task.executed)
		assert.Equal(t, "welcome", task.payload.Template)
		assert.Equal(t, "ann@example.com", task.payload.To)
	})

	t.Run("empty and null payloads", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
			task := &sendEmailTask{}
			require.NoError(t, newTaskWrapper[sendEmailPayload](task).Execute(context.Background(), raw))
			assert.True(t, task.executed)
			assert.Equal(t, sendEmailPayload{}, task.payload)
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()

		task := &sendEmailTask{}
		err := newTaskWrapper[sendEmailPayload](task).Execute(context.Background(), []byte("invalid json"))
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.False(t, task.executed)
	})

	t.Run("handler error", func(t *testing.T) {
		t.Parallel()

		taskErr := errors.New("resend: 503")
		task := &sendEmailTask{err: taskErr}
		err := newTaskWrapper[sendEmailPayload](task).Execute(context.Background(), nil)
		assert.ErrorIs(t, err, taskErr)
	})
}

func TestScheduledTaskExecutor(t *testing.T) {
	t.Parallel()

	task := &weeklyTask{}
	executor := scheduledTaskExecutor(task.Handle)

	require.NoError(t, executor.Execute(context.Background(), []byte(`{"ignored":true}`)))
	assert.Equal(t, 1, task.calls)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	cfg := newConfig()
	for _, opt := range []Option{
		WithTask(&sendEmailTask{}),
		WithScheduledTask(&weeklyTask{}),
		WithQueue("email", 5),
		WithQueue("", 3),
		WithQueue("reports", 0),
		WithMaxWorkers(20),
		WithMaxWorkers(-1),
		WithLogger(nil),
		WithRunOnStart(true),
	} {
		opt(cfg)
	}

	_, ok := cfg.registry.get("send_email")
	assert.True(t, ok)
	require.Len(t, cfg.schedules, 1)
	assert.Equal(t, "weekly_quote", cfg.schedules[0].name)
	assert.Equal(t, "0 9 * * 0", cfg.schedules[0].schedule)
	assert.Equal(t, map[string]int{"email": 5}, cfg.queues)
	assert.Equal(t, 20, cfg.maxWorkers)
	assert.Nil(t, cfg.logger)
	assert.True(t, cfg.runOnStart)
}

func TestBuildPeriodicJobs(t *testing.T) {
	t.Parallel()

	t.Run("registers scheduled tasks", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		WithScheduledTask(&weeklyTask{})(cfg)

		jobs, err := buildPeriodicJobs(cfg)
		require.NoError(t, err)
		assert.Len(t, jobs, 1)

		_, ok := cfg.registry.get("weekly_quote")
		assert.True(t, ok)
	})

	t.Run("rejects invalid schedules", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig()
		cfg.schedules = append(cfg.schedules, scheduleConfig{name: "broken", schedule: "every sunday"})

		_, err := buildPeriodicJobs(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})
}
