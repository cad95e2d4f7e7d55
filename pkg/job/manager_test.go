package job

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_NilPool(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)

	_, err = NewEnqueuer(nil, nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestParseCronSchedule(t *testing.T) {
	t.Parallel()

	t.Run("sunday morning", func(t *testing.T) {
		t.Parallel()

		schedule, err := parseCronSchedule("0 9 * * 0")
		require.NoError(t, err)

		// Wednesday 2026-10-14 12:00 UTC.
		next := schedule.Next(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), next)
		assert.Equal(t, time.Date(2026, 10, 25, 9, 0, 0, 0, time.UTC), schedule.Next(next))
	})

	t.Run("invalid expressions", func(t *testing.T) {
		t.Parallel()

		for _, expr := range []string{"", "* * *", "* * * * * *", "60 * * * *", "* * * * 8", "not a cron expression"} {
			_, err := parseCronSchedule(expr)
			assert.Error(t, err, expr)
		}
	})
}

func TestBuildJobArgs(t *testing.T) {
	t.Parallel()

	t.Run("nil payload", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("weekly_quote", nil)
		require.NoError(t, err)
		assert.Equal(t, "weekly_quote", args.TaskName)
		assert.Empty(t, args.Payload)
		assert.Equal(t, "sunday4k:task", args.Kind())
		assert.False(t, opts.UniqueOpts.ByArgs)
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()

		_, _, err := buildJobArgs("send_email", map[string]any{"ch": make(chan int)})
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("all options", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		payload := sendEmailPayload{Template: "weekly_quote", To: "ann@example.com"}

		args, opts, err := buildJobArgs("send_email", payload,
			InQueue("email"),
			InQueue(""),
			ScheduledAt(at),
			MaxAttempts(5),
			MaxAttempts(0),
			Priority(2),
			Tags("weekly"),
			Tags("quote"),
			UniqueFor(7*24*time.Hour),
			UniqueKey("weekly_quote:ann@example.com:2026-10-18"),
		)
		require.NoError(t, err)

		assert.Equal(t, "weekly_quote:ann@example.com:2026-10-18", args.UniqueKey)
		assert.Equal(t, "email", opts.Queue)
		assert.Equal(t, at, opts.ScheduledAt)
		assert.Equal(t, 5, opts.MaxAttempts)
		assert.Equal(t, 2, opts.Priority)
		assert.Equal(t, []string{"weekly", "quote"}, opts.Tags)
		assert.True(t, opts.UniqueOpts.ByArgs)
		assert.Equal(t, 7*24*time.Hour, opts.UniqueOpts.ByPeriod)

		var decoded sendEmailPayload
		require.NoError(t, json.Unmarshal(args.Payload, &decoded))
		assert.Equal(t, payload, decoded)
	})

	t.Run("unique key without window is ignored", func(t *testing.T) {
		t.Parallel()

		args, opts, err := buildJobArgs("send_email", nil, UniqueKey("k"))
		require.NoError(t, err)
		assert.Empty(t, args.UniqueKey)
		assert.False(t, opts.UniqueOpts.ByArgs)
	})

	t.Run("scheduled in", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		_, opts, err := buildJobArgs("send_email", nil, ScheduledIn(time.Hour))
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(time.Hour), opts.ScheduledAt, time.Second)
	})
}
