package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleTags_CreatesPresenceOnlyTags(t *testing.T) {
	t.Parallel()

	tags := SimpleTags("weekly_quote", "marketing")

	require.Len(t, tags, 2)
	require.Equal(t, struct{}{}, tags["weekly_quote"])
	require.Equal(t, struct{}{}, tags["marketing"])
	require.Empty(t, SimpleTags())
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Sunday4K <hello@sunday4k.com>", Recipient("Sunday4K", "hello@sunday4k.com"))
	require.Equal(t, "hello@sunday4k.com", Recipient("", "hello@sunday4k.com"))
}

func TestEmail_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Email {
		return &Email{To: []string{"a@b.com"}, Subject: "Hi", HTML: "<p>Hi</p>"}
	}

	tests := []struct {
		name   string
		mutate func(*Email)
		err    error
	}{
		{name: "valid", mutate: func(*Email) {}},
		{name: "no recipients", mutate: func(e *Email) { e.To = nil }, err: ErrNoRecipient},
		{name: "blank recipient", mutate: func(e *Email) { e.To = []string{" "} }, err: ErrNoRecipient},
		{name: "blank subject", mutate: func(e *Email) { e.Subject = "  " }, err: ErrNoSubject},
		{name: "no html", mutate: func(e *Email) { e.HTML = "" }, err: ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}

	var nilEmail *Email
	require.ErrorIs(t, nilEmail.Validate(), ErrNoRecipient)
}
