package mock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantkulkarni1234/website/internal/payment"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateSession_RedirectsToSuccessURL(t *testing.T) {
	p := New(0, newTestLogger())

	sess, err := p.CreateSession(context.Background(), &payment.SessionInput{
		SuccessURL:  "https://hexstrike.dev/checkout/success?ref=cart",
		TotalAmount: 8497,
		Currency:    "usd",
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.ID, "mock_cs_"))
	assert.Contains(t, sess.RedirectURL, "https://hexstrike.dev/checkout/success?")
	assert.Contains(t, sess.RedirectURL, "ref=cart")
	assert.Contains(t, sess.RedirectURL, "session_id="+sess.ID)
}

func TestCreateSession_UniqueIDs(t *testing.T) {
	p := New(0, newTestLogger())
	in := &payment.SessionInput{SuccessURL: "https://hexstrike.dev/ok"}

	a, err := p.CreateSession(context.Background(), in)
	require.NoError(t, err)
	b, err := p.CreateSession(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateSession_HonoursContextDeadline(t *testing.T) {
	p := New(time.Second, newTestLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.CreateSession(ctx, &payment.SessionInput{SuccessURL: "https://hexstrike.dev/ok"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
