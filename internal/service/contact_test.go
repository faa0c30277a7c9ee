package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vedantkulkarni1234/website/internal/domain"
	"github.com/vedantkulkarni1234/website/internal/event"
	"github.com/vedantkulkarni1234/website/pkg/validator"
)

func validContact() ContactInput {
	return ContactInput{
		Name:    "  Ada Hunter ",
		Email:   "ada@example.com",
		Subject: "Bundle licensing",
		Message: "Can the elite arsenal be shared across a team of four?",
	}
}

func TestContactSubmit_Success(t *testing.T) {
	sender := new(mockSender)
	producer, rec := newTestProducer()
	svc := NewContactService(sender, producer, newTestLogger())
	ctx := context.Background()

	sender.On("Send", ctx, mock.MatchedBy(func(m *domain.ContactMessage) bool {
		return m.Name == "Ada Hunter" && m.Email == "ada@example.com"
	})).Return(nil)

	msg, err := svc.Submit(ctx, validContact())

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.ReceivedAt.IsZero())
	assert.Equal(t, []string{event.TopicContactReceived}, rec.Topics())
	sender.AssertExpectations(t)
}

func TestContactSubmit_ValidationFailure(t *testing.T) {
	sender := new(mockSender)
	producer, rec := newTestProducer()
	svc := NewContactService(sender, producer, newTestLogger())

	in := validContact()
	in.Name = " A "
	in.Email = "nope"
	in.Message = "too short"

	_, err := svc.Submit(context.Background(), in)

	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := verr.Fields()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "message")
	assert.NotContains(t, fields, "subject")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	assert.Empty(t, rec.Topics())
}

func TestContactSubmit_WhitespaceOnlySubject(t *testing.T) {
	sender := new(mockSender)
	producer, _ := newTestProducer()
	svc := NewContactService(sender, producer, newTestLogger())

	in := validContact()
	in.Subject = "    "

	_, err := svc.Submit(context.Background(), in)

	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields(), "subject")
}

func TestContactSubmit_SenderFails(t *testing.T) {
	sender := new(mockSender)
	producer, rec := newTestProducer()
	svc := NewContactService(sender, producer, newTestLogger())

	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := svc.Submit(context.Background(), validContact())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "send contact message via mock")
	assert.Empty(t, rec.Topics())
}

func TestContactSubmit_PublishFailureTolerated(t *testing.T) {
	sender := new(mockSender)
	rec := &recordingPublisher{err: errors.New("broker unavailable")}
	svc := NewContactService(sender, event.NewProducer(rec, newTestLogger()), newTestLogger())

	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	msg, err := svc.Submit(context.Background(), validContact())

	require.NoError(t, err)
	assert.NotNil(t, msg)
}
