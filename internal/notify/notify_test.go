package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"cityvoice/backend/internal/localization"
	"cityvoice/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
	name string
}

func (m *MockNotifier) Name() string { return m.name }

func (m *MockNotifier) Notify(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, ev models.TriageEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(message interface{}) error {
	args := m.Called(message)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func testLocalizer() *localization.Localizer {
	return localization.NewStaticLocalizer(map[string]map[string]string{
		"en": {
			"status_Pending":          "Pending",
			"status_Resolved":         "Resolved",
			"status_Manual Review":    "Awaiting review",
			"email_subject_submitted": "We received your report",
			"email_subject_status":    "Your report was updated",
			"email_subject_message":   "New message about your report",
			"notify_submitted":        "Report %q received, status %s.",
			"notify_submitted_review": "Report %q received and held for review.",
			"notify_status":           "Report %q moved from %s to %s.",
			"notify_message":          "Message on %q: %s",
			"notify_trust_up":         "Trust +%d.",
			"notify_trust_down":       "Trust -%d.",
		},
		"uk": {
			"notify_status": "Звернення %q: %s -> %s.",
		},
	})
}

func statusEvent() models.TriageEvent {
	return models.TriageEvent{
		Type:       models.EventReportStatus,
		ReportID:   "r-1",
		Title:      "Broken streetlight",
		FromStatus: models.StatusPending,
		Status:     models.StatusResolved,
		TrustDelta: 1,
		OccurredAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestMulti_ContinuesAfterFailure(t *testing.T) {
	failing := &MockNotifier{name: "failing"}
	healthy := &MockNotifier{name: "healthy"}
	n := Notification{Event: statusEvent()}

	failing.On("Notify", mock.Anything, n).Return(errors.New("down"))
	healthy.On("Notify", mock.Anything, n).Return(nil)

	m := NewMulti(failing, nil, healthy)

	assert.NoError(t, m.Notify(context.Background(), n))
	assert.Equal(t, []string{"failing", "healthy"}, m.Channels())
	failing.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestRedisNotifier(t *testing.T) {
	pub := new(MockEventPublisher)
	ev := statusEvent()
	pub.On("PublishEvent", mock.Anything, ev).Return(nil)

	err := NewRedisNotifier(pub).Notify(context.Background(), Notification{Event: ev})

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestAMQPNotifier(t *testing.T) {
	pub := new(MockMessagePublisher)
	ev := statusEvent()
	pub.On("Publish", ev).Return(nil)

	err := NewAMQPNotifier(pub).Notify(context.Background(), Notification{Event: ev})

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestAMQPNotifier_CancelledContext(t *testing.T) {
	pub := new(MockMessagePublisher)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewAMQPNotifier(pub).Notify(ctx, Notification{Event: statusEvent()})

	assert.ErrorIs(t, err, context.Canceled)
	pub.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestCompose(t *testing.T) {
	loc := testLocalizer()

	subject, body := Compose(loc, Notification{Event: statusEvent()})
	assert.Equal(t, "Your report was updated", subject)
	assert.Equal(t, "Report \"Broken streetlight\" moved from Pending to Resolved.\nTrust +1.", body)

	ev := statusEvent()
	ev.Type = models.EventReportSubmitted
	ev.Status = models.StatusManualReview
	ev.ManualReview = true
	ev.TrustDelta = 0
	subject, body = Compose(loc, Notification{Event: ev})
	assert.Equal(t, "We received your report", subject)
	assert.Equal(t, "Report \"Broken streetlight\" received and held for review.", body)

	ev = statusEvent()
	ev.Type = models.EventReportMessage
	ev.Message = "Crew scheduled for Monday"
	ev.TrustDelta = -3
	_, body = Compose(loc, Notification{Event: ev})
	assert.Equal(t, "Message on \"Broken streetlight\": Crew scheduled for Monday\nTrust -3.", body)
}

func TestCompose_CitizenLanguage(t *testing.T) {
	ev := statusEvent()
	ev.TrustDelta = 0

	_, body := Compose(testLocalizer(), Notification{Event: ev, Citizen: &models.Citizen{Language: "uk"}})

	assert.Equal(t, "Звернення \"Broken streetlight\": Pending -> Resolved.", body)
}

func TestEmailNotifier(t *testing.T) {
	var sent *mail.SGMailV3
	e := &EmailNotifier{
		fromName:  "CityVoice",
		fromEmail: "no-reply@cityvoice.local",
		loc:       testLocalizer(),
		send: func(m *mail.SGMailV3) error {
			sent = m
			return nil
		},
	}

	citizen := &models.Citizen{ID: "c-1", Email: "resident@example.org", Language: "en"}
	require.NoError(t, e.Notify(context.Background(), Notification{Event: statusEvent(), Citizen: citizen}))

	require.NotNil(t, sent)
	assert.Equal(t, "Your report was updated", sent.Subject)
	assert.Equal(t, "no-reply@cityvoice.local", sent.From.Address)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "resident@example.org", sent.Personalizations[0].To[0].Address)
	require.Len(t, sent.Content, 1)
	assert.Contains(t, sent.Content[0].Value, "moved from Pending to Resolved")
}

func TestEmailNotifier_SkipsWithoutAddress(t *testing.T) {
	called := false
	e := &EmailNotifier{loc: testLocalizer(), send: func(*mail.SGMailV3) error {
		called = true
		return nil
	}}

	assert.NoError(t, e.Notify(context.Background(), Notification{Event: statusEvent()}))
	assert.NoError(t, e.Notify(context.Background(), Notification{Event: statusEvent(), Citizen: &models.Citizen{}}))
	assert.False(t, called)
}

func TestTelegramNotifier(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 4242 && msg.Text != ""
	})).Return(tgbotapi.Message{}, nil)

	n := NewTelegramNotifier(sender, testLocalizer())
	err := n.Notify(context.Background(), Notification{
		Event:   statusEvent(),
		Citizen: &models.Citizen{TelegramChatID: 4242},
	})

	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestTelegramNotifier_SkipsUnlinked(t *testing.T) {
	sender := new(MockSender)

	err := NewTelegramNotifier(sender, testLocalizer()).Notify(context.Background(), Notification{
		Event:   statusEvent(),
		Citizen: &models.Citizen{},
	})

	assert.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything)
}
