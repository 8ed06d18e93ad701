package email

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/skillmart/internal/app/models"
)

type recordingTransport struct {
	sent []Message
}

func (r *recordingTransport) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestApplicationDecisionEmails(t *testing.T) {
	tr := &recordingTransport{}
	n := NewEmailService(tr, Config{FromName: "SkillMart", PublicURL: "https://skillmart.test/"})
	reg := &models.Registration{RegistrationPayload: models.RegistrationPayload{FullName: "An", Email: "an@example.com"}}

	require.NoError(t, n.SendApplicationDecision(context.Background(), reg, models.DecisionReject, "Certificates are unreadable"))
	require.NoError(t, n.SendApplicationDecision(context.Background(), reg, models.DecisionApprove, ""))
	require.Len(t, tr.sent, 2)

	rejected := tr.sent[0]
	assert.Equal(t, "an@example.com", rejected.To)
	assert.Contains(t, rejected.Subject, "not approved")
	assert.Contains(t, rejected.HTML, "Certificates are unreadable")

	approved := tr.sent[1]
	assert.True(t, strings.HasPrefix(approved.Subject, "[SkillMart]"))
	assert.Contains(t, approved.HTML, "https://skillmart.test/instructor/courses/new")
}

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport(Config{Provider: "log"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogTransport{}, tr)

	tr, err = NewTransport(Config{Provider: "SendGrid", SendGridKey: "k"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SendGridTransport{}, tr)

	_, err = NewTransport(Config{Provider: "pigeon"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestBuildMessageHeaders(t *testing.T) {
	raw := string(buildMessage(Config{FromName: "SkillMart", FromEmail: "no-reply@skillmart.test"},
		Message{To: "an@example.com", ToName: "An", Subject: "Hi", HTML: "<p>x</p>"}))

	assert.True(t, strings.HasPrefix(raw, "From: SkillMart <no-reply@skillmart.test>\r\n"))
	assert.Contains(t, raw, "To: An <an@example.com>\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}
