package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/skillmart/internal/app/models"
)

// Message is a rendered email
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers rendered messages
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the transport
type Config struct {
	Provider    string // log | smtp | sendgrid
	FromName    string
	FromEmail   string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	UseTLS      bool
	SendGridKey string
	PublicURL   string
}

// NewTransport builds the transport named by cfg.Provider
func NewTransport(cfg Config, logger zerolog.Logger) (Transport, error) {
	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		return NewSMTPTransport(cfg, logger), nil
	case "sendgrid":
		return NewSendGridTransport(cfg, logger), nil
	case "", "log":
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// EmailService defines the notifications sent by the portal
type EmailService interface {
	SendApplicationDecision(ctx context.Context, reg *models.Registration, decision models.ReviewDecisionType, reason string) error
}

// Notifier renders notifications and hands them to a transport
type Notifier struct {
	transport Transport
	appName   string
	publicURL string
}

// NewEmailService creates a Notifier
func NewEmailService(transport Transport, cfg Config) *Notifier {
	name := cfg.FromName
	if name == "" {
		name = "SkillMart"
	}
	return &Notifier{transport: transport, appName: name, publicURL: strings.TrimRight(cfg.PublicURL, "/")}
}

var decisionTemplate = template.Must(template.New("decision").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Your instructor application</h2>
		<p>Hello {{.Name}},</p>
		{{if .Approved}}
		<p>Good news: your application to teach on {{.App}} has been approved. You can now create your first course.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.URL}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Start teaching</a>
		</div>
		{{else}}
		<p>Unfortunately your application to teach on {{.App}} was not approved.</p>
		<p><strong>Reason:</strong> {{.Reason}}</p>
		<p>You can update your application and submit it again at any time.</p>
		{{end}}
		<p>Best regards,<br>The {{.App}} Team</p>
	</div>
</body>
</html>
`))

// SendApplicationDecision tells the applicant about the admin decision
func (n *Notifier) SendApplicationDecision(ctx context.Context, reg *models.Registration, decision models.ReviewDecisionType, reason string) error {
	approved := decision == models.DecisionApprove
	data := struct {
		Name, App, URL, Reason string
		Approved               bool
	}{
		Name:     reg.FullName,
		App:      n.appName,
		URL:      n.publicURL + "/instructor/courses/new",
		Reason:   reason,
		Approved: approved,
	}

	var html bytes.Buffer
	if err := decisionTemplate.Execute(&html, data); err != nil {
		return fmt.Errorf("render decision email: %w", err)
	}

	subject := "Your instructor application was not approved"
	text := fmt.Sprintf("Hello %s,\n\nYour application was not approved.\nReason: %s\n", reg.FullName, reason)
	if approved {
		subject = "Your instructor application was approved"
		text = fmt.Sprintf("Hello %s,\n\nYour application was approved. Start teaching at %s\n", reg.FullName, data.URL)
	}

	return n.transport.Send(ctx, Message{
		To:      reg.Email,
		ToName:  reg.FullName,
		Subject: fmt.Sprintf("[%s] %s", n.appName, subject),
		HTML:    html.String(),
		Text:    text,
	})
}
