package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/config"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
)

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   sendFunc
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

func (s *Sender) reportEmail(to, username string, rep report.Report) (*email.Email, error) {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Bond schedule: %s", rep.Bond)

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", username)
	fmt.Fprintf(&body, "Attached is the payment schedule of %s (%d periods).\n\n", rep.Bond, rep.Summary.TotalPeriods)
	fmt.Fprintf(&body, "Actual price: %s %s\n", rep.Summary.ActualPrice, rep.Currency)
	fmt.Fprintf(&body, "Emitter TCEA: %s\n", rep.Summary.EmitterTCEA)
	fmt.Fprintf(&body, "Emitter TCEA with shield: %s\n", rep.Summary.EmitterTCEAWithShield)
	fmt.Fprintf(&body, "Bondholder TREA: %s\n", rep.Summary.BondholderTREA)
	if c := rep.Interpretations.Conclusion; c != "" {
		fmt.Fprintf(&body, "\n%s\n", c)
	}
	if rep.Summary.Degraded {
		body.WriteString("\nSome yields could not be solved exactly and were approximated:\n")
		for _, w := range rep.Warnings {
			fmt.Fprintf(&body, "  - %s\n", w)
		}
	}
	body.WriteString("\nBest regards,\nFineCorp Bonds")
	e.Text = []byte(body.String())

	filename := strings.ReplaceAll(strings.ToLower(rep.Bond), " ", "_") + "_schedule.txt"
	if _, err := e.Attach(bytes.NewBufferString(rep.Text()), filename, "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("failed to attach schedule: %w", err)
	}
	return e, nil
}

// SendReport emails a rendered bond schedule
func (s *Sender) SendReport(to, username string, rep report.Report) error {
	e, err := s.reportEmail(to, username, rep)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send report to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
