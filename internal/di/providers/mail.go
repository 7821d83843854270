package providers

import (
	"github.com/samber/do/v2"

	"github.com/abdotaker608/golden-pens-api/internal/config"
	"github.com/abdotaker608/golden-pens-api/internal/logger"
	"github.com/abdotaker608/golden-pens-api/internal/mail"
)

// MailerHandle wraps the configured mail delivery backend.
type MailerHandle struct {
	mail.Mailer
}

// ProvideMailer provides the outbound mail backend. Without an SMTP relay
// configured, messages are logged instead of sent.
func ProvideMailer(i do.Injector) (*MailerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Mail.SMTPAddr == "" {
		log.Info("No SMTP relay configured, logging outbound mail")
		return &MailerHandle{Mailer: mail.NewLogMailer(log.Logger)}, nil
	}

	log.Info("SMTP relay configured", "addr", cfg.Mail.SMTPAddr, "from", cfg.Mail.FromAddress)
	return &MailerHandle{Mailer: mail.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.FromAddress)}, nil
}
