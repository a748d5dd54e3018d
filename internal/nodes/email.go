package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const defaultEmailSubject = "Workflow Notification"

type emailConfig struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Cc           string `json:"cc"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	IsHtml       bool   `json:"isHtml"`
	SmtpServer   string `json:"smtpServer"`
	SmtpPort     int    `json:"smtpPort"`
	SmtpUsername string `json:"smtpUsername"`
	SmtpPassword string `json:"smtpPassword"`
	UseSsl       *bool  `json:"useSsl"`
}

// EmailExecutor sends one message over SMTP. Unset SMTP settings fall back to Defaults.
type EmailExecutor struct {
	Defaults SMTPDefaults
	Clock    core.Clock
}

func (e *EmailExecutor) Execute(ctx context.Context, node *domain.Node, ectx *core.ExecutionContext) (any, error) {
	cfg, err := decodeConfig[emailConfig](node)
	if err != nil {
		return nil, err
	}
	e.applyDefaults(&cfg)

	to := splitRecipients(cfg.To)
	if len(to) == 0 {
		return nil, configError(node.NodeType, "at least one recipient is required in to")
	}
	cc := splitRecipients(cfg.Cc)

	msg := mail.NewMsg()
	if err := msg.From(cfg.From); err != nil {
		return nil, configError(node.NodeType, "invalid from address %q: %v", cfg.From, err)
	}
	if err := msg.To(to...); err != nil {
		return nil, configError(node.NodeType, "invalid to address: %v", err)
	}
	if len(cc) > 0 {
		if err := msg.Cc(cc...); err != nil {
			return nil, configError(node.NodeType, "invalid cc address: %v", err)
		}
	}
	msg.Subject(cfg.Subject)
	if cfg.IsHtml {
		msg.SetBodyString(mail.TypeTextHTML, cfg.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, cfg.Body)
	}

	client, err := mail.NewClient(cfg.SmtpServer, e.clientOptions(cfg)...)
	if err != nil {
		return nil, configError(node.NodeType, "invalid smtp settings: %v", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return map[string]any{
		"success": true,
		"to":      strings.Join(to, "; "),
		"subject": cfg.Subject,
		"sentAt":  e.Clock.Now().UTC(),
	}, nil
}

func (e *EmailExecutor) applyDefaults(cfg *emailConfig) {
	if cfg.SmtpServer == "" {
		cfg.SmtpServer = e.Defaults.Host
	}
	if cfg.SmtpServer == "" {
		cfg.SmtpServer = "localhost"
	}
	if cfg.SmtpPort == 0 {
		cfg.SmtpPort = e.Defaults.Port
	}
	if cfg.SmtpPort == 0 {
		cfg.SmtpPort = 25
	}
	if cfg.SmtpUsername == "" && cfg.SmtpPassword == "" {
		cfg.SmtpUsername = e.Defaults.Username
		cfg.SmtpPassword = e.Defaults.Password
	}
	if cfg.From == "" {
		cfg.From = e.Defaults.From
	}
	if cfg.Subject == "" {
		cfg.Subject = defaultEmailSubject
	}
}

func (e *EmailExecutor) clientOptions(cfg emailConfig) []mail.Option {
	hasCredentials := cfg.SmtpUsername != "" && cfg.SmtpPassword != ""
	useSsl := hasCredentials
	if cfg.UseSsl != nil {
		useSsl = *cfg.UseSsl
	}

	opts := []mail.Option{mail.WithPort(cfg.SmtpPort)}
	switch {
	case useSsl && cfg.SmtpPort == 465:
		opts = append(opts, mail.WithSSL())
	case useSsl:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if hasCredentials {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SmtpUsername),
			mail.WithPassword(cfg.SmtpPassword),
		)
	}
	return opts
}

// splitRecipients accepts addresses separated by ';' or ','.
func splitRecipients(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
