package notify

import (
	"context"
	"fmt"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/runstore"
	"net/smtp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("itdashboard.lib.notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
	// only send when a run has mismatches
	OnlyFailures bool `json:"only_failures"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

func mismatchCount(run runstore.Run) int {
	n := 0
	for _, f := range run.Findings {
		if f.Verdict != reconcile.Match {
			n++
		}
	}
	return n
}

func Subject(run runstore.Run) string {
	mismatches := mismatchCount(run)
	if mismatches == 0 {
		return fmt.Sprintf("[itdashboard] %s: all %d business cases match", run.Agency, len(run.Findings))
	}
	return fmt.Sprintf("[itdashboard] %s: %d of %d business cases do not match", run.Agency, mismatches, len(run.Findings))
}

// Body renders the findings of a run as a plain text table.
func Body(run runstore.Run) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"UII", "Verdict", "Closest title", "Note"})
	for _, f := range run.Findings {
		if f.Verdict == reconcile.Match {
			continue
		}
		note := f.Error
		if f.Orphan {
			note = strings.TrimSpace("no sheet row " + note)
		}
		closest := ""
		if f.ClosestTitle != "" {
			closest = fmt.Sprintf("%s (%.2f)", f.ClosestTitle, f.Similarity)
		}
		t.AppendRow(table.Row{f.UII, f.Verdict.String(), closest, note})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Run %s against %s\n", run.ID, run.SiteUrl)
	fmt.Fprintf(&b, "Agency: %s (sheet %q)\n", run.Agency, run.Sheet)
	fmt.Fprintf(&b, "Finished: %s\n\n", run.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	if mismatchCount(run) == 0 {
		b.WriteString("Every business case matches the investments sheet.\n")
		return b.String()
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// SendReport mails the outcome of a run. It does nothing when the mailer is
// not configured, or when only failures are wanted and the run passed.
func (m Mailer) SendReport(ctx context.Context, run runstore.Run) error {
	if !m.config.Enabled() {
		return nil
	}
	if m.config.OnlyFailures && mismatchCount(run) == 0 {
		return nil
	}

	_, span := tracer.Start(ctx, "SendReport")
	defer span.End()

	mail := email.NewEmail()
	mail.From = m.config.EmailAddress
	mail.To = m.config.To
	mail.Subject = Subject(run)
	mail.Text = []byte(Body(run))

	var auth smtp.Auth
	if m.config.Password != "" {
		auth = smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server)
	}
	err := mail.Send(fmt.Sprintf("%s:%d", m.config.Server, m.config.Port), auth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
