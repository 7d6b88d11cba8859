package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

const recoveryFailedTemplate = `
<p>A recuperação do lead <b>{{.LeadName}}</b> ({{.LeadEmail}}) esgotou as tentativas de entrega.</p>
<p>Produto: {{.ProductName}}</p>
<p>O lead foi marcado como <b>failed</b>. Verifique a conexão da instância de WhatsApp no painel.</p>
`

func NewAlertSender(host string, port int, user, password, to string) *AlertSender {
	return &AlertSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		To:       to,
	}
}

// SendRecoveryFailed avisa o operador que um lead foi dado como perdido.
func (s *AlertSender) SendRecoveryFailed(leadEmail, leadName, productName string) error {
	if s.Host == "" || s.To == "" {
		return fmt.Errorf("alertas por email não configurados")
	}

	data := RecoveryFailedData{
		LeadName:    leadName,
		LeadEmail:   leadEmail,
		ProductName: productName,
	}

	t, err := template.New("recovery_failed").Parse(recoveryFailedTemplate)
	if err != nil {
		return fmt.Errorf("erro ao processar template de alerta: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", "alertas@recupa.ai")
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("⚠️ Recuperação falhou: %s", leadEmail))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
