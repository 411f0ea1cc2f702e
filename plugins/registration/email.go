package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"gorm.io/datatypes"

	"formulier.link/models"
	"formulier.link/pkg/export"
	"formulier.link/pkg/formio"
)

// EmailPluginID e-posta kayıt plugin'inin identifier'ı.
const EmailPluginID = "email"

// EmailOptions formun registration_backend_options sütunundan çözülen
// plugin seçenekleri.
type EmailOptions struct {
	ToEmails          []string `json:"to_emails"`
	PaymentEmails     []string `json:"payment_emails"`
	AttachmentFormats []string `json:"attachment_formats"`
}

// EmailRegistration tamamlanan submission'ları e-posta ile iletir.
// Kendi kayıt referansını üretemez (ErrNoSubmissionReference);
// çağıran taraf dahili referans atar.
type EmailRegistration struct {
	mailer Mailer
}

// NewEmail e-posta kayıt plugin'ini kurar.
func NewEmail(mailer Mailer) *EmailRegistration {
	return &EmailRegistration{mailer: mailer}
}

func (p *EmailRegistration) Identifier() string  { return EmailPluginID }
func (p *EmailRegistration) VerboseName() string { return "E-posta kaydı" }
func (p *EmailRegistration) IsDemoPlugin() bool  { return false }

func parseEmailOptions(options datatypes.JSON) (*EmailOptions, error) {
	var opts EmailOptions
	if len(options) > 0 {
		if err := json.Unmarshal(options, &opts); err != nil {
			return nil, fmt.Errorf("e-posta seçenekleri çözülemedi: %w", err)
		}
	}
	if len(opts.ToEmails) == 0 {
		return nil, fmt.Errorf("to_emails seçeneği zorunlu")
	}
	return &opts, nil
}

// RegisterSubmission submission verisini formatlar ve kayıt e-postasını
// gönderir. E-posta backend'i bir result üretmez (nil döner).
func (p *EmailRegistration) RegisterSubmission(ctx context.Context, submission *models.Submission, options datatypes.JSON) (any, error) {
	opts, err := parseEmailOptions(options)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("[Formulier] %s - gönderim %s",
		submission.Form.AdminName(), submission.PublicRegistrationReference)

	if err := p.sendRegistrationEmail(opts.ToEmails, subject, submission, opts, nil); err != nil {
		return nil, err
	}
	return nil, nil
}

// sendRegistrationEmail kayıt ve ödeme bildirimlerinin ortak gönderim yolu.
func (p *EmailRegistration) sendRegistrationEmail(recipients []string, subject string, submission *models.Submission, opts *EmailOptions, extraLines []string) error {
	rows := displayRows(submission)

	var completedAt string
	if submission.CompletedAt != nil {
		completedAt = submission.CompletedAt.UTC().Format("15:04:05 02-01-2006")
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Form: %s\n", submission.Form.AdminName())
	fmt.Fprintf(&text, "Referans: %s\n", submission.PublicRegistrationReference)
	fmt.Fprintf(&text, "Tamamlanma: %s\n", completedAt)
	for _, line := range extraLines {
		text.WriteString(line + "\n")
	}
	text.WriteString("\nGönderilen veriler:\n")
	for _, row := range rows {
		fmt.Fprintf(&text, "- %s: %s\n", row.Label, row.Value)
	}

	var htmlBody strings.Builder
	htmlBody.WriteString("<table>")
	for _, row := range rows {
		fmt.Fprintf(&htmlBody, "<tr><th>%s</th><td>%s</td></tr>",
			html.EscapeString(row.Label), html.EscapeString(row.Value))
	}
	htmlBody.WriteString("</table>")

	attachments, err := p.buildAttachments(submission, opts, rows)
	if err != nil {
		return err
	}

	return p.mailer.Send(&Message{
		Subject:     subject,
		To:          recipients,
		TextBody:    text.String(),
		HTMLBody:    htmlBody.String(),
		Attachments: attachments,
	})
}

// displayRows form adımlarındaki bileşenleri sırayla gezerek gönderi
// verisini etiket + formatlanmış değer satırlarına çevirir (bkz. formio).
func displayRows(submission *models.Submission) []export.Row {
	var rows []export.Row
	for _, step := range submission.Form.Steps {
		for _, component := range step.FormDefinition.FlattenedComponents() {
			key, _ := component["key"].(string)
			if key == "" {
				continue
			}
			label, _ := component["label"].(string)
			if label == "" {
				label = key
			}
			value, ok := submission.Data[key]
			if !ok {
				continue
			}
			if componentType, _ := component["type"].(string); componentType == "file" {
				rows = append(rows, export.Row{Label: label, Value: fileNames(value)})
				continue
			}
			rows = append(rows, export.Row{Label: label, Value: formio.FormatValue(component, value)})
		}
	}
	return rows
}

// fileNames file bileşeninin ek tanım listesinden dosya adlarını çıkarır.
func fileNames(value any) string {
	files, ok := value.([]any)
	if !ok {
		return ""
	}
	var names []string
	for _, raw := range files {
		file, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := file["originalName"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func (p *EmailRegistration) buildAttachments(submission *models.Submission, opts *EmailOptions, rows []export.Row) ([]Attachment, error) {
	var attachments []Attachment
	for _, format := range opts.AttachmentFormats {
		switch format {
		case export.FormatCSV:
			content, err := export.CSV(rows)
			if err != nil {
				return nil, err
			}
			attachments = append(attachments, Attachment{
				Filename: fmt.Sprintf("%s - gönderim.csv", submission.Form.AdminName()),
				MIMEType: export.MIMEType(format),
				Content:  content,
			})
		case export.FormatXLSX:
			content, err := export.XLSX(rows)
			if err != nil {
				return nil, err
			}
			attachments = append(attachments, Attachment{
				Filename: fmt.Sprintf("%s - gönderim.xlsx", submission.Form.AdminName()),
				MIMEType: export.MIMEType(format),
				Content:  content,
			})
		case export.FormatPDF:
			if submission.Report == nil || len(submission.Report.Content) == 0 {
				continue
			}
			attachments = append(attachments, Attachment{
				Filename: submission.Report.Title + ".pdf",
				MIMEType: export.MIMEType(format),
				Content:  submission.Report.Content,
			})
		}
	}
	return attachments, nil
}

// ReferenceFromResult e-posta backend'i kendine ait referans üretmez;
// placeholder döndürmek yerine bunu açıkça bildirir.
func (p *EmailRegistration) ReferenceFromResult(result any) (string, error) {
	return "", fmt.Errorf("%w: e-posta plugin'i", ErrNoSubmissionReference)
}

// UpdatePaymentStatus ödeme alındı bildirimini, kayıt e-postası yolunu
// farklı konu ve ek satırlarla yeniden kullanarak gönderir.
func (p *EmailRegistration) UpdatePaymentStatus(ctx context.Context, submission *models.Submission, options datatypes.JSON) error {
	opts, err := parseEmailOptions(options)
	if err != nil {
		return err
	}

	recipients := opts.PaymentEmails
	if len(recipients) == 0 {
		recipients = opts.ToEmails
	}

	subject := fmt.Sprintf("[Formulier] %s - ödeme alındı %s",
		submission.Form.AdminName(), submission.PublicRegistrationReference)

	extraLines := []string{
		"Ödeme tamamlandı: " + time.Now().UTC().Format("15:04:05 02-01-2006"),
		"Sipariş: " + strings.Join(submission.CompletedPublicOrderIDs(), ", "),
	}
	return p.sendRegistrationEmail(recipients, subject, submission, opts, extraLines)
}

// CheckConfig mailer konfigürasyonunu doğrular.
func (p *EmailRegistration) CheckConfig() error {
	if checker, ok := p.mailer.(interface{ CheckConfig() error }); ok {
		return checker.CheckConfig()
	}
	return nil
}

// ConfigActions admin ekranındaki tanı aksiyonları.
func (p *EmailRegistration) ConfigActions() []ConfigAction {
	return []ConfigAction{
		{Label: "Test e-postası gönder", URL: "/panel/email/test"},
	}
}

var _ Plugin = (*EmailRegistration)(nil)
