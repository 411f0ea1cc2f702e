package registration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"formulier.link/models"
)

type recordingMailer struct {
	messages []*Message
}

func (m *recordingMailer) Send(message *Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func testSubmission() *models.Submission {
	completed := time.Date(2022, time.February, 21, 17, 0, 0, 0, time.UTC)
	definition := models.FormDefinition{
		UUID: uuid.New(),
		Slug: "stap-1",
		Name: "Stap 1",
		Configuration: datatypes.JSON([]byte(`{
			"components": [
				{"type": "textfield", "key": "naam", "label": "Naam"},
				{"type": "currency", "key": "bedrag", "label": "Bedrag"}
			]
		}`)),
	}
	form := models.Form{
		UUID:         uuid.New(),
		Slug:         "aanvraag",
		Name:         "Aanvraag",
		InternalName: "Aanvraag (intern)",
		Steps: []models.FormStep{
			{UUID: uuid.New(), Order: 0, FormDefinition: definition},
		},
	}
	return &models.Submission{
		UUID:                        uuid.New(),
		Form:                        form,
		Data:                        datatypes.JSONMap{"naam": "Jansen", "bedrag": "15.5"},
		CompletedAt:                 &completed,
		PublicRegistrationReference: "OF-123456",
	}
}

func TestEmailRegisterSubmission(t *testing.T) {
	mailer := &recordingMailer{}
	plugin := NewEmail(mailer)
	submission := testSubmission()
	options := datatypes.JSON([]byte(`{"to_emails": ["behandelaar@example.com"]}`))

	result, err := plugin.RegisterSubmission(context.Background(), submission, options)
	if err != nil {
		t.Fatalf("RegisterSubmission failed: %v", err)
	}
	if result != nil {
		t.Errorf("email backend must not produce a result, got %#v", result)
	}
	if len(mailer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mailer.messages))
	}

	msg := mailer.messages[0]
	if msg.To[0] != "behandelaar@example.com" {
		t.Errorf("unexpected recipient: %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "OF-123456") {
		t.Errorf("subject must contain the public reference: %q", msg.Subject)
	}
	if !strings.Contains(msg.Subject, "Aanvraag (intern)") {
		t.Errorf("subject must use the admin name: %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "Naam: Jansen") {
		t.Errorf("body must contain formatted data, got:\n%s", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "Bedrag: 15.50") {
		t.Errorf("currency must be formatted with two digits, got:\n%s", msg.TextBody)
	}
}

func TestEmailRegisterSubmissionRequiresRecipients(t *testing.T) {
	plugin := NewEmail(&recordingMailer{})
	_, err := plugin.RegisterSubmission(context.Background(), testSubmission(), datatypes.JSON([]byte(`{}`)))
	if err == nil {
		t.Fatal("expected an error for missing to_emails")
	}
}

func TestEmailAttachments(t *testing.T) {
	mailer := &recordingMailer{}
	plugin := NewEmail(mailer)
	options := datatypes.JSON([]byte(`{
		"to_emails": ["behandelaar@example.com"],
		"attachment_formats": ["csv", "xlsx"]
	}`))

	if _, err := plugin.RegisterSubmission(context.Background(), testSubmission(), options); err != nil {
		t.Fatalf("RegisterSubmission failed: %v", err)
	}

	msg := mailer.messages[0]
	if len(msg.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(msg.Attachments))
	}
	if !strings.HasSuffix(msg.Attachments[0].Filename, ".csv") {
		t.Errorf("first attachment should be csv: %q", msg.Attachments[0].Filename)
	}
	if !strings.Contains(string(msg.Attachments[0].Content), "Jansen") {
		t.Errorf("csv attachment must contain the submitted data")
	}
	if !strings.HasSuffix(msg.Attachments[1].Filename, ".xlsx") {
		t.Errorf("second attachment should be xlsx: %q", msg.Attachments[1].Filename)
	}
	if len(msg.Attachments[1].Content) == 0 {
		t.Errorf("xlsx attachment is empty")
	}
}

func TestEmailReferenceFromResult(t *testing.T) {
	plugin := NewEmail(&recordingMailer{})
	_, err := plugin.ReferenceFromResult(nil)
	if !errors.Is(err, ErrNoSubmissionReference) {
		t.Errorf("expected ErrNoSubmissionReference, got %v", err)
	}
}

func TestEmailUpdatePaymentStatus(t *testing.T) {
	mailer := &recordingMailer{}
	plugin := NewEmail(mailer)
	submission := testSubmission()
	submission.Payments = []models.SubmissionPayment{
		{Status: models.PaymentStatusCompleted, PublicOrderID: "DEMO-1"},
	}
	options := datatypes.JSON([]byte(`{
		"to_emails": ["behandelaar@example.com"],
		"payment_emails": ["financien@example.com"]
	}`))

	if err := plugin.UpdatePaymentStatus(context.Background(), submission, options); err != nil {
		t.Fatalf("UpdatePaymentStatus failed: %v", err)
	}

	msg := mailer.messages[0]
	if msg.To[0] != "financien@example.com" {
		t.Errorf("payment notification must go to payment_emails: %v", msg.To)
	}
	if !strings.Contains(msg.Subject, "ödeme alındı") {
		t.Errorf("subject must mention payment: %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "DEMO-1") {
		t.Errorf("body must contain the completed order id, got:\n%s", msg.TextBody)
	}
}

func TestEmailConfigActions(t *testing.T) {
	plugin := NewEmail(&recordingMailer{})
	actions := plugin.ConfigActions()
	if len(actions) != 1 {
		t.Fatalf("expected 1 config action, got %d", len(actions))
	}
	if actions[0].URL == "" || actions[0].Label == "" {
		t.Errorf("config action must have label and url: %+v", actions[0])
	}
}
