package services

import (
	"context"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// EmailService manages opt-in status, templates and sending.
type EmailService struct {
	api Requester
}

// EmailTemplate fields. Categories is a comma separated list.
type EmailTemplate struct {
	Name         string
	Categories   string
	FromAddress  string
	ToAddress    string
	CCAddress    string
	BCCAddress   string
	Subject      string
	TextBody     string
	HTMLBody     string
	ContentType  string
	MergeContext string
}

type Email struct {
	ContactIDs   []int
	FromAddress  string
	ToAddress    string
	CCAddresses  string
	BCCAddresses string
	ContentType  string
	Subject      string
	HTMLBody     string
	TextBody     string
}

// AttachedEmail is an email recorded in a contact's history without being sent.
type AttachedEmail struct {
	ContactID     int
	FromName      string
	FromAddress   string
	ToAddress     string
	CCAddresses   string
	BCCAddresses  string
	ContentType   string
	Subject       string
	HTMLBody      string
	TextBody      string
	Header        string
	ReceivedDate  time.Time
	SentDate      time.Time
	EmailSentType int
}

func (s *EmailService) OptIn(ctx context.Context, email, reason string) (bool, error) {
	a := new(args).
		add(types.String(email, true)).
		add(types.String(reason, true))
	return invoke[bool](ctx, s.api, "APIEmailService.optIn", a)
}

func (s *EmailService) OptOut(ctx context.Context, email, reason string) (bool, error) {
	a := new(args).
		add(types.String(email, true)).
		add(types.String(reason, true))
	return invoke[bool](ctx, s.api, "APIEmailService.optOut", a)
}

// GetOptStatus returns 0 for opted out or non-marketable, 1 for single opt-in and
// 2 for double opt-in.
func (s *EmailService) GetOptStatus(ctx context.Context, email string) (int, error) {
	a := new(args).add(types.String(email, true))
	return invoke[int](ctx, s.api, "APIEmailService.getOptStatus", a)
}

func (s *EmailService) AddEmailTemplate(ctx context.Context, t EmailTemplate) (int, error) {
	return invoke[int](ctx, s.api, "APIEmailService.addEmailTemplate", templateArgs(new(args), t))
}

func (s *EmailService) GetEmailTemplate(ctx context.Context, templateID int) (map[string]any, error) {
	a := new(args).add(types.Integer(templateID, true))
	return invoke[map[string]any](ctx, s.api, "APIEmailService.getEmailTemplate", a)
}

func (s *EmailService) UpdateEmailTemplate(ctx context.Context, templateID int, t EmailTemplate) (bool, error) {
	a := new(args).add(types.Integer(templateID, true))
	return invoke[bool](ctx, s.api, "APIEmailService.updateEmailTemplate", templateArgs(a, t))
}

// SendTemplate sends a stored template to every contact given.
func (s *EmailService) SendTemplate(ctx context.Context, contactIDs []int, templateID int) (bool, error) {
	a := new(args).
		add(types.Array(types.Integer, contactIDs, true)).
		add(types.Integer(templateID, true))
	return invoke[bool](ctx, s.api, "APIEmailService.sendEmail", a)
}

// Send sends an ad hoc email to every contact in e.ContactIDs.
func (s *EmailService) Send(ctx context.Context, e Email) (bool, error) {
	a := new(args).
		add(types.Array(types.Integer, e.ContactIDs, true)).
		add(types.String(e.FromAddress, true)).
		add(types.String(e.ToAddress, true)).
		add(types.String(e.CCAddresses, true)).
		add(types.String(e.BCCAddresses, true)).
		add(types.String(e.ContentType, true)).
		add(types.String(e.Subject, true)).
		add(types.String(e.HTMLBody, true)).
		add(types.String(e.TextBody, true))
	return invoke[bool](ctx, s.api, "APIEmailService.sendEmail", a)
}

func (s *EmailService) AttachEmail(ctx context.Context, e AttachedEmail) (bool, error) {
	a := new(args).
		add(types.Integer(e.ContactID, true)).
		add(types.String(e.FromName, true)).
		add(types.String(e.FromAddress, true)).
		add(types.String(e.ToAddress, true)).
		add(types.String(e.CCAddresses, true)).
		add(types.String(e.BCCAddresses, true)).
		add(types.String(e.ContentType, true)).
		add(types.String(e.Subject, true)).
		add(types.String(e.HTMLBody, true)).
		add(types.String(e.TextBody, true)).
		add(types.String(e.Header, true)).
		add(types.String(e.ReceivedDate, true)).
		add(types.String(e.SentDate, true)).
		add(types.Integer(e.EmailSentType, true))
	return invoke[bool](ctx, s.api, "APIEmailService.attachEmail", a)
}

func templateArgs(a *args, t EmailTemplate) *args {
	return a.
		add(types.String(t.Name, true)).
		add(types.String(t.Categories, true)).
		add(types.String(t.FromAddress, true)).
		add(types.String(t.ToAddress, true)).
		add(types.String(t.CCAddress, true)).
		add(types.String(t.BCCAddress, true)).
		add(types.String(t.Subject, true)).
		add(types.String(t.TextBody, true)).
		add(types.String(t.HTMLBody, true)).
		add(types.String(t.ContentType, true)).
		add(types.String(t.MergeContext, true))
}
