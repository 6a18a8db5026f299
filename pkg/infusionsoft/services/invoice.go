package services

import (
	"context"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// InvoiceService manages orders, invoices, payments and subscriptions.
type InvoiceService struct {
	api Requester
}

type BlankOrder struct {
	ContactID       int
	Description     string
	OrderDate       time.Time
	LeadAffiliateID int
	SaleAffiliateID int
}

type OrderItem struct {
	InvoiceID   int
	ProductID   int
	Type        int
	Price       float64
	Quantity    int
	Description string
	Notes       string
}

type ManualPayment struct {
	InvoiceID         int
	Amount            float64
	Date              time.Time
	PaymentType       string
	Description       string
	BypassCommissions bool
}

type CommissionOverride struct {
	InvoiceID   int
	AffiliateID int
	ProductID   int
	Percent     int
	Amount      float64
	PayoutType  int
	Description string
	Date        time.Time
}

type RecurringOrder struct {
	ContactID         int
	AllowDuplicate    bool
	SubscriptionID    int
	Quantity          int
	Price             float64
	Taxable           bool
	MerchantAccountID int
	CreditCardID      int
	AffiliateID       int
	TrialPeriod       int
}

type CreditCard struct {
	CardType        string
	ContactID       int
	CardNumber      string
	ExpirationMonth string
	ExpirationYear  string
	SecurityCode    string
}

type PaymentPlan struct {
	InvoiceID            int
	AutoCharge           bool
	CreditCardID         int
	MerchantAccountID    int
	DaysUntilRetry       int
	MaxRetry             int
	InitialPaymentAmount float64
	InitialPaymentDate   time.Time
	PlanStartDate        time.Time
	NumberOfPayments     int
	DaysBetweenPayments  int
}

// CreateBlankOrder creates an empty order for a contact and returns the invoice id.
func (s *InvoiceService) CreateBlankOrder(ctx context.Context, o BlankOrder) (int, error) {
	a := new(args).
		add(types.Integer(o.ContactID, true)).
		add(types.String(o.Description, true)).
		add(types.DateTime(o.OrderDate, true)).
		add(types.Integer(o.LeadAffiliateID, true)).
		add(types.Integer(o.SaleAffiliateID, true))
	return invoke[int](ctx, s.api, "InvoiceService.createBlankOrder", a)
}

// ChargeInvoice charges the amount owed on an invoice to a stored card.
func (s *InvoiceService) ChargeInvoice(ctx context.Context, invoiceID int, notes string, creditCardID, merchantAccountID int, bypassCommissions bool) (map[string]any, error) {
	a := new(args).
		add(types.Integer(invoiceID, true)).
		add(types.String(notes, true)).
		add(types.Integer(creditCardID, true)).
		add(types.Integer(merchantAccountID, true)).
		add(types.Boolean(bypassCommissions, true))
	return invoke[map[string]any](ctx, s.api, "InvoiceService.chargeInvoice", a)
}

func (s *InvoiceService) GetPayments(ctx context.Context, invoiceID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(invoiceID, true))
	return invoke[[]map[string]any](ctx, s.api, "InvoiceService.getPayments", a)
}

func (s *InvoiceService) CalculateAmountOwed(ctx context.Context, invoiceID int) (float64, error) {
	a := new(args).add(types.Integer(invoiceID, true))
	return invoke[float64](ctx, s.api, "InvoiceService.calculateAmountOwed", a)
}

func (s *InvoiceService) AddOrderItem(ctx context.Context, item OrderItem) (bool, error) {
	a := new(args).
		add(types.Integer(item.InvoiceID, true)).
		add(types.Integer(item.ProductID, true)).
		add(types.Integer(item.Type, true)).
		add(types.Double(item.Price, true)).
		add(types.Integer(item.Quantity, true)).
		add(types.String(item.Description, true)).
		add(types.String(item.Notes, true))
	return invoke[bool](ctx, s.api, "InvoiceService.addOrderItem", a)
}

func (s *InvoiceService) AddManualPayment(ctx context.Context, p ManualPayment) (bool, error) {
	a := new(args).
		add(types.Integer(p.InvoiceID, true)).
		add(types.Double(p.Amount, true)).
		add(types.DateTime(p.Date, true)).
		add(types.String(p.PaymentType, true)).
		add(types.String(p.Description, true)).
		add(types.Boolean(p.BypassCommissions, true))
	return invoke[bool](ctx, s.api, "InvoiceService.addManualPayment", a)
}

func (s *InvoiceService) AddOrderCommissionOverride(ctx context.Context, o CommissionOverride) (bool, error) {
	a := new(args).
		add(types.Integer(o.InvoiceID, true)).
		add(types.Integer(o.AffiliateID, true)).
		add(types.Integer(o.ProductID, true)).
		add(types.Integer(o.Percent, true)).
		add(types.Double(o.Amount, true)).
		add(types.Integer(o.PayoutType, true)).
		add(types.String(o.Description, true)).
		add(types.DateTime(o.Date, true))
	return invoke[bool](ctx, s.api, "InvoiceService.addOrderCommissionOverride", a)
}

func (s *InvoiceService) RecalculateTax(ctx context.Context, invoiceID int) (bool, error) {
	a := new(args).add(types.Integer(invoiceID, true))
	return invoke[bool](ctx, s.api, "InvoiceService.recalculateTax", a)
}

// DeleteInvoice sends the id as a string, which is what the endpoint expects.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceID int) (bool, error) {
	a := new(args).add(types.String(invoiceID, true))
	return invoke[bool](ctx, s.api, "InvoiceService.deleteInvoice", a)
}

func (s *InvoiceService) AddRecurringOrder(ctx context.Context, o RecurringOrder) (int, error) {
	a := new(args).
		add(types.Integer(o.ContactID, true)).
		add(types.Boolean(o.AllowDuplicate, true)).
		add(types.Integer(o.SubscriptionID, true)).
		add(types.Integer(o.Quantity, true)).
		add(types.Double(o.Price, true)).
		add(types.Boolean(o.Taxable, true)).
		add(types.Integer(o.MerchantAccountID, true)).
		add(types.Integer(o.CreditCardID, true)).
		add(types.Integer(o.AffiliateID, true)).
		add(types.Integer(o.TrialPeriod, true))
	return invoke[int](ctx, s.api, "InvoiceService.addRecurringOrder", a)
}

func (s *InvoiceService) CreateInvoiceForRecurring(ctx context.Context, subscriptionID int) (int, error) {
	a := new(args).add(types.Integer(subscriptionID, true))
	return invoke[int](ctx, s.api, "InvoiceService.createInvoiceForRecurring", a)
}

func (s *InvoiceService) UpdateJobRecurringNextBillDate(ctx context.Context, subscriptionID int, nextBillDate time.Time) (bool, error) {
	a := new(args).
		add(types.Integer(subscriptionID, true)).
		add(types.DateTime(nextBillDate, true))
	return invoke[bool](ctx, s.api, "InvoiceService.updateJobRecurringNextBillDate", a)
}

func (s *InvoiceService) DeleteSubscription(ctx context.Context, subscriptionID int) (bool, error) {
	a := new(args).add(types.String(subscriptionID, true))
	return invoke[bool](ctx, s.api, "InvoiceService.deleteSubscription", a)
}

// ValidateCreditCard checks card details that are not stored yet.
func (s *InvoiceService) ValidateCreditCard(ctx context.Context, card CreditCard) (map[string]any, error) {
	a := new(args).
		add(types.String(card.CardType, true)).
		add(types.Integer(card.ContactID, true)).
		add(types.String(card.CardNumber, true)).
		add(types.String(card.ExpirationMonth, true)).
		add(types.String(card.ExpirationYear, true)).
		add(types.String(card.SecurityCode, true))
	return invoke[map[string]any](ctx, s.api, "InvoiceService.validateCreditCard", a)
}

// ValidateStoredCreditCard checks a card already on file.
func (s *InvoiceService) ValidateStoredCreditCard(ctx context.Context, cardID int) (map[string]any, error) {
	a := new(args).add(types.Integer(cardID, true))
	return invoke[map[string]any](ctx, s.api, "InvoiceService.validateCreditCard", a)
}

// LocateExistingCard returns the id of a contact's card ending in lastFour, or 0.
func (s *InvoiceService) LocateExistingCard(ctx context.Context, contactID int, lastFour string) (int, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.String(lastFour, true))
	return invoke[int](ctx, s.api, "InvoiceService.locateExistingCard", a)
}

func (s *InvoiceService) GetAllShippingOptions(ctx context.Context) ([]any, error) {
	return invoke[[]any](ctx, s.api, "InvoiceService.getAllShippingOptions", new(args))
}

func (s *InvoiceService) GetAllPaymentOptions(ctx context.Context) (map[string]any, error) {
	return invoke[map[string]any](ctx, s.api, "InvoiceService.getAllPaymentOptions", new(args))
}

func (s *InvoiceService) AddPaymentPlan(ctx context.Context, p PaymentPlan) (bool, error) {
	a := new(args).
		add(types.Integer(p.InvoiceID, true)).
		add(types.Boolean(p.AutoCharge, true)).
		add(types.Integer(p.CreditCardID, true)).
		add(types.Integer(p.MerchantAccountID, true)).
		add(types.Integer(p.DaysUntilRetry, true)).
		add(types.Integer(p.MaxRetry, true)).
		add(types.Double(p.InitialPaymentAmount, true)).
		add(types.DateTime(p.InitialPaymentDate, true)).
		add(types.DateTime(p.PlanStartDate, true)).
		add(types.Integer(p.NumberOfPayments, true)).
		add(types.Integer(p.DaysBetweenPayments, true))
	return invoke[bool](ctx, s.api, "InvoiceService.addPaymentPlan", a)
}
