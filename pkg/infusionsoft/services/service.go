// Package services exposes the Infusionsoft XML-RPC API as one Go type per remote
// service. Every method coerces its arguments before the call is handed to the
// Requester, so a malformed call fails locally and never reaches the network.
package services

import (
	"context"
)

// Requester dispatches a named remote method. *ifsxml.API satisfies it.
type Requester interface {
	Call(ctx context.Context, method string, params []any, reply any) error
}

// args accumulates coerced parameters and keeps the first coercion failure.
type args struct {
	params []any
	err    error
}

func (a *args) add(value any, err error) *args {
	if a.err != nil {
		return a
	}
	if err != nil {
		a.err = err
		return a
	}
	a.params = append(a.params, value)
	return a
}

func invoke[T any](ctx context.Context, r Requester, method string, a *args) (T, error) {
	var reply T
	if a.err != nil {
		return reply, a.err
	}
	params := a.params
	if params == nil {
		params = []any{}
	}
	if err := r.Call(ctx, method, params, &reply); err != nil {
		return reply, err
	}
	return reply, nil
}

// Catalog groups every service bound to one Requester.
type Catalog struct {
	AffiliatePrograms *AffiliateProgramService
	Affiliates        *AffiliateService
	Contacts          *ContactService
	Data              *DataService
	Discounts         *DiscountService
	Emails            *EmailService
	Files             *FileService
	Funnels           *FunnelService
	Invoices          *InvoiceService
	Orders            *OrderService
	Products          *ProductService
	Searches          *SearchService
	Shipping          *ShippingService
	WebForms          *WebFormService
}

func NewCatalog(r Requester) *Catalog {
	return &Catalog{
		AffiliatePrograms: &AffiliateProgramService{api: r},
		Affiliates:        &AffiliateService{api: r},
		Contacts:          &ContactService{api: r},
		Data:              &DataService{api: r},
		Discounts:         &DiscountService{api: r},
		Emails:            &EmailService{api: r},
		Files:             &FileService{api: r},
		Funnels:           &FunnelService{api: r},
		Invoices:          &InvoiceService{api: r},
		Orders:            &OrderService{api: r},
		Products:          &ProductService{api: r},
		Searches:          &SearchService{api: r},
		Shipping:          &ShippingService{api: r},
		WebForms:          &WebFormService{api: r},
	}
}
