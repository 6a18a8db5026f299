package services

import (
	"context"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// OrderService places orders.
type OrderService struct {
	api Requester
}

type Order struct {
	ContactID       int
	CardID          int
	PlanID          int
	ProductIDs      []int
	SubscriptionIDs []int
	ProcessSpecials bool
	PromoCodes      []string
	LeadAffiliateID int
	SaleAffiliateID int
}

// PlaceOrder builds an invoice, charges the card and runs the order's fulfillment.
func (s *OrderService) PlaceOrder(ctx context.Context, o Order) (map[string]any, error) {
	a := new(args).
		add(types.Integer(o.ContactID, true)).
		add(types.Integer(o.CardID, true)).
		add(types.Integer(o.PlanID, true)).
		add(types.Array(types.Integer, o.ProductIDs, true)).
		add(types.Array(types.Integer, o.SubscriptionIDs, true)).
		add(types.Boolean(o.ProcessSpecials, true)).
		add(types.Array(types.String, o.PromoCodes, true)).
		add(types.Integer(o.LeadAffiliateID, true)).
		add(types.Integer(o.SaleAffiliateID, true))
	return invoke[map[string]any](ctx, s.api, "OrderService.placeOrder", a)
}

// ProductService manages product inventory.
type ProductService struct {
	api Requester
}

func (s *ProductService) GetInventory(ctx context.Context, productID int) (int, error) {
	a := new(args).add(types.Integer(productID, true))
	return invoke[int](ctx, s.api, "ProductService.getInventory", a)
}

func (s *ProductService) IncrementInventory(ctx context.Context, productID int) (bool, error) {
	a := new(args).add(types.Integer(productID, true))
	return invoke[bool](ctx, s.api, "ProductService.incrementInventory", a)
}

func (s *ProductService) DecrementInventory(ctx context.Context, productID int) (bool, error) {
	a := new(args).add(types.String(productID, true))
	return invoke[bool](ctx, s.api, "ProductService.decrementInventory", a)
}

func (s *ProductService) IncreaseInventory(ctx context.Context, productID, quantity int) (bool, error) {
	a := new(args).
		add(types.Integer(productID, true)).
		add(types.Integer(quantity, true))
	return invoke[bool](ctx, s.api, "ProductService.increaseInventory", a)
}

func (s *ProductService) DecreaseInventory(ctx context.Context, productID, quantity int) (bool, error) {
	a := new(args).
		add(types.Integer(productID, true)).
		add(types.Integer(quantity, true))
	return invoke[bool](ctx, s.api, "ProductService.decreaseInventory", a)
}

func (s *ProductService) DeactivateCreditCard(ctx context.Context, cardID int) (bool, error) {
	a := new(args).add(types.Integer(cardID, true))
	return invoke[bool](ctx, s.api, "ProductService.deactivateCreditCard", a)
}

// DiscountService manages order, shipping, product and category discounts and free trials.
type DiscountService struct {
	api Requester
}

type OrderTotalDiscount struct {
	Name                      string
	ApplyDiscountToCommission int
	PercentOrAmount           int
	PayType                   string
}

type FreeTrial struct {
	Name               string
	Description        string
	FreeTrialDays      int
	HidePrice          int
	SubscriptionPlanID int
}

type ShippingTotalDiscount struct {
	Name                      string
	Description               string
	ApplyDiscountToCommission int
	PercentOrAmount           int
	Amount                    float64
}

type ProductTotalDiscount struct {
	Name                      string
	Description               string
	ApplyDiscountToCommission int
	ProductID                 int
	PercentOrAmount           int
	Amount                    float64
}

type CategoryDiscount struct {
	Name                      string
	Description               string
	ApplyDiscountToCommission int
	Amount                    int
}

func (s *DiscountService) AddOrderTotalDiscount(ctx context.Context, d OrderTotalDiscount) (int, error) {
	a := new(args).
		add(types.String(d.Name, true)).
		add(types.Integer(d.ApplyDiscountToCommission, true)).
		add(types.Integer(d.PercentOrAmount, true)).
		add(types.String(d.PayType, true))
	return invoke[int](ctx, s.api, "DiscountService.addOrderTotalDiscount", a)
}

func (s *DiscountService) GetOrderTotalDiscount(ctx context.Context, id int) (map[string]any, error) {
	return s.get(ctx, "DiscountService.getOrderTotalDiscount", id)
}

func (s *DiscountService) AddFreeTrial(ctx context.Context, d FreeTrial) (int, error) {
	a := new(args).
		add(types.String(d.Name, true)).
		add(types.String(d.Description, true)).
		add(types.Integer(d.FreeTrialDays, true)).
		add(types.Integer(d.HidePrice, true)).
		add(types.Integer(d.SubscriptionPlanID, true))
	return invoke[int](ctx, s.api, "DiscountService.addFreeTrial", a)
}

func (s *DiscountService) GetFreeTrial(ctx context.Context, trialID int) (map[string]any, error) {
	return s.get(ctx, "DiscountService.getFreeTrial", trialID)
}

func (s *DiscountService) AddShippingTotalDiscount(ctx context.Context, d ShippingTotalDiscount) (int, error) {
	a := new(args).
		add(types.String(d.Name, true)).
		add(types.String(d.Description, true)).
		add(types.Integer(d.ApplyDiscountToCommission, true)).
		add(types.Integer(d.PercentOrAmount, true)).
		add(types.Double(d.Amount, true))
	return invoke[int](ctx, s.api, "DiscountService.addShippingTotalDiscount", a)
}

func (s *DiscountService) GetShippingTotalDiscount(ctx context.Context, id int) (map[string]any, error) {
	return s.get(ctx, "DiscountService.getShippingTotalDiscount", id)
}

func (s *DiscountService) AddProductTotalDiscount(ctx context.Context, d ProductTotalDiscount) (int, error) {
	a := new(args).
		add(types.String(d.Name, true)).
		add(types.String(d.Description, true)).
		add(types.Integer(d.ApplyDiscountToCommission, true)).
		add(types.Integer(d.ProductID, true)).
		add(types.Integer(d.PercentOrAmount, true)).
		add(types.Double(d.Amount, true))
	return invoke[int](ctx, s.api, "DiscountService.addProductTotalDiscount", a)
}

func (s *DiscountService) GetProductTotalDiscount(ctx context.Context, id int) (map[string]any, error) {
	a := new(args).add(types.String(id, true))
	return invoke[map[string]any](ctx, s.api, "DiscountService.getProductTotalDiscount", a)
}

func (s *DiscountService) AddCategoryDiscount(ctx context.Context, d CategoryDiscount) (int, error) {
	a := new(args).
		add(types.String(d.Name, true)).
		add(types.String(d.Description, true)).
		add(types.Integer(d.ApplyDiscountToCommission, true)).
		add(types.Integer(d.Amount, true))
	return invoke[int](ctx, s.api, "DiscountService.addCategoryDiscount", a)
}

func (s *DiscountService) GetCategoryDiscount(ctx context.Context, id int) (map[string]any, error) {
	return s.get(ctx, "DiscountService.getCategoryDiscount", id)
}

func (s *DiscountService) GetCategoryAssignmentsForCategoryDiscount(ctx context.Context, id int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(id, true))
	return invoke[[]map[string]any](ctx, s.api, "DiscountService.getCategoryAssignmentsForCategoryDiscount", a)
}

func (s *DiscountService) AddCategoryAssignmentToCategoryDiscount(ctx context.Context, id, productID int) (int, error) {
	a := new(args).
		add(types.Integer(id, true)).
		add(types.Integer(productID, true))
	return invoke[int](ctx, s.api, "DiscountService.addCategoryAssignmentToCategoryDiscount", a)
}

func (s *DiscountService) get(ctx context.Context, method string, id int) (map[string]any, error) {
	a := new(args).add(types.Integer(id, true))
	return invoke[map[string]any](ctx, s.api, method, a)
}

// ShippingService reads the configured shipping options.
type ShippingService struct {
	api Requester
}

func (s *ShippingService) GetAllShippingOptions(ctx context.Context) ([]map[string]any, error) {
	return invoke[[]map[string]any](ctx, s.api, "ShippingService.getAllShippingOptions", new(args))
}

func (s *ShippingService) GetWeightBasedShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	return s.option(ctx, "ShippingService.getWeightBasedShippingOption", optionID)
}

func (s *ShippingService) GetFlatRateShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	a := new(args).add(types.String(optionID, true))
	return invoke[map[string]any](ctx, s.api, "ShippingService.getFlatRateShippingOption", a)
}

func (s *ShippingService) GetProductBasedShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	return s.option(ctx, "ShippingService.getProductBasedShippingOption", optionID)
}

func (s *ShippingService) GetOrderTotalShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	return s.option(ctx, "ShippingService.getOrderTotalShippingOption", optionID)
}

func (s *ShippingService) GetOrderQuantityShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	return s.option(ctx, "ShippingService.getOrderQuantityShippingOption", optionID)
}

func (s *ShippingService) GetOrderTotalShippingRanges(ctx context.Context, optionID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(optionID, true))
	return invoke[[]map[string]any](ctx, s.api, "ShippingService.getOrderTotalShippingRanges", a)
}

func (s *ShippingService) GetUpsShippingOption(ctx context.Context, optionID int) (map[string]any, error) {
	return s.option(ctx, "ShippingService.getUpsShippingOption", optionID)
}

func (s *ShippingService) option(ctx context.Context, method string, optionID int) (map[string]any, error) {
	a := new(args).add(types.Integer(optionID, true))
	return invoke[map[string]any](ctx, s.api, method, a)
}
