package services

import (
	"context"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// DataService reads and writes arbitrary tables.
type DataService struct {
	api Requester
}

type LoadOptions struct {
	Table    string
	RecordID int
	Fields   []string
}

type FindByFieldOptions struct {
	Table        string
	Limit        int
	Page         int
	FieldName    string
	FieldValue   string
	ReturnFields []string
}

// QueryOptions describes one page of a DataService.query call. QueryData maps field
// names to match values; "%" acts as a wildcard.
type QueryOptions struct {
	Table          string
	Limit          int
	Page           int
	QueryData      map[string]any
	SelectedFields []string
	OrderBy        string
	Ascending      bool
}

type UpdateOptions struct {
	Table    string
	RecordID int
	Values   map[string]any
}

type CustomFieldOptions struct {
	// CustomFieldType is the record type, e.g. "Contact" or "Person".
	CustomFieldType string
	DisplayName     string
	DataType        string
	HeaderID        int
}

// Add inserts a record into table and returns its id.
func (s *DataService) Add(ctx context.Context, table string, values map[string]any) (int, error) {
	a := new(args).
		add(types.String(table, true)).
		add(types.Struct[any](nil, values, true))
	return invoke[int](ctx, s.api, "DataService.add", a)
}

func (s *DataService) Load(ctx context.Context, opts LoadOptions) (map[string]any, error) {
	a := new(args).
		add(types.String(opts.Table, true)).
		add(types.Integer(opts.RecordID, true)).
		add(types.Array(types.String, opts.Fields, true))
	return invoke[map[string]any](ctx, s.api, "DataService.load", a)
}

func (s *DataService) FindByField(ctx context.Context, opts FindByFieldOptions) ([]map[string]any, error) {
	a := new(args).
		add(types.String(opts.Table, true)).
		add(types.Integer(opts.Limit, true)).
		add(types.Integer(opts.Page, true)).
		add(types.String(opts.FieldName, true)).
		add(types.String(opts.FieldValue, true)).
		add(types.Array(types.String, opts.ReturnFields, true))
	return invoke[[]map[string]any](ctx, s.api, "DataService.findByField", a)
}

// Query returns one page of records matching opts.QueryData.
func (s *DataService) Query(ctx context.Context, opts QueryOptions) ([]map[string]any, error) {
	a := new(args).
		add(types.String(opts.Table, true)).
		add(types.Integer(opts.Limit, true)).
		add(types.Integer(opts.Page, true)).
		add(types.Struct[any](nil, opts.QueryData, true)).
		add(types.Array(types.String, opts.SelectedFields, true)).
		add(types.String(opts.OrderBy, true)).
		add(types.Boolean(opts.Ascending, true))
	return invoke[[]map[string]any](ctx, s.api, "DataService.query", a)
}

func (s *DataService) Update(ctx context.Context, opts UpdateOptions) (int, error) {
	a := new(args).
		add(types.String(opts.Table, true)).
		add(types.Integer(opts.RecordID, true)).
		add(types.Struct[any](nil, opts.Values, true))
	return invoke[int](ctx, s.api, "DataService.update", a)
}

func (s *DataService) Delete(ctx context.Context, table string, id int) (bool, error) {
	a := new(args).
		add(types.String(table, true)).
		add(types.Integer(id, true))
	return invoke[bool](ctx, s.api, "DataService.delete", a)
}

// Count returns how many records in table match queryData.
func (s *DataService) Count(ctx context.Context, table string, queryData map[string]any) (int, error) {
	a := new(args).
		add(types.String(table, true)).
		add(types.Struct[any](nil, queryData, true))
	return invoke[int](ctx, s.api, "DataService.count", a)
}

func (s *DataService) AddCustomField(ctx context.Context, opts CustomFieldOptions) (int, error) {
	a := new(args).
		add(types.String(opts.CustomFieldType, true)).
		add(types.String(opts.DisplayName, true)).
		add(types.String(opts.DataType, true)).
		add(types.Integer(opts.HeaderID, true))
	return invoke[int](ctx, s.api, "DataService.addCustomField", a)
}

func (s *DataService) UpdateCustomField(ctx context.Context, customFieldID int, values map[string]any) (bool, error) {
	a := new(args).
		add(types.Integer(customFieldID, true)).
		add(types.Struct[any](nil, values, true))
	return invoke[bool](ctx, s.api, "DataService.updateCustomField", a)
}

func (s *DataService) GetAppointmentICal(ctx context.Context, appointmentID int) (string, error) {
	a := new(args).add(types.Integer(appointmentID, true))
	return invoke[string](ctx, s.api, "DataService.getAppointmentICal", a)
}

// GetAppSetting reads an application setting, e.g. module "Contact" and setting "optiontypes".
func (s *DataService) GetAppSetting(ctx context.Context, module, setting string) (string, error) {
	a := new(args).
		add(types.String(module, true)).
		add(types.String(setting, true))
	return invoke[string](ctx, s.api, "DataService.getAppSetting", a)
}

// AuthenticateUser returns the user id when passwordHash (MD5) matches.
func (s *DataService) AuthenticateUser(ctx context.Context, username, passwordHash string) (int, error) {
	a := new(args).
		add(types.String(username, true)).
		add(types.String(passwordHash, true))
	return invoke[int](ctx, s.api, "DataService.authenticateUser", a)
}
