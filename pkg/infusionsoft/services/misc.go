package services

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// FileService uploads and manages files in the file box.
type FileService struct {
	api Requester
}

// UploadFile stores data for a contact, or in the app's file box when contactID is 0.
func (s *FileService) UploadFile(ctx context.Context, contactID int, fileName string, data []byte) (int, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.String(fileName, true)).
		add(types.String(base64.StdEncoding.EncodeToString(data), true))
	return invoke[int](ctx, s.api, "FileService.uploadFile", a)
}

// GetFile returns the file contents, base64 decoded.
func (s *FileService) GetFile(ctx context.Context, fileID int) ([]byte, error) {
	a := new(args).add(types.Integer(fileID, true))
	encoded, err := invoke[string](ctx, s.api, "FileService.getFile", a)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *FileService) GetDownloadURL(ctx context.Context, fileID int) (string, error) {
	a := new(args).add(types.String(fileID, true))
	return invoke[string](ctx, s.api, "FileService.getDownloadUrl", a)
}

func (s *FileService) ReplaceFile(ctx context.Context, fileID int, data []byte) (bool, error) {
	a := new(args).
		add(types.String(fileID, true)).
		add(types.String(base64.StdEncoding.EncodeToString(data), true))
	return invoke[bool](ctx, s.api, "FileService.replaceFile", a)
}

func (s *FileService) RenameFile(ctx context.Context, fileID int, fileName string) (bool, error) {
	a := new(args).
		add(types.String(fileID, true)).
		add(types.String(fileName, true))
	return invoke[bool](ctx, s.api, "FileService.renameFile", a)
}

// FunnelService triggers campaign builder goals.
type FunnelService struct {
	api Requester
}

// AchieveGoal fires the API goal integration/callName for a contact.
func (s *FunnelService) AchieveGoal(ctx context.Context, integration, callName string, contactID int) ([]map[string]any, error) {
	a := new(args).
		add(types.String(integration, true)).
		add(types.String(callName, true)).
		add(types.Integer(contactID, true))
	return invoke[[]map[string]any](ctx, s.api, "FunnelService.achieveGoal", a)
}

// SearchService runs saved searches and quick searches.
type SearchService struct {
	api Requester
}

func (s *SearchService) GetAllReportColumns(ctx context.Context, savedSearchID, userID int) (map[string]any, error) {
	a := new(args).
		add(types.Integer(savedSearchID, true)).
		add(types.Integer(userID, true))
	return invoke[map[string]any](ctx, s.api, "SearchService.getAllReportColumns", a)
}

func (s *SearchService) GetSavedSearchResultsAllFields(ctx context.Context, savedSearchID, userID, page int) ([]map[string]any, error) {
	a := new(args).
		add(types.Integer(savedSearchID, true)).
		add(types.Integer(userID, true)).
		add(types.Integer(page, true))
	return invoke[[]map[string]any](ctx, s.api, "SearchService.getSavedSearchResultsAllFields", a)
}

func (s *SearchService) GetSavedSearchResults(ctx context.Context, savedSearchID, userID, page int, returnFields []string) ([]map[string]any, error) {
	a := new(args).
		add(types.Integer(savedSearchID, true)).
		add(types.Integer(userID, true)).
		add(types.Integer(page, true)).
		add(types.Array(types.String, returnFields, true))
	return invoke[[]map[string]any](ctx, s.api, "SearchService.getSavedSearchResults", a)
}

func (s *SearchService) GetAvailableQuickSearches(ctx context.Context, userID int) (map[string]any, error) {
	a := new(args).add(types.Integer(userID, true))
	return invoke[map[string]any](ctx, s.api, "SearchService.getAvailableQuickSearches", a)
}

func (s *SearchService) GetDefaultQuickSearch(ctx context.Context, userID int) (string, error) {
	a := new(args).add(types.Integer(userID, true))
	return invoke[string](ctx, s.api, "SearchService.getDefaultQuickSearch", a)
}

func (s *SearchService) QuickSearch(ctx context.Context, searchType, userID int, searchData string, page, limit int) ([]map[string]any, error) {
	a := new(args).
		add(types.Integer(searchType, true)).
		add(types.Integer(userID, true)).
		add(types.String(searchData, true)).
		add(types.Integer(page, true)).
		add(types.Integer(limit, true))
	return invoke[[]map[string]any](ctx, s.api, "SearchService.quickSearch", a)
}

// AffiliateService reports affiliate commissions, clawbacks and payouts.
type AffiliateService struct {
	api Requester
}

func (s *AffiliateService) Clawbacks(ctx context.Context, affiliateID int, from, to time.Time) ([]map[string]any, error) {
	return s.report(ctx, "APIAffiliateService.affClawbacks", affiliateID, from, to)
}

func (s *AffiliateService) Commissions(ctx context.Context, affiliateID int, from, to time.Time) ([]map[string]any, error) {
	return s.report(ctx, "APIAffiliateService.affCommissions", affiliateID, from, to)
}

func (s *AffiliateService) Payouts(ctx context.Context, affiliateID int, from, to time.Time) ([]map[string]any, error) {
	return s.report(ctx, "APIAffiliateService.affPayouts", affiliateID, from, to)
}

func (s *AffiliateService) Summary(ctx context.Context, affiliateID int, from, to time.Time) ([]map[string]any, error) {
	return s.report(ctx, "APIAffiliateService.affSummary", affiliateID, from, to)
}

func (s *AffiliateService) RunningTotals(ctx context.Context, affiliateIDs []int) ([]map[string]any, error) {
	a := new(args).add(types.Array(types.Integer, affiliateIDs, true))
	return invoke[[]map[string]any](ctx, s.api, "APIAffiliateService.affRunningTotals", a)
}

func (s *AffiliateService) GetRedirectLinksForAffiliate(ctx context.Context, affiliateID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(affiliateID, true))
	return invoke[[]map[string]any](ctx, s.api, "AffiliateService.getRedirectLinksForAffiliate", a)
}

func (s *AffiliateService) report(ctx context.Context, method string, affiliateID int, from, to time.Time) ([]map[string]any, error) {
	a := new(args).
		add(types.Integer(affiliateID, true)).
		add(types.DateTime(from, true)).
		add(types.DateTime(to, true))
	return invoke[[]map[string]any](ctx, s.api, method, a)
}

// AffiliateProgramService reads commission programs.
type AffiliateProgramService struct {
	api Requester
}

func (s *AffiliateProgramService) GetAffiliatesByProgram(ctx context.Context, programID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(programID, true))
	return invoke[[]map[string]any](ctx, s.api, "AffiliateProgramService.getAffiliatesByProgram", a)
}

func (s *AffiliateProgramService) GetProgramsForAffiliate(ctx context.Context, affiliateID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(affiliateID, true))
	return invoke[[]map[string]any](ctx, s.api, "AffiliateProgramService.getProgramsForAffiliate", a)
}

func (s *AffiliateProgramService) GetResourcesForAffiliateProgram(ctx context.Context, programID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(programID, true))
	return invoke[[]map[string]any](ctx, s.api, "AffiliateProgramService.getResourcesForAffiliateProgram", a)
}

// WebFormService reads web form HTML.
type WebFormService struct {
	api Requester
}

func (s *WebFormService) GetHTML(ctx context.Context, formID int) (string, error) {
	a := new(args).add(types.Integer(formID, true))
	return invoke[string](ctx, s.api, "WebFormService.getHTML", a)
}

// GetMap returns form names keyed by form id.
func (s *WebFormService) GetMap(ctx context.Context) (map[string]any, error) {
	return invoke[map[string]any](ctx, s.api, "WebFormService.getMap", new(args))
}
