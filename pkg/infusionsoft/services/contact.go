package services

import (
	"context"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// Duplicate matching strategies for AddWithDupCheck.
const (
	DupCheckEmail                  = "Email"
	DupCheckEmailAndName           = "EmailAndName"
	DupCheckEmailAndNameAndCompany = "EmailAndNameAndCompany"
)

// ContactService manages contacts, their tags, follow-up sequences and action sets.
type ContactService struct {
	api Requester
}

// Add creates a contact from field name/value pairs and returns its id.
func (s *ContactService) Add(ctx context.Context, data map[string]any) (int, error) {
	a := new(args).add(types.Struct[any](nil, data, true))
	return invoke[int](ctx, s.api, "ContactService.add", a)
}

// AddWithDupCheck adds a contact or updates the one matched by dupCheckType.
func (s *ContactService) AddWithDupCheck(ctx context.Context, data map[string]any, dupCheckType string) (int, error) {
	a := new(args).
		add(types.Struct[any](nil, data, true)).
		add(types.String(dupCheckType, true))
	return invoke[int](ctx, s.api, "ContactService.addWithDupCheck", a)
}

// Load returns the selected fields of one contact.
func (s *ContactService) Load(ctx context.Context, contactID int, selectedFields []string) (map[string]any, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.Array(types.String, selectedFields, true))
	return invoke[map[string]any](ctx, s.api, "ContactService.load", a)
}

func (s *ContactService) Update(ctx context.Context, contactID int, data map[string]any) (int, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.Struct[any](nil, data, true))
	return invoke[int](ctx, s.api, "ContactService.update", a)
}

// Merge folds duplicateContactID into contactID.
func (s *ContactService) Merge(ctx context.Context, contactID, duplicateContactID int) (bool, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.Integer(duplicateContactID, true))
	return invoke[bool](ctx, s.api, "ContactService.merge", a)
}

// FindByEmail searches the Email, Email 2 and Email 3 fields.
func (s *ContactService) FindByEmail(ctx context.Context, email string, selectedFields []string) ([]map[string]any, error) {
	a := new(args).
		add(types.String(email, true)).
		add(types.Array(types.String, selectedFields, true))
	return invoke[[]map[string]any](ctx, s.api, "ContactService.findByEmail", a)
}

// AddToGroup applies a tag to a contact.
func (s *ContactService) AddToGroup(ctx context.Context, contactID, tagID int) (bool, error) {
	return s.pair(ctx, "ContactService.addToGroup", contactID, tagID)
}

// RemoveFromGroup removes a tag from a contact.
func (s *ContactService) RemoveFromGroup(ctx context.Context, contactID, tagID int) (bool, error) {
	return s.pair(ctx, "ContactService.removeFromGroup", contactID, tagID)
}

// AddToCampaign starts a follow-up sequence for a contact.
func (s *ContactService) AddToCampaign(ctx context.Context, contactID, campaignID int) (bool, error) {
	return s.pair(ctx, "ContactService.addToCampaign", contactID, campaignID)
}

// GetNextCampaignStep returns the id of the contact's next sequence step.
func (s *ContactService) GetNextCampaignStep(ctx context.Context, contactID, followUpSequenceID int) (int, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.Integer(followUpSequenceID, true))
	return invoke[int](ctx, s.api, "ContactService.getNextCampaignStep", a)
}

// RescheduleCampaignStep runs a sequence step immediately for every contact given.
func (s *ContactService) RescheduleCampaignStep(ctx context.Context, contactIDs []int, sequenceStepID int) (int, error) {
	a := new(args).
		add(types.Array(types.Integer, contactIDs, true)).
		add(types.Integer(sequenceStepID, true))
	return invoke[int](ctx, s.api, "ContactService.rescheduleCampaignStep", a)
}

func (s *ContactService) PauseCampaign(ctx context.Context, contactID, sequenceID int) (bool, error) {
	return s.pair(ctx, "ContactService.pauseCampaign", contactID, sequenceID)
}

func (s *ContactService) ResumeCampaignForContact(ctx context.Context, contactID, sequenceID int) (bool, error) {
	return s.pair(ctx, "ContactService.resumeCampaignForContact", contactID, sequenceID)
}

func (s *ContactService) RemoveFromCampaign(ctx context.Context, contactID, followUpSequenceID int) (bool, error) {
	return s.pair(ctx, "ContactService.removeFromCampaign", contactID, followUpSequenceID)
}

func (s *ContactService) LinkContacts(ctx context.Context, contactID1, contactID2, linkTypeID int) (bool, error) {
	a := new(args).
		add(types.Integer(contactID1, true)).
		add(types.Integer(contactID2, true)).
		add(types.Integer(linkTypeID, true))
	return invoke[bool](ctx, s.api, "ContactService.linkContacts", a)
}

func (s *ContactService) UnlinkContacts(ctx context.Context, contactID1, contactID2, linkTypeID int) (bool, error) {
	a := new(args).
		add(types.Integer(contactID1, true)).
		add(types.Integer(contactID2, true)).
		add(types.Integer(linkTypeID, true))
	return invoke[bool](ctx, s.api, "ContactService.unlinkContacts", a)
}

func (s *ContactService) ListLinkedContacts(ctx context.Context, contactID int) ([]map[string]any, error) {
	a := new(args).add(types.Integer(contactID, true))
	return invoke[[]map[string]any](ctx, s.api, "ContactService.listLinkedContacts", a)
}

// RunActionSequence runs an action set against a contact.
func (s *ContactService) RunActionSequence(ctx context.Context, contactID, actionSetID int) ([]map[string]any, error) {
	a := new(args).
		add(types.Integer(contactID, true)).
		add(types.Integer(actionSetID, true))
	return invoke[[]map[string]any](ctx, s.api, "ContactService.runActionSequence", a)
}

func (s *ContactService) pair(ctx context.Context, method string, first, second int) (bool, error) {
	a := new(args).
		add(types.Integer(first, true)).
		add(types.Integer(second, true))
	return invoke[bool](ctx, s.api, method, a)
}
