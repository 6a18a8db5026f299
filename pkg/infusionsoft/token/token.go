// Package token models a granted OAuth2 credential.
//
// A Token is immutable once built. Refreshing produces a new Token; the caller owns
// persistence through ToJSON and FromJSON.
package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/types"
)

// Token is a granted OAuth2 credential.
type Token struct {
	accessToken  string
	refreshToken string
	expiresIn    int
	expiresAt    time.Time
	extra        map[string]any
}

// Fields are the inputs to New. A zero ExpiresAt is derived as Now + ExpiresIn seconds.
type Fields struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	ExpiresAt    time.Time
	Extra        map[string]any
	// Now defaults to time.Now.
	Now func() time.Time
}

// New builds a Token, deriving the expiry instant when it is not supplied.
func New(f Fields) *Token {
	expiresAt := f.ExpiresAt
	if expiresAt.IsZero() {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		expiresAt = now().Add(time.Duration(f.ExpiresIn) * time.Second)
	}

	extra := map[string]any{}
	maps.Copy(extra, f.Extra)

	return &Token{
		accessToken:  f.AccessToken,
		refreshToken: f.RefreshToken,
		expiresIn:    f.ExpiresIn,
		expiresAt:    expiresAt,
		extra:        extra,
	}
}

func (t *Token) AccessToken() string  { return t.accessToken }
func (t *Token) RefreshToken() string { return t.refreshToken }
func (t *Token) ExpiresIn() int       { return t.expiresIn }
func (t *Token) ExpiresAt() time.Time { return t.expiresAt }

// Extra returns a copy of the provider-specific fields.
func (t *Token) Extra() map[string]any {
	return maps.Clone(t.extra)
}

// IsExpired reports whether the token is past its expiry instant.
func (t *Token) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether now >= ExpiresAt.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// FromResponse builds a Token from a decoded token endpoint response. access_token,
// refresh_token and expires_in are lifted out; every other field is kept in Extra.
func FromResponse(response map[string]any) (*Token, error) {
	return fromResponseAt(response, nil)
}

func fromResponseAt(response map[string]any, now func() time.Time) (*Token, error) {
	accessToken, err := types.String(response["access_token"], false)
	if err != nil {
		return nil, err
	}
	refreshToken, err := types.String(response["refresh_token"], false)
	if err != nil {
		return nil, err
	}
	expiresIn := 0
	if raw, ok := response["expires_in"]; ok && raw != nil {
		expiresIn, err = types.Integer(raw, true)
		if err != nil {
			return nil, fmt.Errorf("expires_in: %w", err)
		}
	}

	extra := make(map[string]any, len(response))
	for key, value := range response {
		switch key {
		case "access_token", "refresh_token", "expires_in":
			continue
		}
		extra[key] = value
	}

	return New(Fields{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		Extra:        extra,
		Now:          now,
	}), nil
}

// ParseResponse decodes a raw token endpoint body and builds a Token from it.
func ParseResponse(body []byte, now func() time.Time) (*Token, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var response map[string]any
	if err := decoder.Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return fromResponseAt(response, now)
}

// Object is the persisted shape. ExpiresAt is Unix milliseconds.
type Object struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int            `json:"expiresIn"`
	ExpiresAt    int64          `json:"expiresAt"`
	Extra        map[string]any `json:"extra"`
}

// ToJSON serializes the token with the fields accessToken, refreshToken, expiresIn,
// expiresAt and extra.
func (t *Token) ToJSON() ([]byte, error) {
	return json.Marshal(t.toObject())
}

func (t *Token) MarshalJSON() ([]byte, error) {
	return t.ToJSON()
}

func (t *Token) toObject() Object {
	extra := t.extra
	if extra == nil {
		extra = map[string]any{}
	}
	return Object{
		AccessToken:  t.accessToken,
		RefreshToken: t.refreshToken,
		ExpiresIn:    t.expiresIn,
		ExpiresAt:    t.expiresAt.UnixMilli(),
		Extra:        extra,
	}
}

// FromJSON restores a token serialized by ToJSON.
func FromJSON(data []byte) (*Token, error) {
	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("failed to parse token json: %w", err)
	}
	return FromObject(obj), nil
}

// FromObject restores a token from its field-by-field form. A zero ExpiresAt is
// derived from ExpiresIn.
func FromObject(obj Object) *Token {
	var expiresAt time.Time
	if obj.ExpiresAt != 0 {
		expiresAt = time.UnixMilli(obj.ExpiresAt)
	}
	return New(Fields{
		AccessToken:  obj.AccessToken,
		RefreshToken: obj.RefreshToken,
		ExpiresIn:    obj.ExpiresIn,
		ExpiresAt:    expiresAt,
		Extra:        obj.Extra,
	})
}
