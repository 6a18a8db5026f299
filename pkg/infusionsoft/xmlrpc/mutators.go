package ifsxml

import (
	"context"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	"github.com/natserract/infusionsoft/pkg/infusionsoft/token"
)

// PrivateKey prepends the legacy API key to every call. The key never expires.
func PrivateKey(key string) MethodCallMutator {
	return func(_ context.Context, call Call) (Call, error) {
		return call.Prepend(key), nil
	}
}

// TokenGate rejects calls while no token is held or the held token has expired.
// Otherwise it prepends the empty key placeholder; the access token itself travels
// in the endpoint URL. held is read on every call so a swapped token is seen at once.
func TokenGate(held func() *token.Token, now func() time.Time) MethodCallMutator {
	if now == nil {
		now = time.Now
	}
	return func(_ context.Context, call Call) (Call, error) {
		tok := held()
		if tok == nil || tok.IsExpiredAt(now()) {
			return Call{}, apierror.TokenExpired()
		}
		return call.Prepend(""), nil
	}
}
