package identity

import "context"

// Provider is the external identity provider (the system that owns auth
// UIDs). Only the capability the core needs is modeled; the provider's SDK
// stays outside this module.
type Provider interface {
	// EmailExists asks the provider whether it knows an account for the
	// email. Password-reset uses it to cover accounts that only ever
	// authenticated externally.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// NoopProvider is a Provider that knows no accounts. Deployments without an
// external provider wire this in.
type NoopProvider struct{}

// EmailExists always reports false.
func (NoopProvider) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}
