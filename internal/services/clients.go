package services

import (
	"github.com/slotflare/slotflare/backend/internal/cloudflare"
	"github.com/slotflare/slotflare/backend/internal/models"
)

// ClientFactory builds a Cloudflare client bound to one user's credentials.
// Credentials are loaded per call rather than held as ambient state, so a
// token rotation takes effect on the next operation.
type ClientFactory func(apiToken, accountID string) *cloudflare.Client

// NewClientFactory returns the production factory for the given API base URL.
func NewClientFactory(apiBase string) ClientFactory {
	return func(apiToken, accountID string) *cloudflare.Client {
		return cloudflare.NewClient(apiBase, apiToken, accountID)
	}
}

// clientForUser loads the user's stored Cloudflare credentials and builds a
// client, failing with a ValidationError when credentials are not configured.
func clientForUser(factory ClientFactory, user *models.User) (*cloudflare.Client, error) {
	if !user.HasCloudflareCredentials() {
		return nil, validationf("Cloudflare credentials not configured")
	}
	return factory(user.CloudflareAPIToken, user.AccountID), nil
}
