package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/barangay-konek/portal-api/internal/utils"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// ApprovedRole is the Authorizer role granted when an admin approves a
// resident account. Unapproved residents may browse but not file requests.
const ApprovedRole = "verified"

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// ValidateSession validates a session cookie for the given roles and resolves
// the caller identity from the Authorizer user record.
func ValidateSession(cookie string, roles []string) (types.Caller, error) {
	if authClient == nil {
		return types.Caller{}, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return types.Caller{}, fmt.Errorf("session validation failed: %w", err)
	}

	if res == nil || !res.IsValid {
		return types.Caller{}, fmt.Errorf("session is not valid")
	}

	// Round-trip the Authorizer user through JSON so only the stable wire
	// fields (id, email, roles) are depended on.
	raw, err := json.Marshal(res.User)
	if err != nil {
		return types.Caller{}, fmt.Errorf("failed to encode user record: %w", err)
	}

	var caller types.Caller
	if err := json.Unmarshal(raw, &caller); err != nil {
		return types.Caller{}, fmt.Errorf("failed to decode user record: %w", err)
	}
	if caller.ID == "" {
		return types.Caller{}, fmt.Errorf("user record has no id")
	}

	caller.Approved = caller.IsAdmin() || caller.HasRole(ApprovedRole)

	return caller, nil
}
