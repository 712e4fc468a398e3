// Package testhelpers provides utilities for testing dds-engine components.
package testhelpers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// GenerateTestJWT creates a test JWT token for use when verification is disabled.
// The token has a valid structure but no signature (alg: none) and expires in one hour.
// Empty email or name are omitted from the payload.
func GenerateTestJWT(sub, email, name string) string {
	return generateTestJWT(sub, email, name, time.Now().Add(time.Hour))
}

// GenerateExpiredTestJWT creates an unsigned test token that expired a minute ago.
func GenerateExpiredTestJWT(sub string) string {
	return generateTestJWT(sub, "", "", time.Now().Add(-time.Minute))
}

// GenerateTestJWTWithBearer returns token with "Bearer " prefix for Authorization header.
func GenerateTestJWTWithBearer(sub, email, name string) string {
	return "Bearer " + GenerateTestJWT(sub, email, name)
}

func generateTestJWT(sub, email, name string, expiresAt time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload := map[string]any{
		"sub": sub,
		"exp": expiresAt.Unix(),
	}
	if email != "" {
		payload["email"] = email
	}
	if name != "" {
		payload["name"] = name
	}
	raw, _ := json.Marshal(payload)

	encodedPayload := base64.RawURLEncoding.EncodeToString(raw)
	return fmt.Sprintf("%s.%s.", header, encodedPayload)
}
