package adsdomain

import (
	"fmt"
	"net/http"
	"strings"
)

const reauthorizeGuidance = "\n\nYour refresh token is invalid or expired. To fix this:\n" +
	"1. Run the interactive OAuth setup flow to generate a new refresh token\n" +
	"2. Update GOOGLE_ADS_REFRESH_TOKEN with the new value\n" +
	"3. Restart the server\n\n" +
	"Refresh tokens can expire if the Google account password changed, app access was revoked, " +
	"or the token was unused for a long time."

// AuthError representa uma falha na troca do refresh token por um access token
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("OAuth token refresh failed: %v", e.Err)
	}

	msg := fmt.Sprintf("OAuth token refresh failed: %d - %s", e.StatusCode, e.Body)
	if e.RequiresReauthorization() {
		msg += reauthorizeGuidance
	}

	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RequiresReauthorization indica que o refresh token foi revogado ou expirou
func (e *AuthError) RequiresReauthorization() bool {
	return IsInvalidGrant(e.Body)
}

// IsInvalidGrant verifica se o corpo do erro OAuth indica grant inválido
func IsInvalidGrant(body string) bool {
	return strings.Contains(body, "invalid_grant") ||
		strings.Contains(body, "expired") ||
		strings.Contains(body, "revoked")
}

// QueryError representa uma falha na chamada de relatório para uma conta
type QueryError struct {
	CustomerID string
	StatusCode int
	Body       string
	Err        error
}

func (e *QueryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("Google Ads API error for customer %s: %v", e.CustomerID, e.Err)
	}

	msg := fmt.Sprintf("Google Ads API request failed for customer %s: %d", e.CustomerID, e.StatusCode)

	switch e.StatusCode {
	case http.StatusNotFound:
		msg += fmt.Sprintf("\n\nPossible causes:\n"+
			"- Customer ID %s doesn't exist or you don't have access to it\n"+
			"- If accessing a client account, you may need to set GOOGLE_ADS_LOGIN_CUSTOMER_ID (your manager account ID)\n"+
			"- Verify the customer ID is correct (10 digits, no hyphens)\n"+
			"- Check that your OAuth credentials have access to this account", e.CustomerID)
	case http.StatusUnauthorized:
		msg += "\n\nAuthentication failed. Your access token may be invalid or expired."
	case http.StatusForbidden:
		msg += "\n\nPermission denied. Check that your developer token is approved and you have access to this account."
	default:
		if e.Body != "" {
			msg += " - " + e.Body
		}
	}

	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ParseError indica uma resposta da API fora do formato esperado
type ParseError struct {
	CustomerID string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid Google Ads response for customer %s: %v", e.CustomerID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
