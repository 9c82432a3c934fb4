package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/tidwall/gjson"
)

// SupabaseBackend authenticates against a hosted GoTrue service.
type SupabaseBackend struct {
	client *resty.Client
	now    func() time.Time
}

// NewSupabaseBackend creates a backend for the project at baseURL.
func NewSupabaseBackend(baseURL, anonKey string) *SupabaseBackend {
	return NewSupabaseBackendWithClient(NewSupabaseClient(baseURL, anonKey))
}

// NewSupabaseBackendWithClient uses an already configured client.
func NewSupabaseBackendWithClient(client *resty.Client) *SupabaseBackend {
	return &SupabaseBackend{client: client, now: time.Now}
}

// NewSupabaseClient returns a resty client preconfigured with the project
// URL and anon key. It is shared with the persistence adapter.
func NewSupabaseClient(baseURL, anonKey string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("apikey", anonKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
}

// SignUp creates an account with full_name metadata.
func (b *SupabaseBackend) SignUp(ctx context.Context, fullName, email, password string) (*types.Session, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":    email,
			"password": password,
			"data":     map[string]string{"full_name": fullName},
		}).
		Post("/auth/v1/signup")
	if err := checkAuth(resp, err); err != nil {
		return nil, err
	}

	body := resp.String()
	if !gjson.Get(body, "access_token").Exists() {
		// Email confirmation is enabled: the account exists but has no session yet.
		return nil, NewAuthError(KindConfirmationPending, nil)
	}
	return b.sessionFromBody(body)
}

// SignIn exchanges email and password for a session.
func (b *SupabaseBackend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/v1/token")
	if err := checkAuth(resp, err); err != nil {
		return nil, err
	}
	return b.sessionFromBody(resp.String())
}

// SignOut revokes the session's refresh tokens.
func (b *SupabaseBackend) SignOut(ctx context.Context, s *types.Session) error {
	if s == nil || s.AccessToken == "" {
		return nil
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(s.AccessToken).
		Post("/auth/v1/logout")
	return checkAuth(resp, err)
}

// RequestPasswordReset asks GoTrue to mail a recovery link.
func (b *SupabaseBackend) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	req := b.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email})
	if redirectURL != "" {
		req.SetQueryParam("redirect_to", redirectURL)
	}
	resp, err := req.Post("/auth/v1/recover")
	return checkAuth(resp, err)
}

// VerifyRecovery exchanges the token hash of a recovery link for a session.
func (b *SupabaseBackend) VerifyRecovery(ctx context.Context, token string) (*types.Session, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"type": "recovery", "token_hash": strings.TrimSpace(token)}).
		Post("/auth/v1/verify")
	if err := checkAuth(resp, err); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) && authErr.Kind != KindUnavailable {
			return nil, NewAuthError(KindExpiredResetLink, err)
		}
		return nil, err
	}
	return b.sessionFromBody(resp.String())
}

// UpdatePassword sets a new password for the session's user.
func (b *SupabaseBackend) UpdatePassword(ctx context.Context, s *types.Session, newPassword string) error {
	if s == nil || s.AccessToken == "" {
		return NewAuthError(KindNotSignedIn, nil)
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(s.AccessToken).
		SetBody(map[string]string{"password": newPassword}).
		Put("/auth/v1/user")
	return checkAuth(resp, err)
}

// VerifyToken loads the user behind an access token.
func (b *SupabaseBackend) VerifyToken(ctx context.Context, accessToken string) (*types.Session, error) {
	if accessToken == "" {
		return nil, NewAuthError(KindNotSignedIn, nil)
	}
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/auth/v1/user")
	if err := checkAuth(resp, err); err != nil {
		return nil, err
	}

	user := gjson.Parse(resp.String())
	sess, err := sessionFromUser(user)
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	sess.AccessToken = accessToken
	return sess, nil
}

func (b *SupabaseBackend) sessionFromBody(body string) (*types.Session, error) {
	root := gjson.Parse(body)
	sess, err := sessionFromUser(root.Get("user"))
	if err != nil {
		return nil, NewAuthError(KindUnavailable, err)
	}
	sess.AccessToken = root.Get("access_token").String()
	if exp := root.Get("expires_in").Int(); exp > 0 {
		sess.ExpiresAt = b.now().Add(time.Duration(exp) * time.Second)
	}
	return sess, nil
}

func sessionFromUser(user gjson.Result) (*types.Session, error) {
	id, err := uuid.Parse(user.Get("id").String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	return &types.Session{
		UserID:   id,
		Email:    user.Get("email").String(),
		FullName: user.Get("user_metadata.full_name").String(),
	}, nil
}

// checkAuth converts a transport error or GoTrue error body into an AuthError.
func checkAuth(resp *resty.Response, err error) error {
	if err != nil {
		return NewAuthError(KindUnavailable, fmt.Errorf("failed to reach auth service: %w", err))
	}
	if !resp.IsError() {
		return nil
	}

	body := resp.String()
	code := firstNonEmpty(
		gjson.Get(body, "error_code").String(),
		gjson.Get(body, "error").String(),
	)
	msg := firstNonEmpty(
		gjson.Get(body, "msg").String(),
		gjson.Get(body, "error_description").String(),
		gjson.Get(body, "message").String(),
	)
	cause := fmt.Errorf("auth service returned %d: %s %s", resp.StatusCode(), code, msg)

	return NewAuthError(classifyGoTrue(resp.StatusCode(), code, msg), cause)
}

func classifyGoTrue(status int, code, msg string) Kind {
	lowerMsg := strings.ToLower(msg)
	switch {
	case code == "invalid_credentials" || code == "invalid_grant" || strings.Contains(lowerMsg, "invalid login credentials"):
		return KindInvalidCredentials
	case code == "user_already_exists" || code == "email_exists" || strings.Contains(lowerMsg, "already registered"):
		return KindDuplicateAccount
	case code == "weak_password" || strings.Contains(lowerMsg, "password should be"):
		return KindWeakPassword
	case code == "otp_expired" || strings.Contains(lowerMsg, "expired"):
		return KindExpiredResetLink
	case code == "email_not_confirmed":
		return KindConfirmationPending
	case status == http.StatusUnauthorized || status == http.StatusForbidden || code == "bad_jwt":
		return KindNotSignedIn
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return KindInvalidCredentials
	}
	return KindUnavailable
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
