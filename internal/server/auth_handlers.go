package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"amplify/internal/middleware"
	"amplify/internal/models"
	"amplify/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const oauthTimeout = 15 * time.Second

// googleUserinfo is the subset of the OIDC userinfo payload we rely on.
type googleUserinfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	HD      string `json:"hd"`
}

type oauthTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	IDToken      string `json:"id_token"`
}

// appBaseURL resolves the externally visible base URL for OAuth redirects.
// Behind the proxy the original host arrives in X-Forwarded-Host.
func (s *Server) appBaseURL(c *fiber.Ctx) string {
	if s.config.Env != "development" {
		if host := c.Get("X-Forwarded-Host"); host != "" {
			return "https://" + host
		}
	}
	if s.config.AppURL != "" {
		return strings.TrimSuffix(s.config.AppURL, "/")
	}
	return c.BaseURL()
}

// GoogleLogin redirects the browser to the Google OAuth consent screen.
func (s *Server) GoogleLogin(c *fiber.Ctx) error {
	if s.config.GoogleClientID == "" {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewValidationError("Google sign-in is not configured"))
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.config.GoogleClientID)
	q.Set("redirect_uri", s.appBaseURL(c)+"/api/auth/callback")
	q.Set("scope", "openid email profile")
	q.Set("hd", s.config.AllowedDomain)

	return c.Redirect(s.config.GoogleAuthURL+"?"+q.Encode(), fiber.StatusFound)
}

// GoogleCallback completes the sign-in: code exchange, domain check, user
// upsert and session cookie issue.
func (s *Server) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Redirect("/login?error=auth_callback_error", fiber.StatusFound)
	}

	token, err := s.exchangeCode(c, s.config.GoogleTokenURL, code,
		s.config.GoogleClientID, s.config.GoogleClientSecret,
		s.appBaseURL(c)+"/api/auth/callback")
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "google code exchange failed", "error", err.Error())
		return c.Redirect("/login?error=auth_callback_error", fiber.StatusFound)
	}

	info, err := s.fetchGoogleUserinfo(c, token.AccessToken)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "google userinfo fetch failed", "error", err.Error())
		return c.Redirect("/login?error=auth_callback_error", fiber.StatusFound)
	}

	if !strings.HasSuffix(strings.ToLower(info.Email), "@"+s.config.AllowedDomain) {
		middleware.Logger.WarnContext(c.UserContext(), "sign-in outside staff domain", "email", info.Email)
		return c.Redirect("/login?error=unauthorized_domain", fiber.StatusFound)
	}

	name := info.Name
	if name == "" {
		name = strings.SplitN(info.Email, "@", 2)[0]
	}
	user := &models.User{
		AuthID:    info.Sub,
		Email:     info.Email,
		Name:      name,
		AvatarURL: info.Picture,
		Role:      models.RoleContributor,
	}
	if err := s.userRepo.Upsert(c.UserContext(), user); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "user upsert failed", "error", err.Error())
		return c.Redirect("/login?error=auth_callback_error", fiber.StatusFound)
	}

	session, err := middleware.NewSessionToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return c.Redirect("/login?error=auth_callback_error", fiber.StatusFound)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session,
		Expires:  time.Now().Add(middleware.SessionTTL),
		HTTPOnly: true,
		Secure:   s.config.Env != "development",
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Redirect(s.appBaseURL(c)+"/dashboard", fiber.StatusFound)
}

func (s *Server) exchangeCode(c *fiber.Ctx, tokenURL, code, clientID, clientSecret, redirectURI string) (*oauthTokenResponse, error) {
	ctx, span := observability.TraceOutboundCall(c.UserContext(), "oauth", "token_exchange")
	defer span.End()

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: oauthTimeout}
	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var token oauthTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *Server) fetchGoogleUserinfo(c *fiber.Ctx, accessToken string) (*googleUserinfo, error) {
	ctx, span := observability.TraceOutboundCall(c.UserContext(), "oauth", "userinfo")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.GoogleUserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: oauthTimeout}
	resp, err := client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, body)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// linkedInState is round-tripped through the OAuth state parameter.
type linkedInState struct {
	UserID    string `json:"userId"`
	ReturnURL string `json:"returnUrl"`
}

// LinkedInConnect starts the organization-level LinkedIn OAuth grant flow.
func (s *Server) LinkedInConnect(c *fiber.Ctx) error {
	if s.config.LinkedInClientID == "" {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewValidationError("LinkedIn client ID not configured"))
	}

	returnURL := c.Query("returnUrl")
	if returnURL == "" {
		returnURL = "/posting"
	}
	email, _ := c.Locals("userEmail").(string)
	stateJSON, err := json.Marshal(linkedInState{UserID: email, ReturnURL: returnURL})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.config.LinkedInClientID)
	q.Set("redirect_uri", s.appBaseURL(c)+"/api/auth/linkedin/callback")
	q.Set("scope", "w_member_social")
	q.Set("state", base64.StdEncoding.EncodeToString(stateJSON))

	return c.Redirect(s.config.LinkedInAuthURL+"?"+q.Encode(), fiber.StatusFound)
}

// LinkedInCallback stores the organization grant after the code exchange.
func (s *Server) LinkedInCallback(c *fiber.Ctx) error {
	if oauthErr := c.Query("error"); oauthErr != "" {
		desc := c.Query("error_description")
		if desc == "" {
			desc = oauthErr
		}
		return c.Redirect("/posting?error="+url.QueryEscape(desc), fiber.StatusFound)
	}

	code := c.Query("code")
	rawState := c.Query("state")
	if code == "" || rawState == "" {
		return c.Redirect("/posting?error="+url.QueryEscape("Missing authorization code"), fiber.StatusFound)
	}

	var state linkedInState
	stateJSON, err := base64.StdEncoding.DecodeString(rawState)
	if err != nil || json.Unmarshal(stateJSON, &state) != nil || state.UserID == "" {
		return c.Redirect("/posting?error="+url.QueryEscape("Invalid state parameter"), fiber.StatusFound)
	}

	token, err := s.exchangeCode(c, s.config.LinkedInTokenURL, code,
		s.config.LinkedInClientID, s.config.LinkedInClientSecret,
		s.appBaseURL(c)+"/api/auth/linkedin/callback")
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "linkedin code exchange failed", "error", err.Error())
		return c.Redirect("/posting?error="+url.QueryEscape("Failed to get access token"), fiber.StatusFound)
	}

	conn := &models.LinkedInConnection{
		UserEmail:    state.UserID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
		Scope:        "w_member_social",
	}
	if err := s.snapshotRepo.SaveConnection(c.UserContext(), conn); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "linkedin connection save failed", "error", err.Error())
		return c.Redirect("/posting?error="+url.QueryEscape("Failed to store LinkedIn connection"), fiber.StatusFound)
	}

	returnURL := state.ReturnURL
	if returnURL == "" {
		returnURL = "/posting"
	}
	return c.Redirect(returnURL+"?linkedin=connected", fiber.StatusFound)
}

// LinkedInDisconnect removes the caller's LinkedIn grant.
func (s *Server) LinkedInDisconnect(c *fiber.Ctx) error {
	email, _ := c.Locals("userEmail").(string)
	if err := s.snapshotRepo.DeleteConnection(c.UserContext(), email); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"disconnected": true})
}

// Logout clears the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (s *Server) Me(c *fiber.Ctx) error {
	email, _ := c.Locals("userEmail").(string)
	user, err := s.userRepo.GetByEmail(c.UserContext(), email)
	if err != nil {
		// Session is valid but the row is gone; report the claims we hold.
		return c.JSON(fiber.Map{
			"email": email,
			"name":  c.Locals("userName"),
			"role":  c.Locals("userRole"),
		})
	}
	return c.JSON(user)
}
