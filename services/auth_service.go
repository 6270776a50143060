package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rematch-liga/league-system/models"
	"github.com/rematch-liga/league-system/repositories"
)

const (
	discordAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	discordTokenURL     = "https://discord.com/api/oauth2/token"
	discordUserURL      = "https://discord.com/api/users/@me"
)

// DiscordConfig carries the OAuth application credentials.
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// AdminConfig carries the single configured admin account. PasswordHash is
// a bcrypt hash, never the plain password.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type AuthService interface {
	// LoginURL builds the Discord authorization redirect for the given
	// CSRF state token.
	LoginURL(state string) string
	// HandleDiscordCallback exchanges the authorization code, fetches the
	// Discord profile and upserts the matching user.
	HandleDiscordCallback(ctx context.Context, code string) (*models.User, error)
	// AdminLogin verifies the configured admin credentials and returns the
	// backing admin user row.
	AdminLogin(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
	discord  DiscordConfig
	admin    AdminConfig
	client   *http.Client
}

func NewAuthService(userRepo repositories.UserRepository, discord DiscordConfig, admin AdminConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		discord:  discord,
		admin:    admin,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *authService) LoginURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.discord.ClientID)
	params.Set("redirect_uri", s.discord.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", "identify")
	params.Set("state", state)
	return discordAuthorizeURL + "?" + params.Encode()
}

type discordTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type discordProfile struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

func (s *authService) HandleDiscordCallback(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, ErrInvalidCredentials
	}

	token, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.upsertDiscordUser(ctx, profile)
}

func (s *authService) exchangeCode(ctx context.Context, code string) (*discordTokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", s.discord.ClientID)
	form.Set("client_secret", s.discord.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.discord.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, discordTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCredentials
	}

	var token discordTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}
	return &token, nil
}

func (s *authService) fetchProfile(ctx context.Context, token *discordTokenResponse) (*discordProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordUserURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidCredentials
	}

	var profile discordProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode discord profile: %w", err)
	}
	if profile.ID == "" {
		return nil, ErrInvalidCredentials
	}
	return &profile, nil
}

func (s *authService) upsertDiscordUser(ctx context.Context, profile *discordProfile) (*models.User, error) {
	user, err := s.userRepo.GetByDiscordID(ctx, profile.ID)
	if err == nil {
		// Refresh the profile on every login, failure is not fatal.
		if updateErr := s.userRepo.UpdateDiscordProfile(ctx, user.ID, profile.Username, profile.Avatar); updateErr == nil {
			user.DiscordUsername = profile.Username
			user.DiscordAvatar = profile.Avatar
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up discord user: %w", err)
	}

	user = &models.User{
		DiscordID:       profile.ID,
		DiscordUsername: profile.Username,
		DiscordAvatar:   profile.Avatar,
		Role:            models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserDiscordIDConflict) {
			// Lost a race with a concurrent first login.
			return s.userRepo.GetByDiscordID(ctx, profile.ID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) AdminLogin(ctx context.Context, username, password string) (*models.User, error) {
	if s.admin.Username == "" || s.admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if username != s.admin.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify admin password: %w", err)
	}

	// The admin account is backed by a synthetic user row so that tokens and
	// foreign keys work the same way as for Discord users.
	discordID := "admin-" + username
	user, err := s.userRepo.GetByDiscordID(ctx, discordID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	user = &models.User{
		DiscordID:       discordID,
		DiscordUsername: username,
		Role:            models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return user, nil
}
