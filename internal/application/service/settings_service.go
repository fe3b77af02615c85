package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
)

// ServerKeys are the server-wide service credentials from configuration
type ServerKeys struct {
	LLMAPIKey     string
	LLMBaseURL    string
	LLMModel      string
	MapAPIKey     string
	RemoteEnabled bool
}

// ResolvedKeys are the credentials used for one user's request
type ResolvedKeys struct {
	LLM       port.LLMCredentials
	MapAPIKey string
	Currency  string
	Style     entity.TravelStyle
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidSettings is returned for malformed settings updates
var ErrInvalidSettings = errors.New("invalid settings")

// SettingsService manages per-user settings and key resolution
type SettingsService interface {
	// Get returns the user's settings with keys masked, or defaults
	Get(ctx context.Context, userID string) (*entity.UserSettings, error)
	// Update saves settings. Masked keys echoed back keep the stored key.
	Update(ctx context.Context, userID string, in *entity.UserSettings) (*entity.UserSettings, error)
	// Resolve merges user keys over the server keys
	Resolve(ctx context.Context, userID string) (*ResolvedKeys, error)
}

type settingsServiceImpl struct {
	repo   port.SettingsRepository
	server ServerKeys
	logger Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo port.SettingsRepository, server ServerKeys, logger Logger) SettingsService {
	return &settingsServiceImpl{
		repo:   repo,
		server: server,
		logger: logger,
	}
}

func (s *settingsServiceImpl) load(ctx context.Context, userID string) (*entity.UserSettings, error) {
	settings, err := s.repo.Get(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// Get returns the masked settings
func (s *settingsServiceImpl) Get(ctx context.Context, userID string) (*entity.UserSettings, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return settings.Masked(), nil
}

// Update validates and saves settings
func (s *settingsServiceImpl) Update(ctx context.Context, userID string, in *entity.UserSettings) (*entity.UserSettings, error) {
	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return nil, fmt.Errorf("currency %q: %w", in.Currency, ErrInvalidSettings)
	}

	baseURL := strings.TrimSpace(in.LLMBaseURL)
	if baseURL != "" && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("llm_base_url must be an http(s) URL: %w", ErrInvalidSettings)
	}

	updated := &entity.UserSettings{
		UserID:             userID,
		LLMAPIKey:          keepIfMasked(in.LLMAPIKey, current.LLMAPIKey),
		LLMBaseURL:         baseURL,
		LLMModel:           strings.TrimSpace(in.LLMModel),
		MapAPIKey:          keepIfMasked(in.MapAPIKey, current.MapAPIKey),
		Currency:           currency,
		DefaultTravelStyle: entity.ParseTravelStyle(string(in.DefaultTravelStyle)),
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		s.logger.Error("Failed to save settings", "error", err, "user_id", userID)
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.logger.Info("Settings updated",
		"user_id", userID,
		"llm_key_set", updated.LLMAPIKey != "",
		"map_key_set", updated.MapAPIKey != "")

	return updated.Masked(), nil
}

// Resolve merges user settings over the server keys
func (s *settingsServiceImpl) Resolve(ctx context.Context, userID string) (*ResolvedKeys, error) {
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedKeys{
		MapAPIKey: firstNonEmpty(settings.MapAPIKey, s.server.MapAPIKey),
		Currency:  firstNonEmpty(settings.Currency, entity.DefaultCurrency),
		Style:     settings.DefaultTravelStyle,
	}

	if s.server.RemoteEnabled {
		if settings.LLMAPIKey != "" {
			resolved.LLM = port.LLMCredentials{
				APIKey:  settings.LLMAPIKey,
				BaseURL: firstNonEmpty(settings.LLMBaseURL, s.server.LLMBaseURL),
				Model:   firstNonEmpty(settings.LLMModel, s.server.LLMModel),
			}
		} else if s.server.LLMAPIKey != "" {
			resolved.LLM = port.LLMCredentials{
				APIKey:  s.server.LLMAPIKey,
				BaseURL: s.server.LLMBaseURL,
				Model:   s.server.LLMModel,
			}
		}
	}

	return resolved, nil
}

// keepIfMasked returns stored when incoming is the masked form of a key
func keepIfMasked(incoming, stored string) string {
	incoming = strings.TrimSpace(incoming)
	if strings.Contains(incoming, "****") {
		return stored
	}
	return incoming
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
