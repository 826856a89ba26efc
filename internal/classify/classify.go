package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds classification service configuration from environment variables.
type Config struct {
	BaseURL string
	APIKey  string
}

// Result is the classifier's verdict on a reported waste item.
type Result struct {
	Analysis      string  `json:"analysis"`
	Recyclability float64 `json:"recyclability"`
}

// Service calls an external model to estimate recyclability of reported waste.
// It is best effort: when unconfigured or failing, reports are stored without
// an analysis.
type Service struct {
	cfg    Config
	client *http.Client
}

func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether the external classifier can be reached.
func (s *Service) Configured() bool {
	return s.cfg.BaseURL != "" && s.cfg.APIKey != ""
}

type classifyRequest struct {
	WasteType string `json:"waste_type"`
	Quantity  string `json:"quantity"`
}

// Classify asks the external model about one report. A nil Result with a nil
// error means the classifier is not configured.
func (s *Service) Classify(ctx context.Context, wasteType, quantity string) (*Result, error) {
	if !s.Configured() {
		return nil, nil
	}

	body, err := json.Marshal(classifyRequest{WasteType: wasteType, Quantity: quantity})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/classify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}

	// Clamp out-of-range model output instead of rejecting it.
	if result.Recyclability < 0 {
		result.Recyclability = 0
	}
	if result.Recyclability > 1 {
		result.Recyclability = 1
	}
	return &result, nil
}
