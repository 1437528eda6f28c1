package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
)

// Health states reported per service
const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// DefaultHealthPath is the actuator endpoint every backend service exposes
const DefaultHealthPath = "/actuator/health"

// HealthProbe checks one backend service
type HealthProbe struct {
	client *serviceclient.Client
	path   string
}

// NewHealthProbe creates a probe for the client's service. An empty path
// means DefaultHealthPath.
func NewHealthProbe(client *serviceclient.Client, path string) *HealthProbe {
	if path == "" {
		path = DefaultHealthPath
	}
	return &HealthProbe{client: client, path: path}
}

// Name returns the probed service name
func (p *HealthProbe) Name() string {
	return p.client.Name()
}

// Check returns UP when the service answers 2xx and its body, if any,
// does not report another status
func (p *HealthProbe) Check(ctx context.Context) (string, error) {
	resp, err := p.client.Do(ctx, serviceclient.Request{
		Method: http.MethodGet,
		Path:   p.path,
		Public: true,
	})
	if err != nil {
		return StatusDown, err
	}

	var body struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(resp.Body, &body) == nil && body.Status != "" && !strings.EqualFold(body.Status, StatusUp) {
		return StatusDown, nil
	}
	return StatusUp, nil
}
