package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"civic-portal/internal/models"
)

// HTTPProvider posts the raw image to an inference endpoint that answers
// with [{"label": ..., "score": ...}], the shape served by hosted
// image-classification pipelines.
type HTTPProvider struct {
	name     string
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPProvider(name, endpoint, token string) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Predict(ctx context.Context, img models.Image) ([]Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(img.Data))
	if err != nil {
		return nil, err
	}
	ct := img.ContentType
	if ct == "" {
		ct = http.DetectContentType(img.Data)
	}
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	var preds []Prediction
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&preds); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	return preds, nil
}
