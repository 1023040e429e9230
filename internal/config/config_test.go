package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("STORE", "Memory")
	t.Setenv("CLASSIFIER_URLS", " https://a.example/m1 ,,https://b.example/m2")
	t.Setenv("GEOCODE_TIMEOUT", "2s")
	t.Setenv("UPLOAD_BASE_URL", "")

	c := Load()
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, StoreMemory, c.Store)
	assert.Equal(t, []string{"https://a.example/m1", "https://b.example/m2"}, c.ClassifierURLs)
	assert.Equal(t, 2*time.Second, c.GeocodeTimeout)
	assert.Equal(t, "http://localhost:9090/uploads", c.UploadBaseURL)
	assert.False(t, c.UseCloudinary())
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("GEOCODE_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, Load().GeocodeTimeout)
}

func TestValidate_SessionSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"dev falls back to dev secret", "dev", "", false},
		{"prod without secret", "prod", "", true},
		{"prod with dev secret", "prod", DevSessionSecret, true},
		{"prod with real secret", "prod", "s3cr3t-from-vault", false},
		{"staging without secret", "staging", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("SESSION_SECRET", tt.secret)

			c := Load()
			err := c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoSessionSecret)
				return
			}
			assert.NoError(t, err)
			assert.NotEmpty(t, c.SessionSecret)
		})
	}
}
