package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("dev").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("prod").GetLevel())
}
