package server_test

import (
	"testing"
	"time"

	"cosmos-isolation/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Address())
}

func TestConfig_StatusCacheTTL(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"Default", 30, 30 * time.Second},
		{"Disabled", 0, 0},
		{"Negative", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{StatusCacheSeconds: tt.seconds}
			assert.Equal(t, tt.want, c.StatusCacheTTL())
		})
	}
}
