package middleware

import (
	"crypto/subtle"
	"time"

	"cosmos-isolation/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderAPIKey is the request header carrying the API key.
const HeaderAPIKey = "X-API-Key"

// AuthConfig configures API key validation.
type AuthConfig struct {
	ApiKey string
	// Public lists paths served without a key.
	Public []string
}

// RequestID assigns a request id to every request.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: "requestid",
	})
}

// AccessLog logs request start and failures with the request id.
func AccessLog(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rl := logger.WithRequestID(l, c)
		err := c.Next()
		if err != nil {
			rl.Error("Request error", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
			return err
		}
		rl.Info("Request completed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

// Auth rejects requests without the configured API key. An empty key lets
// every request through.
func Auth(cfg AuthConfig) fiber.Handler {
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}
	expected := []byte(cfg.ApiKey)

	return keyauth.New(keyauth.Config{
		Next: func(c *fiber.Ctx) bool {
			if cfg.ApiKey == "" {
				return true
			}
			_, ok := public[c.Path()]
			return ok
		},
		KeyLookup:  "header:" + HeaderAPIKey,
		AuthScheme: "",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
	})
}
