// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"book-records-api/pkg/container"
)

type startupCheck struct {
	name string
	fn   func(ctx context.Context) error
}

// startServices chạy các health check bắt buộc trước khi consume task.
// Redis backs the queue itself, so it is fatal here unlike in the API.
func startServices(c *container.Container) error {
	log.Info().Msg("Book worker starting...")

	checks := []startupCheck{
		{"Redis Connection", c.Cache.Ping},
		{"Upload Directory", func(context.Context) error { return c.Images.Writable() }},
	}
	if c.Mirror != nil {
		checks = append(checks, startupCheck{"MinIO Bucket", c.Mirror.Ping})
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msgf("%s: failed", check.name)
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Msgf("%s: OK", check.name)
	}
	return nil
}
