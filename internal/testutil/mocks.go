package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache implements pkg/cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockTaskEnqueuer implements service.ImageTaskEnqueuer
type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) EnqueueProcessImage(ctx context.Context, filename string) error {
	return m.Called(ctx, filename).Error(0)
}

func (m *MockTaskEnqueuer) EnqueueDeleteImage(ctx context.Context, filename string) error {
	return m.Called(ctx, filename).Error(0)
}
