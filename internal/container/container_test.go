package container

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votedesk/internal/config"
	"votedesk/internal/session"
	"votedesk/pkg/logger"
)

func testConfig(redisURL string) *config.Config {
	return &config.Config{
		Port:           "8080",
		Environment:    "test",
		APIBaseURL:     "http://localhost:5001",
		APITimeout:     time.Second,
		RedisURL:       redisURL,
		SessionTTL:     time.Hour,
		SessionCookie:  "votedesk_sid",
		PollInterval:   30 * time.Second,
		SearchDebounce: 300 * time.Millisecond,
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		redisURL    string
		expectRedis bool
		tasks       int
	}{
		{
			name:        "Container with Redis configured",
			redisURL:    "redis://" + mr.Addr(),
			expectRedis: true,
			tasks:       2,
		},
		{
			name:        "Container without Redis configured",
			redisURL:    "",
			expectRedis: false,
			tasks:       3,
		},
		{
			name:        "Container with invalid Redis URL",
			redisURL:    "invalid://redis-url",
			expectRedis: false, // Redis client initialization fails but container creation succeeds
			tasks:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(tt.redisURL)
			testLogger := logger.Nop()

			container, err := New(cfg, testLogger)
			require.NoError(t, err)
			require.NotNil(t, container)
			t.Cleanup(func() {
				if container.RedisClient != nil {
					_ = container.RedisClient.Close()
				}
			})

			assert.Equal(t, cfg, container.GetConfig())
			assert.Equal(t, testLogger, container.GetLogger())
			assert.Equal(t, tt.expectRedis, container.HasRedis())
			assert.Len(t, container.Tasks(), tt.tasks)

			require.NotNil(t, container.Services)
			assert.NotNil(t, container.Services.UserAuth)
			assert.NotNil(t, container.Services.AdminAuth)
			assert.NotNil(t, container.Services.Elections)
			assert.NotNil(t, container.Services.Candidates)
			assert.NotNil(t, container.Services.Users)
			assert.NotNil(t, container.Services.Results)
			assert.NotNil(t, container.Workspaces)
			assert.NotEmpty(t, container.Locations.States())

			if tt.expectRedis {
				assert.IsType(t, &session.RedisStore{}, container.Tokens)
				assert.NotNil(t, container.GetCacheService())
			} else {
				assert.IsType(t, &session.MemoryStore{}, container.Tokens)
				assert.Nil(t, container.GetCacheService())
				assert.Nil(t, container.GetRedisClient())
			}
		})
	}
}

func TestContainer_WorkspacesGetOwnMachines(t *testing.T) {
	container, err := New(testConfig(""), logger.Nop())
	require.NoError(t, err)

	a := container.Workspaces.Get(session.NewID())
	b := container.Workspaces.Get(session.NewID())
	assert.NotSame(t, a.Vote, b.Vote)
	assert.NotSame(t, a.User, b.User)
}
