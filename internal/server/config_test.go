package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kong/mcp-konnect/internal/analytics"
	"github.com/kong/mcp-konnect/internal/inventory"
)

func TestMCP_Server_Config_Validate(t *testing.T) {
	t.Parallel()

	log := testLogger(t)
	engine, err := analytics.NewEngine(analytics.EngineConfig{Logger: log, Executor: &fakeExecutor{}})
	require.NoError(t, err)
	inv, err := inventory.New(inventory.Config{Logger: log, Lister: &fakeLister{}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing logger",
			cfg:     Config{Analytics: engine, Inventory: inv},
			wantErr: "logger is required",
		},
		{
			name:    "missing analytics",
			cfg:     Config{Logger: log, Inventory: inv},
			wantErr: "analytics engine is required",
		},
		{
			name:    "missing inventory",
			cfg:     Config{Logger: log, Analytics: engine},
			wantErr: "inventory is required",
		},
		{
			name: "fills defaults",
			cfg:  Config{Logger: log, Analytics: engine, Inventory: inv},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg.Clock)
			require.Equal(t, "dev", cfg.Version)
			require.Equal(t, defaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
			require.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
		})
	}
}
