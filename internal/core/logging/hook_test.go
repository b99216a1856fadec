package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "session and bookmark",
			setupCtx: func() context.Context {
				return WithSession(context.Background(), Session{ID: "sess-123", BookmarkID: 7})
			},
			wantKeys: []string{"session_id", "bookmark_id"},
		},
		{
			name: "bookmark without session id",
			setupCtx: func() context.Context {
				return WithSession(context.Background(), Session{BookmarkID: 7})
			},
			wantKeys:  []string{"bookmark_id"},
			wantEmpty: []string{"session_id"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"session_id", "bookmark_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.setupCtx()).Msg("test")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for _, key := range tt.wantKeys {
				assert.Contains(t, entry, key)
			}
			for _, key := range tt.wantEmpty {
				assert.NotContains(t, entry, key)
			}
		})
	}
}
