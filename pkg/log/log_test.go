package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/log"
)

func newBufferLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, zerolog.Disabled), &buf
}

func TestLogFileOperation(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		kind   log.Kind
		symbol string
	}{
		{log.KindFile, "✓"},
		{log.KindDir, "•"},
		{log.KindSymlink, "↪"},
		{log.KindMaterialized, "⇉"},
		{log.KindSkipped, "-"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			logger, buf := newBufferLogger()
			logger.LogFileOperation(log.FileOperation{Path: "plugins/modules/mod.py", Kind: tt.kind})
			assert.Equal(t, "    "+tt.symbol+" plugins/modules/mod.py\n", buf.String())
		})
	}
}

func TestLogStaging(t *testing.T) {
	color.NoColor = true
	logger, buf := newBufferLogger()

	logger.LogStaging("/src/checkout", "/tmp/x/collections/ansible_collections/ns/col")
	assert.Contains(t, buf.String(), "staging /src/checkout")
	assert.Contains(t, buf.String(), "ansible_collections/ns/col")
}

func TestSuccessAndError(t *testing.T) {
	color.NoColor = true
	logger, buf := newBufferLogger()

	logger.Success("staged %d collections", 2)
	logger.Error("copy failed: %v", "boom")
	assert.Contains(t, buf.String(), "✓ staged 2 collections")
	assert.Contains(t, buf.String(), "✗ copy failed: boom")
}

func TestContextRoundTrip(t *testing.T) {
	logger, _ := newBufferLogger()
	ctx := log.NewContext(context.Background(), logger)
	assert.Same(t, logger, log.FromContext(ctx))

	// Absent logger yields a usable discarding one.
	fallback := log.FromContext(context.Background())
	assert.NotNil(t, fallback)
	fallback.Success("goes nowhere")
}
