package store

import (
	"context"
	"testing"

	"billing-engine/internal/core"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() zerolog.Logger { return zerolog.Nop() }

func TestMemoryBackend_CopiesPayloads(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	payload := []byte(`[]`)
	require.NoError(t, b.Save(ctx, core.InvoicesCollection, payload))
	payload[0] = 'x'

	got, err := b.Load(ctx, core.InvoicesCollection)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	missing, err := b.Load(ctx, core.PaymentsCollection)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
