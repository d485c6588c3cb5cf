package camera

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunQueryPreviewNeedsNoSession(t *testing.T) {
	res, err := runQuery(context.Background(), nil, 0, QueryPreview, true)
	require.NoError(t, err)
	assert.True(t, res.PreviewActive)

	res, err = runQuery(context.Background(), nil, 0, QueryPreview, false)
	require.NoError(t, err)
	assert.False(t, res.PreviewActive)
}

func TestRunQueryUnknownKind(t *testing.T) {
	_, err := runQuery(context.Background(), nil, 0, QueryKind(999), false)
	assert.Error(t, err)
}
