package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/golekaab-server/internal/testutil"
)

func TestRecovery_Handle(t *testing.T) {
	err := NewRecovery(testutil.MakeNoopLogger()).Handle(context.Background(), "boom")

	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "boom")
}
