package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lyceum-sis/lyceum/internal/auth"
	"github.com/lyceum-sis/lyceum/internal/shared"
)

func TestContextRoundTrip(t *testing.T) {
	want := auth.Context{UserID: shared.NewID(), Role: shared.RoleTeacher}
	ctx := auth.WithContext(context.Background(), want)

	got, err := auth.FromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestContextAbsent(t *testing.T) {
	_, err := auth.FromContext(context.Background())
	require.ErrorIs(t, err, auth.ErrMissingContext)
}
