package user

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func startDirectory(t *testing.T, repo Repository) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, NewService(repo))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDirectory_GetProfile(t *testing.T) {
	repo := NewMemRepo(Profile{ID: "u1", Name: "Bea", Email: "bea@example.com", Phone: "555"})
	c := startDirectory(t, repo)

	p, err := c.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bea", p.Name)
	assert.Equal(t, "bea@example.com", p.Email)
	assert.Equal(t, "555", p.Phone)

	_, err = c.Profile(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Profile(context.Background(), "")
	assert.Error(t, err)
}

func TestMemRepo_UpsertKeepsFields(t *testing.T) {
	repo := NewMemRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &Profile{ID: "u1", Name: "Bea", Email: "bea@example.com"}))
	require.NoError(t, repo.Upsert(ctx, &Profile{ID: "u1", Phone: "555"}))

	p, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Bea", p.Name)
	assert.Equal(t, "555", p.Phone)
}
