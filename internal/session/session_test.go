package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func TestSession_Lifecycle(t *testing.T) {
	s := Open(Identity{Subject: "u-1", Role: RoleBroker}, t0)
	assert.False(t, s.Closed())

	require.NoError(t, s.SelectProduct(domain.ProductFuneral))
	p, err := s.Product()
	require.NoError(t, err)
	assert.Equal(t, domain.ProductFuneral, p)

	q := &domain.Quote{Product: domain.ProductAuto}
	require.NoError(t, s.RecordQuote(q))
	last, err := s.LastQuote()
	require.NoError(t, err)
	assert.Same(t, q, last)
	p, _ = s.Product()
	assert.Equal(t, domain.ProductAuto, p, "recording a quote follows its product")

	var order []int
	require.NoError(t, s.OnClose(func() { order = append(order, 1) }))
	require.NoError(t, s.OnClose(func() { order = append(order, 2) }))

	require.NoError(t, s.Close(t0.Add(time.Minute)))
	assert.True(t, s.Closed())
	assert.Equal(t, []int{2, 1}, order)
	assert.Equal(t, time.Minute, s.Duration(t0.Add(time.Hour)))
}

func TestSession_ClosedOperationsFail(t *testing.T) {
	s := Open(Identity{Subject: "u-2", Role: RoleClient}, t0)
	require.NoError(t, s.Close(t0))

	assert.ErrorIs(t, s.Close(t0), ErrClosed)
	assert.ErrorIs(t, s.SelectProduct(domain.ProductAuto), ErrClosed)
	assert.ErrorIs(t, s.RecordQuote(nil), ErrClosed)
	assert.ErrorIs(t, s.OnClose(func() {}), ErrClosed)
	_, err := s.Product()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.LastQuote()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_SelectUnknownProduct(t *testing.T) {
	s := Open(Identity{}, t0)
	err := s.SelectProduct("habitation")

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRole(t *testing.T) {
	r, err := ParseRole("broker")
	require.NoError(t, err)
	assert.True(t, r.Allows(RoleBroker, RoleAdmin))
	assert.False(t, r.Allows(RoleAdmin))
	assert.True(t, RoleAdmin.Allows(RoleBroker))
	assert.False(t, RoleClient.Allows(RoleBroker))

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := Open(Identity{Subject: "u-3"}, t0)
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
