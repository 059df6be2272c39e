package service

import (
	"context"
	"errors"
	"testing"

	"billing-engine/internal/core/domain"
	"billing-engine/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversionRateRepository struct {
	rates    []domain.ConversionRate
	listErr  error
	upserted []*domain.ConversionRate
}

func (f *fakeConversionRateRepository) ListAll(ctx context.Context) ([]domain.ConversionRate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rates, nil
}

func (f *fakeConversionRateRepository) Upsert(ctx context.Context, rate *domain.ConversionRate) error {
	f.upserted = append(f.upserted, rate)
	return nil
}

func mustRate(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.Parse(s)
	require.NoError(t, err)
	return m
}

func TestConversionGraph_Rate_SameCurrency(t *testing.T) {
	repo := &fakeConversionRateRepository{}
	g := NewConversionGraph(repo)

	rate, ok, err := g.Rate(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rate.Cmp(money.One()) == 0)
}

func TestConversionGraph_Rate_DirectEdge(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "20.000")},
		},
	}
	g := NewConversionGraph(repo)

	rate, ok, err := g.Rate(context.Background(), 1, 2, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, rate.Cmp(mustRate(t, "20.000")) == 0)
}

func TestConversionGraph_Rate_ReversedEdgeNotAllowed(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "20.000"), AllowReversed: false},
		},
	}
	g := NewConversionGraph(repo)

	_, ok, err := g.Rate(context.Background(), 2, 1, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConversionGraph_Rate_ReversedEdgeAllowed(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "20.000"), AllowReversed: true},
		},
	}
	g := NewConversionGraph(repo)

	rate, ok, err := g.Rate(context.Background(), 2, 1, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rate.Cmp(mustRate(t, "0.050")) == 0)
}

func TestConversionGraph_Rate_MultiHop(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "2.000")},
			{FromCurrencyID: 2, ToCurrencyID: 3, Rate: mustRate(t, "3.000")},
		},
	}
	g := NewConversionGraph(repo)

	rate, ok, err := g.Rate(context.Background(), 1, 3, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rate.Cmp(mustRate(t, "6.000")) == 0)
}

func TestConversionGraph_Rate_NoPath(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "2.000")},
		},
	}
	g := NewConversionGraph(repo)

	_, ok, err := g.Rate(context.Background(), 1, 99, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConversionGraph_Rate_RepoError(t *testing.T) {
	repo := &fakeConversionRateRepository{listErr: errors.New("db down")}
	g := NewConversionGraph(repo)

	_, _, err := g.Rate(context.Background(), 1, 2, false)
	require.Error(t, err)
}

func TestConversionGraph_RatesFrom(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "2.000")},
			{FromCurrencyID: 1, ToCurrencyID: 3, Rate: mustRate(t, "4.000")},
		},
	}
	g := NewConversionGraph(repo)

	result, err := g.RatesFrom(context.Background(), 1, false)
	require.NoError(t, err)
	require.Contains(t, result, int64(1))
	assert.True(t, result[1].Cmp(money.One()) == 0)
}

func TestConversionGraph_Invalidate_ForcesRebuild(t *testing.T) {
	repo := &fakeConversionRateRepository{
		rates: []domain.ConversionRate{
			{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "2.000")},
		},
	}
	g := NewConversionGraph(repo)

	rate, ok, err := g.Rate(context.Background(), 1, 2, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rate.Cmp(mustRate(t, "2.000")) == 0)

	repo.rates = []domain.ConversionRate{
		{FromCurrencyID: 1, ToCurrencyID: 2, Rate: mustRate(t, "5.000")},
	}
	g.Invalidate()

	rate, ok, err = g.Rate(context.Background(), 1, 2, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rate.Cmp(mustRate(t, "5.000")) == 0)
}
