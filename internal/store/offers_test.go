// internal/store/offers_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

func sampleOffers() []models.Offer {
	return []models.Offer{
		{
			ID:         1,
			Price:      "12139.00",
			PriceValue: 12139,
			Currency:   "EGP",
			SearchDate: "2025-08-13",
			Outbound: models.FlightLeg{
				Airline:          "MS",
				FlightNumber:     "MS799",
				DepartureAirport: "CAI",
				ArrivalAirport:   "CDG",
			},
			ArrivalCityCode: "PAR",
		},
		{
			ID:         2,
			Price:      "23576.00",
			PriceValue: 23576,
			Currency:   "EGP",
			SearchDate: "2025-08-14",
			Outbound: models.FlightLeg{
				Airline:          "AF",
				FlightNumber:     "AF571",
				DepartureAirport: "CAI",
				ArrivalAirport:   "CDG",
			},
			ArrivalCityCode: "PAR",
		},
	}
}

func TestMemoryOfferCache_SetGet(t *testing.T) {
	c := NewMemoryOfferCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, 1, cached[0].ID)
	assert.Equal(t, "MS799", cached[0].Outbound.FlightNumber)
	assert.Equal(t, "PAR", cached[1].ArrivalCityCode)
}

func TestMemoryOfferCache_SetReplacesPreviousResults(t *testing.T) {
	c := NewMemoryOfferCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))
	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()[:1]))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestMemoryOfferCache_GetMissingThread(t *testing.T) {
	c := NewMemoryOfferCache()

	cached, err := c.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestMemoryOfferCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryOfferCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	cached[0].Price = "mutated"

	again, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "12139.00", again[0].Price)
}

func TestMemoryOfferCache_Clear(t *testing.T) {
	c := NewMemoryOfferCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))
	require.NoError(t, c.Clear(ctx, "thread-1"))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisOfferCache_SetGet(t *testing.T) {
	client := setupRedis(t)
	c := NewRedisOfferCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "CDG", cached[0].Outbound.ArrivalAirport)
	assert.Equal(t, "23576.00", cached[1].Price)
}

func TestRedisOfferCache_GetMissingThread(t *testing.T) {
	client := setupRedis(t)
	c := NewRedisOfferCache(client, time.Hour)

	cached, err := c.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisOfferCache_Clear(t *testing.T) {
	client := setupRedis(t)
	c := NewRedisOfferCache(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "thread-1", sampleOffers()))
	require.NoError(t, c.Clear(ctx, "thread-1"))

	cached, err := c.Get(ctx, "thread-1")
	require.NoError(t, err)
	assert.Nil(t, cached)
}
