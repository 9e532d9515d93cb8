package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testStock() *Stock {
	return &Stock{
		Brand:               "Honda",
		ModelName:           "XR150L",
		Year:                2026,
		QuantityAvailable:   10,
		QuantityReserved:    3,
		QuantitySold:        5,
		QuantityRepossessed: 2,
	}
}

func TestStockReserve(t *testing.T) {
	s := testStock()

	assert.NoError(t, s.Reserve(4))
	assert.Equal(t, 6, s.QuantityAvailable)
	assert.Equal(t, 7, s.QuantityReserved)

	err := s.Reserve(7)
	assert.EqualError(t, err, "insufficient available stock: have 6, requested 7")
	assert.Equal(t, 6, s.QuantityAvailable)
	assert.Equal(t, 7, s.QuantityReserved)
}

func TestStockCancelReservation(t *testing.T) {
	s := testStock()

	assert.NoError(t, s.CancelReservation(3))
	assert.Equal(t, 13, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)

	assert.Error(t, s.CancelReservation(1))
}

func TestStockMarkSoldDrawsFromReserved(t *testing.T) {
	s := testStock()

	// 10 available, 3 reserved; selling 12 drains available first
	assert.NoError(t, s.MarkSold(12))
	assert.Equal(t, 0, s.QuantityAvailable)
	assert.Equal(t, 1, s.QuantityReserved)
	assert.Equal(t, 17, s.QuantitySold)

	assert.Error(t, s.MarkSold(2))
}

func TestStockRepossessionRoundTrip(t *testing.T) {
	s := testStock()

	assert.NoError(t, s.MarkRepossessed(2))
	assert.Equal(t, 3, s.QuantitySold)
	assert.Equal(t, 4, s.QuantityRepossessed)

	assert.NoError(t, s.ReturnToAvailable(4))
	assert.Equal(t, 14, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityRepossessed)

	assert.Error(t, s.MarkRepossessed(4))
	assert.Error(t, s.ReturnToAvailable(1))
}

func TestStockAvailableSoldTransfers(t *testing.T) {
	s := testStock()

	assert.NoError(t, s.DecreaseAvailable(1))
	assert.Equal(t, 9, s.QuantityAvailable)
	assert.Equal(t, 6, s.QuantitySold)

	assert.NoError(t, s.IncreaseAvailable(6))
	assert.Equal(t, 15, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantitySold)

	assert.Error(t, s.DecreaseAvailable(16))
	assert.Error(t, s.IncreaseAvailable(1))
}

func TestStockTransfersRejectNonPositiveAmounts(t *testing.T) {
	s := testStock()

	assert.Error(t, s.Reserve(0))
	assert.Error(t, s.MarkSold(-1))
	assert.Error(t, s.DecreaseAvailable(0))
	assert.Equal(t, 20, s.TotalQuantity())
}

func TestStockTotalConservedAcrossTransfers(t *testing.T) {
	s := testStock()
	total := s.TotalQuantity()
	assert.Equal(t, 20, total)

	assert.NoError(t, s.Reserve(2))
	assert.NoError(t, s.MarkSold(5))
	assert.NoError(t, s.MarkRepossessed(3))
	assert.NoError(t, s.ReturnToAvailable(1))
	assert.NoError(t, s.CancelReservation(1))
	assert.NoError(t, s.DecreaseAvailable(2))
	assert.NoError(t, s.IncreaseAvailable(1))

	assert.Equal(t, total, s.TotalQuantity())
}
