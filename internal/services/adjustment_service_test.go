package services

import (
	"context"
	"errors"
	"testing"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type AdjustmentServiceTestSuite struct {
	suite.Suite
	stockRepo      *fakeStockRepo
	adjustmentRepo *fakeAdjustmentRepo
	service        AdjustmentService

	productID   uuid.UUID
	warehouseID uuid.UUID
	actorID     uuid.UUID
}

func (s *AdjustmentServiceTestSuite) SetupTest() {
	s.productID = uuid.New()
	s.warehouseID = uuid.New()
	s.actorID = uuid.New()

	s.stockRepo = newFakeStockRepo()
	s.adjustmentRepo = &fakeAdjustmentRepo{}
	s.service = NewAdjustmentService(
		s.stockRepo,
		s.adjustmentRepo,
		newFakeProductRepo(s.productID),
		newFakeWarehouseRepo(s.warehouseID),
		fakeCache{},
		zerolog.Nop(),
	)
}

func (s *AdjustmentServiceTestSuite) TestApplySnapshotsPreviousAndNew() {
	s.stockRepo.set(s.productID, s.warehouseID, 12)

	adjustment, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 30, "annual stocktake")

	s.Require().NoError(err)
	s.Equal(12, adjustment.PreviousQuantity)
	s.Equal(30, adjustment.NewQuantity)
	s.Equal("annual stocktake", adjustment.Reason)
	s.Equal(s.actorID, adjustment.CreatedBy)
	s.Equal(30, s.stockRepo.quantity(s.productID, s.warehouseID))
}

func (s *AdjustmentServiceTestSuite) TestApplyCreatesMissingEntry() {
	adjustment, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 15, "initial count")

	s.Require().NoError(err)
	s.Equal(0, adjustment.PreviousQuantity)
	s.Equal(15, s.stockRepo.quantity(s.productID, s.warehouseID))
}

func (s *AdjustmentServiceTestSuite) TestNegativeQuantityRejected() {
	_, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, -1, "typo")

	var validationErr *models.ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Equal("new_quantity", validationErr.Field)
}

func (s *AdjustmentServiceTestSuite) TestMissingReasonRejected() {
	_, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 5, "")

	var validationErr *models.ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Equal("reason", validationErr.Field)
}

func (s *AdjustmentServiceTestSuite) TestUnknownProductRejected() {
	_, err := s.service.Apply(context.Background(), s.actorID, uuid.New(), s.warehouseID, 5, "count")

	var validationErr *models.ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Equal("product_id", validationErr.Field)
}

func (s *AdjustmentServiceTestSuite) TestLostRaceSnapshotsFreshPrevious() {
	s.stockRepo.set(s.productID, s.warehouseID, 12)
	s.stockRepo.forceConflicts[stockKey{s.productID, s.warehouseID}] = 1

	adjustment, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 30, "stocktake")

	s.Require().NoError(err)
	s.Equal(12, adjustment.PreviousQuantity)
	s.Equal(30, s.stockRepo.quantity(s.productID, s.warehouseID))
}

func (s *AdjustmentServiceTestSuite) TestExhaustedRetriesSurfaceContention() {
	s.stockRepo.set(s.productID, s.warehouseID, 12)
	s.stockRepo.forceConflicts[stockKey{s.productID, s.warehouseID}] = casMaxRetries

	_, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 30, "stocktake")

	var contentionErr *models.ContentionError
	s.Require().ErrorAs(err, &contentionErr)
	s.Equal(12, s.stockRepo.quantity(s.productID, s.warehouseID))
	s.Empty(s.adjustmentRepo.adjustments)
}

func (s *AdjustmentServiceTestSuite) TestAuditAppendFailureKeepsStockMutation() {
	s.stockRepo.set(s.productID, s.warehouseID, 12)
	s.adjustmentRepo.appendErr = errors.New("connection reset")

	_, err := s.service.Apply(context.Background(), s.actorID, s.productID, s.warehouseID, 30, "stocktake")

	var ledgerErr *models.LedgerAppendError
	s.Require().ErrorAs(err, &ledgerErr)
	s.Equal(30, s.stockRepo.quantity(s.productID, s.warehouseID))
}

func TestAdjustmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdjustmentServiceTestSuite))
}
