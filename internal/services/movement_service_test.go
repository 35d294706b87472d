package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type MovementServiceTestSuite struct {
	suite.Suite
	stockRepo    *fakeStockRepo
	movementRepo *fakeMovementRepo
	service      MovementService

	productID uuid.UUID
	sourceID  uuid.UUID
	destID    uuid.UUID
	actorID   uuid.UUID
}

func (s *MovementServiceTestSuite) SetupTest() {
	s.productID = uuid.New()
	s.sourceID = uuid.New()
	s.destID = uuid.New()
	s.actorID = uuid.New()

	s.stockRepo = newFakeStockRepo()
	s.movementRepo = &fakeMovementRepo{}
	s.service = NewMovementService(
		s.stockRepo,
		s.movementRepo,
		newFakeProductRepo(s.productID),
		newFakeWarehouseRepo(s.sourceID, s.destID),
		fakeCache{},
		zerolog.Nop(),
	)
}

func (s *MovementServiceTestSuite) transferIntent(quantity int) models.MovementIntent {
	return models.MovementIntent{
		Type:            models.MovementTypeTransfer,
		ProductID:       s.productID,
		Quantity:        quantity,
		FromWarehouseID: &s.sourceID,
		ToWarehouseID:   &s.destID,
	}
}

func (s *MovementServiceTestSuite) TestTransferMovesStockBetweenWarehouses() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	s.stockRepo.set(s.productID, s.destID, 0)

	movement, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	s.Require().NoError(err)
	s.Equal(15, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(5, s.stockRepo.quantity(s.productID, s.destID))
	s.Equal(models.MovementTypeTransfer, movement.Type)
	s.Equal(s.actorID, movement.CreatedBy)
	s.Equal(1, s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestTransferCreatesDestinationEntryLazily() {
	s.stockRepo.set(s.productID, s.sourceID, 10)

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(4))

	s.Require().NoError(err)
	s.Equal(6, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(4, s.stockRepo.quantity(s.productID, s.destID))
}

func (s *MovementServiceTestSuite) TestInsufficientStockRejectsWithoutSideEffects() {
	s.stockRepo.set(s.productID, s.sourceID, 3)

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	var insufficientErr *models.InsufficientStockError
	s.Require().ErrorAs(err, &insufficientErr)
	s.Equal(3, insufficientErr.Available)
	s.Equal(5, insufficientErr.Requested)
	s.Equal(3, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(0, s.stockRepo.quantity(s.productID, s.destID))
	s.Zero(s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestProductionOutputDebitsSource() {
	s.stockRepo.set(s.productID, s.sourceID, 10)

	movement, err := s.service.Submit(context.Background(), s.actorID, models.MovementIntent{
		Type:            models.MovementTypeProductionOutput,
		ProductID:       s.productID,
		Quantity:        4,
		FromWarehouseID: &s.sourceID,
	})

	s.Require().NoError(err)
	s.Equal(6, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Nil(movement.ToWarehouseID)
	s.Equal(1, s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestReturnCreditsDestination() {
	movement, err := s.service.Submit(context.Background(), s.actorID, models.MovementIntent{
		Type:          models.MovementTypeReturn,
		ProductID:     s.productID,
		Quantity:      7,
		ToWarehouseID: &s.destID,
	})

	s.Require().NoError(err)
	s.Equal(7, s.stockRepo.quantity(s.productID, s.destID))
	s.Nil(movement.FromWarehouseID)
}

func (s *MovementServiceTestSuite) TestValidationRejectsMalformedIntents() {
	cases := []struct {
		name   string
		intent models.MovementIntent
	}{
		{"unknown type", models.MovementIntent{Type: "teleport", ProductID: s.productID, Quantity: 1, FromWarehouseID: &s.sourceID, ToWarehouseID: &s.destID}},
		{"zero quantity", s.transferIntent(0)},
		{"negative quantity", s.transferIntent(-2)},
		{"transfer missing destination", models.MovementIntent{Type: models.MovementTypeTransfer, ProductID: s.productID, Quantity: 1, FromWarehouseID: &s.sourceID}},
		{"transfer to itself", models.MovementIntent{Type: models.MovementTypeTransfer, ProductID: s.productID, Quantity: 1, FromWarehouseID: &s.sourceID, ToWarehouseID: &s.sourceID}},
		{"production output with destination", models.MovementIntent{Type: models.MovementTypeProductionOutput, ProductID: s.productID, Quantity: 1, FromWarehouseID: &s.sourceID, ToWarehouseID: &s.destID}},
		{"return with source", models.MovementIntent{Type: models.MovementTypeReturn, ProductID: s.productID, Quantity: 1, FromWarehouseID: &s.sourceID, ToWarehouseID: &s.destID}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Submit(context.Background(), s.actorID, tc.intent)
			var validationErr *models.ValidationError
			s.ErrorAs(err, &validationErr)
			s.Zero(s.movementRepo.count())
		})
	}
}

func (s *MovementServiceTestSuite) TestUnknownProductRejected() {
	intent := s.transferIntent(1)
	intent.ProductID = uuid.New()
	s.stockRepo.set(s.productID, s.sourceID, 10)

	_, err := s.service.Submit(context.Background(), s.actorID, intent)

	var validationErr *models.ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Equal("product_id", validationErr.Field)
}

func (s *MovementServiceTestSuite) TestUnknownWarehouseRejected() {
	unknown := uuid.New()
	intent := s.transferIntent(1)
	intent.ToWarehouseID = &unknown
	s.stockRepo.set(s.productID, s.sourceID, 10)

	_, err := s.service.Submit(context.Background(), s.actorID, intent)

	var validationErr *models.ValidationError
	s.Require().ErrorAs(err, &validationErr)
}

func (s *MovementServiceTestSuite) TestLostRaceRetriesAgainstFreshValue() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	// Two lost races before the update lands. The loop must re-read and
	// still land on 20-5, not a stale arithmetic result.
	s.stockRepo.forceConflicts[stockKey{s.productID, s.sourceID}] = 2

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	s.Require().NoError(err)
	s.Equal(15, s.stockRepo.quantity(s.productID, s.sourceID))
}

func (s *MovementServiceTestSuite) TestExhaustedRetriesSurfaceContention() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	s.stockRepo.forceConflicts[stockKey{s.productID, s.sourceID}] = casMaxRetries

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	var contentionErr *models.ContentionError
	s.Require().ErrorAs(err, &contentionErr)
	s.Equal(casMaxRetries, contentionErr.Attempts)
	// Nothing committed: safe to resubmit the identical intent.
	s.Equal(20, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Zero(s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestConcurrentTransfersNeverOversell() {
	s.stockRepo.set(s.productID, s.sourceID, 8)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var insufficientErr *models.InsufficientStockError
			s.Require().ErrorAs(err, &insufficientErr)
		}
	}

	// 8 units cannot satisfy two 5-unit transfers. Exactly one wins and
	// units are conserved across the pair.
	s.Equal(1, succeeded)
	s.Equal(3, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(5, s.stockRepo.quantity(s.productID, s.destID))
	s.Equal(1, s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestLedgerAppendFailureKeepsStockMutation() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	s.movementRepo.appendErr = errors.New("connection reset")

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	var ledgerErr *models.LedgerAppendError
	s.Require().ErrorAs(err, &ledgerErr)
	// The stock change stands even though the audit record is missing.
	s.Equal(15, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(5, s.stockRepo.quantity(s.productID, s.destID))
}

func (s *MovementServiceTestSuite) TestCreditFailureAfterDebitLeavesStockInFlight() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	s.stockRepo.failOn[stockKey{s.productID, s.destID}] = errors.New("io timeout")

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	var storeErr *models.StoreUnavailableError
	s.Require().ErrorAs(err, &storeErr)
	// The debit committed before the credit failed: the accepted in-flight
	// window the audit sweep reconciles later.
	s.Equal(15, s.stockRepo.quantity(s.productID, s.sourceID))
	s.Equal(0, s.stockRepo.quantity(s.productID, s.destID))
	s.Zero(s.movementRepo.count())
}

func (s *MovementServiceTestSuite) TestStoreFailureOnReadSurfacesUnavailable() {
	s.stockRepo.set(s.productID, s.sourceID, 20)
	s.stockRepo.failOn[stockKey{s.productID, s.sourceID}] = errors.New("dial tcp: refused")

	_, err := s.service.Submit(context.Background(), s.actorID, s.transferIntent(5))

	var storeErr *models.StoreUnavailableError
	s.Require().ErrorAs(err, &storeErr)
	s.Zero(s.movementRepo.count())
}

func TestMovementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}
