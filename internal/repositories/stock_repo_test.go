package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StockRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        StockRepository
	productID   uuid.UUID
	warehouseID uuid.UUID
	context     context.Context
}

func (suite *StockRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewStockRepository(mock)
	suite.productID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.context = context.Background()
}

func (suite *StockRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestStockRepoTestSuite(t *testing.T) {
	suite.Run(t, new(StockRepoTestSuite))
}

func (suite *StockRepoTestSuite) TestGet_Found() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT product_id, warehouse_id, quantity, updated_at`).
		WithArgs(suite.productID, suite.warehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at"}).
			AddRow(suite.productID, suite.warehouseID, 42, now))

	entry, err := suite.repo.Get(suite.context, suite.productID, suite.warehouseID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), entry)
	assert.Equal(suite.T(), 42, entry.Quantity)
}

func (suite *StockRepoTestSuite) TestGet_AbsentRowReadsAsNil() {
	suite.mock.ExpectQuery(`SELECT product_id, warehouse_id, quantity, updated_at`).
		WithArgs(suite.productID, suite.warehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at"}))

	entry, err := suite.repo.Get(suite.context, suite.productID, suite.warehouseID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), entry)
}

func (suite *StockRepoTestSuite) TestCompareAndSet_Wins() {
	suite.mock.ExpectExec(`UPDATE stock`).
		WithArgs(suite.productID, suite.warehouseID, 15, 20).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := suite.repo.CompareAndSet(suite.context, suite.productID, suite.warehouseID, 20, 15)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *StockRepoTestSuite) TestCompareAndSet_StaleExpectedLoses() {
	// Another writer changed the quantity between read and update: the
	// guarded UPDATE matches no row and the conflict is reported, not
	// treated as an error.
	suite.mock.ExpectExec(`UPDATE stock`).
		WithArgs(suite.productID, suite.warehouseID, 15, 20).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := suite.repo.CompareAndSet(suite.context, suite.productID, suite.warehouseID, 20, 15)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *StockRepoTestSuite) TestCompareAndSet_CreatesRowLazily() {
	// expected 0 and no row yet: the update misses, the insert creates it.
	suite.mock.ExpectExec(`UPDATE stock`).
		WithArgs(suite.productID, suite.warehouseID, 5, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectExec(`INSERT INTO stock`).
		WithArgs(suite.productID, suite.warehouseID, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := suite.repo.CompareAndSet(suite.context, suite.productID, suite.warehouseID, 0, 5)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *StockRepoTestSuite) TestCompareAndSet_InsertRaceLoses() {
	// A racing writer created the row after our update missed. The insert
	// hits ON CONFLICT DO NOTHING and the whole attempt reads as a lost race.
	suite.mock.ExpectExec(`UPDATE stock`).
		WithArgs(suite.productID, suite.warehouseID, 5, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectExec(`INSERT INTO stock`).
		WithArgs(suite.productID, suite.warehouseID, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := suite.repo.CompareAndSet(suite.context, suite.productID, suite.warehouseID, 0, 5)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *StockRepoTestSuite) TestCompareAndSet_StoreError() {
	suite.mock.ExpectExec(`UPDATE stock`).
		WithArgs(suite.productID, suite.warehouseID, 15, 20).
		WillReturnError(errors.New("connection refused"))

	ok, err := suite.repo.CompareAndSet(suite.context, suite.productID, suite.warehouseID, 20, 15)
	assert.Error(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *StockRepoTestSuite) TestLowStock() {
	now := time.Now()
	suite.mock.ExpectQuery(`WHERE s.quantity < \$1`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at", "name", "sku", "name"}).
			AddRow(suite.productID, suite.warehouseID, 3, now, "Widget", "W-1", "Main"))

	views, err := suite.repo.LowStock(suite.context, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), views, 1)
	assert.Equal(suite.T(), 3, views[0].Quantity)
	assert.Equal(suite.T(), "Widget", views[0].ProductName)
}

func (suite *StockRepoTestSuite) TestList_FiltersByWarehouse() {
	now := time.Now()
	suite.mock.ExpectQuery(`WHERE s.warehouse_id = \$1`).
		WithArgs(suite.warehouseID, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at", "name", "sku", "name"}).
			AddRow(suite.productID, suite.warehouseID, 20, now, "Widget", "W-1", "Main"))

	views, err := suite.repo.List(suite.context, &suite.warehouseID, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), views, 1)
	assert.Equal(suite.T(), suite.warehouseID, views[0].WarehouseID)
}
