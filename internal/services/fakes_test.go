package services

import (
	"context"
	"sync"
	"time"

	"depot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type stockKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

// fakeStockRepo is an in-memory stock table with real compare-and-set
// semantics: an update commits only when the expected value still matches.
// Conflicts and store errors can be injected per key.
type fakeStockRepo struct {
	mu             sync.Mutex
	entries        map[stockKey]int
	forceConflicts map[stockKey]int
	failOn         map[stockKey]error
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{
		entries:        make(map[stockKey]int),
		forceConflicts: make(map[stockKey]int),
		failOn:         make(map[stockKey]error),
	}
}

func (f *fakeStockRepo) set(productID, warehouseID uuid.UUID, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[stockKey{productID, warehouseID}] = quantity
}

func (f *fakeStockRepo) quantity(productID, warehouseID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[stockKey{productID, warehouseID}]
}

func (f *fakeStockRepo) Get(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := stockKey{productID, warehouseID}
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	quantity, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	return &models.StockEntry{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		UpdatedAt:   time.Now(),
	}, nil
}

func (f *fakeStockRepo) CompareAndSet(ctx context.Context, productID, warehouseID uuid.UUID, expected, newQuantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := stockKey{productID, warehouseID}
	if err, ok := f.failOn[key]; ok {
		return false, err
	}
	if f.forceConflicts[key] > 0 {
		f.forceConflicts[key]--
		return false, nil
	}
	current, exists := f.entries[key]
	if !exists {
		current = 0
	}
	if current != expected {
		return false, nil
	}
	f.entries[key] = newQuantity
	return true, nil
}

func (f *fakeStockRepo) List(ctx context.Context, warehouseID *uuid.UUID, limit, offset int) ([]*models.StockView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var views []*models.StockView
	for key, quantity := range f.entries {
		if warehouseID != nil && key.warehouseID != *warehouseID {
			continue
		}
		views = append(views, &models.StockView{
			StockEntry: models.StockEntry{
				ProductID:   key.productID,
				WarehouseID: key.warehouseID,
				Quantity:    quantity,
			},
		})
	}
	return views, nil
}

func (f *fakeStockRepo) Search(ctx context.Context, filter *models.StockSearchFilter) ([]*models.StockView, error) {
	return f.List(ctx, filter.WarehouseID, filter.Limit, filter.Offset)
}

func (f *fakeStockRepo) LowStock(ctx context.Context, threshold int) ([]*models.StockView, error) {
	views, _ := f.List(ctx, nil, 0, 0)
	var low []*models.StockView
	for _, v := range views {
		if v.Quantity < threshold {
			low = append(low, v)
		}
	}
	return low, nil
}

// fakeMovementRepo is an in-memory append-only ledger.
type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []*models.Movement
	appendErr error
}

func (f *fakeMovementRepo) Append(ctx context.Context, movement *models.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	movement.CreatedAt = time.Now()
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeMovementRepo) List(ctx context.Context, filter *models.MovementFilter) ([]*models.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Movement, len(f.movements))
	copy(out, f.movements)
	return out, nil
}

func (f *fakeMovementRepo) NetQuantity(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	net := 0
	for _, m := range f.movements {
		if m.ProductID != productID {
			continue
		}
		if m.FromWarehouseID != nil && *m.FromWarehouseID == warehouseID {
			net -= m.Quantity
		}
		if m.ToWarehouseID != nil && *m.ToWarehouseID == warehouseID {
			net += m.Quantity
		}
	}
	return net, nil
}

func (f *fakeMovementRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.movements)
}

// fakeProductRepo holds known products; lookups for anything else return
// pgx.ErrNoRows like the real repository.
type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func newFakeProductRepo(ids ...uuid.UUID) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
	for _, id := range ids {
		f.products[id] = &models.Product{ID: id, Name: "product-" + id.String()[:8], SKU: id.String()[:8]}
	}
	return f
}

func (f *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return product, nil
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) Count(ctx context.Context) (int, error) {
	return len(f.products), nil
}

type fakeWarehouseRepo struct {
	warehouses map[uuid.UUID]*models.Warehouse
}

func newFakeWarehouseRepo(ids ...uuid.UUID) *fakeWarehouseRepo {
	f := &fakeWarehouseRepo{warehouses: make(map[uuid.UUID]*models.Warehouse)}
	for _, id := range ids {
		f.warehouses[id] = &models.Warehouse{ID: id, Name: "warehouse-" + id.String()[:8]}
	}
	return f
}

func (f *fakeWarehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

func (f *fakeWarehouseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, ok := f.warehouses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return warehouse, nil
}

func (f *fakeWarehouseRepo) GetByName(ctx context.Context, name string) (*models.Warehouse, error) {
	for _, w := range f.warehouses {
		if w.Name == name {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWarehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	f.warehouses[warehouse.ID] = warehouse
	return nil
}

func (f *fakeWarehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.warehouses, id)
	return nil
}

func (f *fakeWarehouseRepo) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	var out []*models.Warehouse
	for _, w := range f.warehouses {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWarehouseRepo) Count(ctx context.Context) (int, error) {
	return len(f.warehouses), nil
}

// fakeAdjustmentRepo is an in-memory adjustment audit log.
type fakeAdjustmentRepo struct {
	mu          sync.Mutex
	adjustments []*models.Adjustment
	appendErr   error
}

func (f *fakeAdjustmentRepo) Append(ctx context.Context, adjustment *models.Adjustment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	adjustment.CreatedAt = time.Now()
	f.adjustments = append(f.adjustments, adjustment)
	return nil
}

func (f *fakeAdjustmentRepo) List(ctx context.Context, filter *models.AdjustmentFilter) ([]*models.Adjustment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Adjustment, len(f.adjustments))
	copy(out, f.adjustments)
	return out, nil
}

// fakeCache is a no-op cache: always a miss, never an error.
type fakeCache struct{}

func (fakeCache) GetStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockEntry, error) {
	return nil, nil
}
func (fakeCache) SetStockEntry(ctx context.Context, entry *models.StockEntry, ttl time.Duration) error {
	return nil
}
func (fakeCache) DeleteStockEntry(ctx context.Context, productID, warehouseID uuid.UUID) error {
	return nil
}
func (fakeCache) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return nil, nil
}
func (fakeCache) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return nil
}
func (fakeCache) DeleteProduct(ctx context.Context, productID uuid.UUID) error { return nil }
func (fakeCache) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	return nil, nil
}
func (fakeCache) SetWarehouse(ctx context.Context, warehouse *models.Warehouse, ttl time.Duration) error {
	return nil
}
func (fakeCache) DeleteWarehouse(ctx context.Context, warehouseID uuid.UUID) error { return nil }
func (fakeCache) GetDashboardSummary(ctx context.Context) (map[string]int, error)  { return nil, nil }
func (fakeCache) SetDashboardSummary(ctx context.Context, summary map[string]int, ttl time.Duration) error {
	return nil
}
func (fakeCache) DeleteDashboardSummary(ctx context.Context) error { return nil }
