// Package cart keeps the device's view of the shopping cart and order
// history: unsent local cart entries, the last fetched server orders and
// the user's local status overrides. A single Reconciler is shared by
// every command and publishes a Snapshot after each change.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidStatus   = errors.New("invalid order status")
	// ErrLocalOrder is returned for operations that only make sense on
	// orders the backend knows about.
	ErrLocalOrder = errors.New("order has not been submitted")
)

// OrdersAPI is the part of client.Client the reconciler calls.
type OrdersAPI interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	DeleteOrder(ctx context.Context, id models.OrderID) error
	DeleteOrders(ctx context.Context, ids []models.OrderID) error
	UpdateOrderStatus(ctx context.Context, id models.OrderID, status models.OrderStatus) (*models.Order, error)
}

// Snapshot is a deep copy of the reconciler state, safe to keep.
type Snapshot struct {
	Local []models.Order
	// Server holds fetched orders with overrides already applied.
	Server []models.Order
	// Entries is the display list: local entries first, then server orders.
	Entries []models.Order
	// ItemCount is the cart badge: quantities of local entries only.
	ItemCount int
	Overrides map[models.OrderID]models.OrderStatus
}

type Reconciler struct {
	api   OrdersAPI
	store storage.Store
	log   zerolog.Logger
	now   func() time.Time
	newID func() models.OrderID

	mu        sync.Mutex
	local     []models.Order
	server    []models.Order
	overrides map[models.OrderID]models.OrderStatus

	listenerMu sync.Mutex
	listeners  map[int]func(Snapshot)
	nextListen int
}

type Option func(*Reconciler)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func WithIDGenerator(newID func() models.OrderID) Option {
	return func(r *Reconciler) { r.newID = newID }
}

func NewReconciler(api OrdersAPI, store storage.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:       api,
		store:     store,
		log:       zerolog.Nop(),
		now:       time.Now,
		newID:     models.NewLocalOrderID,
		overrides: map[models.OrderID]models.OrderStatus{},
		listeners: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("component", "cart").Logger()
	return r
}

// Load hydrates every piece of state from storage. Each key is read on
// its own; a missing or corrupt value leaves that piece empty.
func (r *Reconciler) Load(ctx context.Context) {
	var (
		local     []models.Order
		server    []models.Order
		overrides map[models.OrderID]models.OrderStatus
	)
	if r.read(ctx, storage.KeyLocalCart, &local) {
		local = r.validLocal(local)
	}
	r.read(ctx, storage.KeyServerOrders, &server)
	r.read(ctx, storage.KeyStatusOverrides, &overrides)
	overrides = r.validOverrides(overrides)

	r.mu.Lock()
	r.local = local
	r.server = server
	r.overrides = overrides
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
}

// LoadLocalCart re-reads the persisted local entries and returns them.
func (r *Reconciler) LoadLocalCart(ctx context.Context) []models.Order {
	var local []models.Order
	if r.read(ctx, storage.KeyLocalCart, &local) {
		local = r.validLocal(local)
	}

	r.mu.Lock()
	r.local = local
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
	return snap.Local
}

// AddProduct puts quantity units of product in the cart, merging with an
// existing entry for the same product id.
func (r *Reconciler) AddProduct(ctx context.Context, product models.Product, quantity int) (models.Order, error) {
	if quantity <= 0 {
		return models.Order{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	r.mu.Lock()
	idx := -1
	for i, entry := range r.local {
		if entry.ItemIndex(product.ID) >= 0 {
			idx = i
			break
		}
	}

	if idx >= 0 {
		entry := &r.local[idx]
		item := &entry.Items[entry.ItemIndex(product.ID)]
		item.Quantity += quantity
		entry.TotalPrice = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	} else {
		r.local = append(r.local, models.Order{
			ID:         r.newID(),
			TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(quantity))),
			Status:     models.StatusPending,
			CreatedAt:  r.now().UTC(),
			Items: []models.OrderItem{{
				Product:  product.Clone(),
				Quantity: quantity,
			}},
		})
		idx = len(r.local) - 1
	}
	added := r.local[idx].Clone()
	r.write(ctx, storage.KeyLocalCart, r.local)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.log.Debug().
		Int("product_id", product.ID).
		Int("quantity", quantity).
		Str("order_id", added.ID.String()).
		Msg("added to cart")
	r.notify(snap)
	return added, nil
}

// RemoveEntries drops local entries straight away and deletes server
// orders through the API, forgetting them only once the API succeeds.
// Ids that are not known are ignored. It returns how many entries and
// orders were actually removed.
func (r *Reconciler) RemoveEntries(ctx context.Context, ids ...models.OrderID) (int, error) {
	remove := make(map[models.OrderID]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	r.mu.Lock()
	var kept []models.Order
	for _, entry := range r.local {
		if !remove[entry.ID] {
			kept = append(kept, entry)
		}
	}
	removed := len(r.local) - len(kept)
	localChanged := removed > 0
	if localChanged {
		r.local = kept
		r.write(ctx, storage.KeyLocalCart, r.local)
	}

	var serverIDs []models.OrderID
	for _, o := range r.server {
		if remove[o.ID] {
			serverIDs = append(serverIDs, o.ID)
		}
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if localChanged {
		r.notify(snap)
	}
	if len(serverIDs) == 0 {
		return removed, nil
	}

	var err error
	if len(serverIDs) == 1 {
		err = r.api.DeleteOrder(ctx, serverIDs[0])
	} else {
		err = r.api.DeleteOrders(ctx, serverIDs)
	}
	if err != nil {
		return removed, fmt.Errorf("delete orders: %w", err)
	}

	r.mu.Lock()
	kept = r.server[:0:0]
	for _, o := range r.server {
		if !remove[o.ID] {
			kept = append(kept, o)
		}
	}
	r.server = kept
	r.write(ctx, storage.KeyServerOrders, r.server)

	overridesChanged := false
	for _, id := range serverIDs {
		if _, ok := r.overrides[id]; ok {
			delete(r.overrides, id)
			overridesChanged = true
		}
	}
	if overridesChanged {
		r.write(ctx, storage.KeyStatusOverrides, r.overrides)
	}
	snap = r.snapshotLocked()
	r.mu.Unlock()

	r.log.Info().Int("count", len(serverIDs)).Msg("deleted server orders")
	r.notify(snap)
	return removed + len(serverIDs), nil
}

// ApplyStatusOverride shows status for a server order until the override
// is cleared, the status is pushed with UpdateStatus, or a refresh reports
// the same status.
func (r *Reconciler) ApplyStatusOverride(ctx context.Context, id models.OrderID, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if id.IsLocal() {
		return fmt.Errorf("%w: %s", ErrLocalOrder, id)
	}

	r.mu.Lock()
	r.overrides[id] = status
	r.write(ctx, storage.KeyStatusOverrides, r.overrides)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
	return nil
}

func (r *Reconciler) ClearStatusOverride(ctx context.Context, id models.OrderID) {
	r.mu.Lock()
	if _, ok := r.overrides[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.overrides, id)
	r.write(ctx, storage.KeyStatusOverrides, r.overrides)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
}

// Refresh replaces the server orders with a fresh fetch. On failure the
// previous list is kept.
func (r *Reconciler) Refresh(ctx context.Context) error {
	orders, err := r.api.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("refresh orders: %w", err)
	}

	r.mu.Lock()
	r.server = cloneOrders(orders)
	r.write(ctx, storage.KeyServerOrders, r.server)

	satisfied := 0
	for _, o := range r.server {
		if status, ok := r.overrides[o.ID]; ok && status == o.Status {
			delete(r.overrides, o.ID)
			satisfied++
		}
	}
	if satisfied > 0 {
		r.write(ctx, storage.KeyStatusOverrides, r.overrides)
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.log.Debug().Int("orders", len(orders)).Int("overrides_satisfied", satisfied).Msg("orders refreshed")
	r.notify(snap)
	return nil
}

// UpdateStatus changes the status on the backend and drops any override
// for the order.
func (r *Reconciler) UpdateStatus(ctx context.Context, id models.OrderID, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if id.IsLocal() {
		return models.Order{}, fmt.Errorf("%w: %s", ErrLocalOrder, id)
	}

	updated, err := r.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return models.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}

	r.mu.Lock()
	replaced := false
	for i := range r.server {
		if r.server[i].ID == updated.ID {
			r.server[i] = updated.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		r.server = append([]models.Order{updated.Clone()}, r.server...)
	}
	r.write(ctx, storage.KeyServerOrders, r.server)
	if _, ok := r.overrides[id]; ok {
		delete(r.overrides, id)
		r.write(ctx, storage.KeyStatusOverrides, r.overrides)
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snap)
	return updated.Clone(), nil
}

// Submit sends local entries (all of them when ids is empty) to the
// backend one by one. Entries that were accepted leave the cart even if
// others fail; the failures are joined in the returned error.
func (r *Reconciler) Submit(ctx context.Context, ids ...models.OrderID) ([]models.Order, error) {
	want := make(map[models.OrderID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	r.mu.Lock()
	var pending []models.Order
	for _, entry := range r.local {
		if len(ids) == 0 || want[entry.ID] {
			pending = append(pending, entry.Clone())
		}
	}
	r.mu.Unlock()

	var (
		created []models.Order
		errs    []error
	)
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		req := models.CreateOrderRequest{}
		for _, item := range entry.Items {
			req.Items = append(req.Items, models.CreateOrderItemRequest{
				ProductID: item.Product.ID,
				Quantity:  item.Quantity,
			})
		}

		order, err := r.api.CreateOrder(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("submit %s: %w", entry.ID, err))
			continue
		}
		created = append(created, order.Clone())

		r.mu.Lock()
		r.local = removeOrder(r.local, entry.ID)
		r.server = append([]models.Order{order.Clone()}, r.server...)
		r.write(ctx, storage.KeyLocalCart, r.local)
		r.write(ctx, storage.KeyServerOrders, r.server)
		r.mu.Unlock()

		r.log.Info().
			Str("local_id", entry.ID.String()).
			Str("order_id", order.ID.String()).
			Msg("cart entry submitted")
	}

	if len(created) > 0 {
		r.mu.Lock()
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.notify(snap)
	}
	return created, errors.Join(errs...)
}

func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. fn
// runs on the goroutine that made the change and must not block.
func (r *Reconciler) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()

	id := r.nextListen
	r.nextListen++
	r.listeners[id] = fn

	return func() {
		r.listenerMu.Lock()
		defer r.listenerMu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Reconciler) snapshotLocked() Snapshot {
	local := cloneOrders(r.local)
	server := ApplyOverrides(r.server, r.overrides)

	entries := make([]models.Order, 0, len(local)+len(server))
	entries = append(entries, cloneOrders(local)...)
	entries = append(entries, cloneOrders(server)...)

	overrides := make(map[models.OrderID]models.OrderStatus, len(r.overrides))
	for id, s := range r.overrides {
		overrides[id] = s
	}

	return Snapshot{
		Local:     local,
		Server:    server,
		Entries:   entries,
		ItemCount: ComputeItemCount(local),
		Overrides: overrides,
	}
}

func (r *Reconciler) notify(snap Snapshot) {
	r.listenerMu.Lock()
	fns := make([]func(Snapshot), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.listenerMu.Unlock()

	for i, fn := range fns {
		if i == 0 {
			fn(snap)
			continue
		}
		fn(cloneSnapshot(snap))
	}
}

// read reports whether key held a value that decoded cleanly. On false
// dest is left at its zero value.
func (r *Reconciler) read(ctx context.Context, key string, dest any) bool {
	err := storage.GetJSON(ctx, r.store, key, dest)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Warn().Err(err).Str("key", key).Msg("ignoring unreadable stored value")
		}
		return false
	}
	return true
}

// validLocal keeps entries that hold one item with a positive quantity and
// a total equal to price times quantity.
func (r *Reconciler) validLocal(entries []models.Order) []models.Order {
	var kept []models.Order
	for _, e := range entries {
		ok := e.ID.IsLocal() && len(e.Items) == 1 && e.Items[0].Quantity > 0 &&
			e.TotalPrice.Equal(e.Items[0].Product.Price.Mul(decimal.NewFromInt(int64(e.Items[0].Quantity))))
		if !ok {
			r.log.Warn().Str("id", string(e.ID)).Msg("dropping inconsistent cart entry")
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (r *Reconciler) validOverrides(in map[models.OrderID]models.OrderStatus) map[models.OrderID]models.OrderStatus {
	out := make(map[models.OrderID]models.OrderStatus, len(in))
	for id, status := range in {
		if !status.Valid() || id.IsLocal() {
			r.log.Warn().Str("id", string(id)).Str("status", string(status)).Msg("dropping invalid status override")
			continue
		}
		out[id] = status
	}
	return out
}

func (r *Reconciler) write(ctx context.Context, key string, value any) {
	if err := storage.SetJSON(ctx, r.store, key, value); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("failed to persist")
	}
}

// ComputeItemCount sums item quantities across entries.
func ComputeItemCount(entries []models.Order) int {
	n := 0
	for _, e := range entries {
		n += e.ItemCount()
	}
	return n
}

// ApplyOverrides returns copies of orders with overridden statuses
// replacing the server ones.
func ApplyOverrides(orders []models.Order, overrides map[models.OrderID]models.OrderStatus) []models.Order {
	out := cloneOrders(orders)
	for i := range out {
		if status, ok := overrides[out[i].ID]; ok {
			out[i].Status = status
		}
	}
	return out
}

func cloneOrders(orders []models.Order) []models.Order {
	if orders == nil {
		return nil
	}
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}

func cloneSnapshot(s Snapshot) Snapshot {
	c := Snapshot{
		Local:     cloneOrders(s.Local),
		Server:    cloneOrders(s.Server),
		Entries:   cloneOrders(s.Entries),
		ItemCount: s.ItemCount,
		Overrides: make(map[models.OrderID]models.OrderStatus, len(s.Overrides)),
	}
	for id, st := range s.Overrides {
		c.Overrides[id] = st
	}
	return c
}

func removeOrder(orders []models.Order, id models.OrderID) []models.Order {
	out := orders[:0:0]
	for _, o := range orders {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}
