// Package cart owns the shopping cart: its line items, the stock-guarded
// mutations and the persisted mirror of the cart.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/rocketshoes-cart/internal/catalog"
	"github.com/angelmondragon/rocketshoes-cart/internal/notify"
	"github.com/angelmondragon/rocketshoes-cart/internal/persistence"
	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	pkgerrors "github.com/angelmondragon/rocketshoes-cart/pkg/errors"
	"github.com/angelmondragon/rocketshoes-cart/pkg/logger"
	"github.com/angelmondragon/rocketshoes-cart/pkg/metrics"
)

// Catalog is the remote source of stock and product records.
type Catalog interface {
	GetStock(ctx context.Context, productID int) (catalog.Stock, error)
	GetProduct(ctx context.Context, productID int) (catalog.Product, error)
}

// Params wires the store collaborators.
type Params struct {
	Catalog    Catalog
	Blobs      persistence.BlobStore
	Notifier   notify.Notifier
	Logger     *logger.Logger
	Metrics    *metrics.CartMetrics
	StorageKey string
}

// Store holds the cart for one session. Operations are serialized: an
// operation holds the ops slot across its remote lookups, so a second call
// waits instead of reading a stale cart, or gives up when its ctx ends.
type Store struct {
	ops chan struct{}

	mu          sync.RWMutex
	items       []LineItem
	subscribers map[int]chan []LineItem
	nextSubID   int

	catalog  Catalog
	blobs    persistence.BlobStore
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
	key      string
}

// NewStore validates the collaborators and loads the persisted cart.
func NewStore(ctx context.Context, p Params) (*Store, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if p.Blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	key := strings.TrimSpace(p.StorageKey)
	if key == "" {
		key = config.DefaultStorageKey
	}

	s := &Store{
		catalog:     p.Catalog,
		blobs:       p.Blobs,
		notifier:    p.Notifier,
		logg:        p.Logger,
		metrics:     p.Metrics,
		key:         key,
		ops:         make(chan struct{}, 1),
		subscribers: make(map[int]chan []LineItem),
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items
	s.metrics.SetLineItems(len(items))
	return s, nil
}

func (s *Store) load(ctx context.Context) ([]LineItem, error) {
	ctx = s.logg.WithField(ctx, "storage_key", s.key)

	blob, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, persistence.ErrNotFound) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load persisted cart")
	}

	var stored []LineItem
	if err := json.Unmarshal([]byte(blob), &stored); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.bootstrap.corrupt_blob")
		return []LineItem{}, nil
	}

	items := make([]LineItem, 0, len(stored))
	for _, item := range stored {
		if item.Amount < 1 || indexOf(items, item.ProductID) >= 0 {
			s.logg.Warn(s.logg.WithProductID(ctx, item.ProductID), "cart.bootstrap.dropped_item")
			continue
		}
		items = append(items, item)
	}

	s.logg.Info(s.logg.WithField(ctx, "line_items", len(items)), "cart.bootstrap.loaded")
	return items, nil
}

// Snapshot returns a copy of the current cart in insertion order.
func (s *Store) Snapshot() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Amounts returns productID -> amount for the current cart.
func (s *Store) Amounts() map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return amountsOf(s.items)
}

// Subscribe registers an observer of committed snapshots. Delivery never
// blocks the store: a full channel drops its oldest snapshot so the latest
// one always lands. cancel closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan []LineItem, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan []LineItem, buffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// AddProduct increments the amount of productID, or adds it with amount 1.
// It returns the cart as it stood when the operation finished.
func (s *Store) AddProduct(ctx context.Context, productID int) []LineItem {
	return s.run(ctx, OpAddProduct, productID, MsgAddFailed, func(ctx context.Context) (bool, error) {
		return s.addProduct(ctx, productID)
	})
}

// RemoveProduct drops productID from the cart. No stock check applies.
func (s *Store) RemoveProduct(ctx context.Context, productID int) []LineItem {
	return s.run(ctx, OpRemoveProduct, productID, MsgRemoveFailed, func(ctx context.Context) (bool, error) {
		return s.removeProduct(ctx, productID)
	})
}

// UpdateProductAmount sets the amount of an item already in the cart.
// Targeting a product that is not in the cart does nothing.
func (s *Store) UpdateProductAmount(ctx context.Context, in UpdateProductAmount) []LineItem {
	return s.run(ctx, OpUpdateProductAmount, in.ProductID, MsgUpdateFailed, func(ctx context.Context) (bool, error) {
		return s.updateProductAmount(ctx, in)
	})
}

// run serializes one operation and turns its failure into exactly one toast.
// The returned cart is read before the ops slot is released.
func (s *Store) run(ctx context.Context, op string, productID int, failMsg string, fn func(context.Context) (bool, error)) []LineItem {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.logg.WithProductID(s.logg.WithCartOp(ctx, op), productID)

	start := time.Now()
	if err := s.acquire(ctx); err != nil {
		s.fail(ctx, op, failMsg, err, time.Since(start))
		return s.Snapshot()
	}
	defer s.release()

	changed, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.fail(ctx, op, failMsg, err, elapsed)
		return s.Snapshot()
	}

	outcome := metrics.OutcomeSuccess
	if !changed {
		outcome = metrics.OutcomeNoop
	}
	s.metrics.Observe(op, outcome, "", elapsed)
	s.logg.Info(s.logg.WithField(ctx, "outcome", outcome), "cart.operation.complete")
	return s.Snapshot()
}

func (s *Store) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart operation cancelled")
	}
	select {
	case s.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "cart operation cancelled while queued")
	}
}

func (s *Store) release() {
	<-s.ops
}

func (s *Store) fail(ctx context.Context, op, failMsg string, err error, elapsed time.Duration) {
	code := pkgerrors.CodeOf(err)
	s.metrics.Observe(op, metrics.OutcomeFailure, string(code), elapsed)
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"error":      err.Error(),
		"error_code": code,
	}), "cart.operation.failed")
	s.notifier.NotifyError(ctx, toastFor(err, failMsg))
}

func toastFor(err error, failMsg string) string {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeOutOfStock, pkgerrors.CodeValidation:
		return MsgOutOfStock
	}
	return failMsg
}

func (s *Store) addProduct(ctx context.Context, productID int) (bool, error) {
	stock, err := s.stockFor(ctx, productID)
	if err != nil {
		return false, err
	}
	// Zero stock passes here; the branches below decide.
	if stock.Amount < 0 {
		return false, outOfStock(productID, stock.Amount, 1)
	}

	items := s.Snapshot()
	idx := indexOf(items, productID)
	if idx < 0 {
		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return false, err
		}
		item := LineItem{
			ProductID: productID,
			Title:     product.Title,
			Price:     product.Price,
			Image:     product.Image,
			Amount:    1,
		}
		if stock.Amount < item.Amount {
			return false, outOfStock(productID, stock.Amount, item.Amount)
		}
		return true, s.commit(ctx, append(items, item))
	}

	existing := items[idx].Amount
	if existing <= 0 {
		return false, outOfStock(productID, stock.Amount, existing+1)
	}
	return s.updateProductAmount(ctx, UpdateProductAmount{ProductID: productID, Amount: existing + 1})
}

func (s *Store) removeProduct(ctx context.Context, productID int) (bool, error) {
	items := s.Snapshot()
	idx := indexOf(items, productID)
	if idx < 0 {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart").
			WithDetails(map[string]any{"product_id": productID})
	}
	next := append(items[:idx:idx], items[idx+1:]...)
	return true, s.commit(ctx, next)
}

func (s *Store) updateProductAmount(ctx context.Context, in UpdateProductAmount) (bool, error) {
	if in.Amount <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]any{"amount": in.Amount})
	}

	stock, err := s.stockFor(ctx, in.ProductID)
	if err != nil {
		return false, err
	}
	if stock.Amount <= 0 {
		return false, outOfStock(in.ProductID, stock.Amount, in.Amount)
	}

	items := s.Snapshot()
	idx := indexOf(items, in.ProductID)
	if idx < 0 {
		return false, nil
	}
	if stock.Amount < in.Amount {
		return false, outOfStock(in.ProductID, stock.Amount, in.Amount)
	}

	items[idx].Amount = in.Amount
	return true, s.commit(ctx, items)
}

// stockFor treats a missing stock record as no stock at all.
func (s *Store) stockFor(ctx context.Context, productID int) (catalog.Stock, error) {
	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return catalog.Stock{}, pkgerrors.Wrap(pkgerrors.CodeOutOfStock, err, "stock record missing")
		}
		return catalog.Stock{}, err
	}
	return stock, nil
}

func outOfStock(productID, available, requested int) error {
	return pkgerrors.New(pkgerrors.CodeOutOfStock, "requested quantity exceeds stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"available":  available,
			"requested":  requested,
		})
}

// commit persists next, then swaps it in and publishes it. A failed write
// leaves the in-memory cart untouched.
func (s *Store) commit(ctx context.Context, next []LineItem) error {
	if next == nil {
		next = []LineItem{}
	}
	blob, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.blobs.Set(ctx, s.key, string(blob)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = next
	for _, ch := range s.subscribers {
		deliver(ch, cloneItems(next))
	}
	s.metrics.SetLineItems(len(next))
	return nil
}

func deliver(ch chan []LineItem, snapshot []LineItem) {
	select {
	case ch <- snapshot:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snapshot:
	default:
	}
}
