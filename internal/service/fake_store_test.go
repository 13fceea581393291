package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeData is the committed state of the fake database.
type fakeData struct {
	users         map[uuid.UUID]bool
	products      map[uuid.UUID]domain.Product
	carts         map[uuid.UUID]domain.Cart
	lines         map[uuid.UUID]domain.CartLine
	addresses     map[uuid.UUID]domain.Address
	orders        map[uuid.UUID]domain.Order
	orderLines    []domain.OrderLine
	payments      map[uuid.UUID]domain.Payment
	notifications []domain.Notification
	seq           int
}

func newFakeData() *fakeData {
	return &fakeData{
		users:     map[uuid.UUID]bool{},
		products:  map[uuid.UUID]domain.Product{},
		carts:     map[uuid.UUID]domain.Cart{},
		lines:     map[uuid.UUID]domain.CartLine{},
		addresses: map[uuid.UUID]domain.Address{},
		orders:    map[uuid.UUID]domain.Order{},
		payments:  map[uuid.UUID]domain.Payment{},
	}
}

func (d *fakeData) clone() *fakeData {
	c := newFakeData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.carts {
		c.carts[k] = v
	}
	for k, v := range d.lines {
		c.lines[k] = v
	}
	for k, v := range d.addresses {
		c.addresses[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	c.orderLines = append([]domain.OrderLine(nil), d.orderLines...)
	c.notifications = append([]domain.Notification(nil), d.notifications...)
	c.seq = d.seq
	return c
}

// tick returns a strictly increasing timestamp so newest-first ordering is stable.
func (d *fakeData) tick() time.Time {
	d.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(d.seq) * time.Second)
}

// fakeStore is an in-memory repository.Store. Transactions run one at a
// time against a copy of the data, which replaces the committed state only
// when fn succeeds.
type fakeStore struct {
	*fakeQuerier

	txMu sync.Mutex
	data *fakeData

	// failOn makes the named query return an error. The filter, when set,
	// receives the query's main argument and decides.
	hookMu sync.Mutex
	failOn map[string]func(arg any) bool

	commits   int
	rollbacks int
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	s := &fakeStore{data: newFakeData(), failOn: map[string]func(any) bool{}}
	s.fakeQuerier = &fakeQuerier{store: s, mu: &sync.Mutex{}, get: func() *fakeData { return s.data }}
	return s
}

var errInjected = errors.New("injected failure")

// fail makes query op fail, optionally only for matching arguments.
func (s *fakeStore) fail(op string, match func(arg any) bool) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if match == nil {
		match = func(any) bool { return true }
	}
	s.failOn[op] = match
}

func (s *fakeStore) check(op string, arg any) error {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	if match, ok := s.failOn[op]; ok && match(arg) {
		return fmt.Errorf("%s: %w", op, errInjected)
	}
	return nil
}

func (s *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.fakeQuerier.mu.Lock()
	working := s.data.clone()
	s.fakeQuerier.mu.Unlock()

	tx := &fakeQuerier{store: s, mu: &sync.Mutex{}, get: func() *fakeData { return working }}
	if err := fn(tx); err != nil {
		s.rollbacks++
		return err
	}

	s.fakeQuerier.mu.Lock()
	s.data = working
	s.fakeQuerier.mu.Unlock()
	s.commits++
	return nil
}

// snapshot returns a copy of the committed state for assertions.
func (s *fakeStore) snapshot() *fakeData {
	s.fakeQuerier.mu.Lock()
	defer s.fakeQuerier.mu.Unlock()
	return s.data.clone()
}

func (s *fakeStore) seedProduct(name, price string, qty int) domain.Product {
	s.fakeQuerier.mu.Lock()
	defer s.fakeQuerier.mu.Unlock()
	d := s.data
	p := domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
		Condition: domain.ConditionNew,
	}
	p.CreatedAt = d.tick()
	p.UpdatedAt = p.CreatedAt
	d.products[p.ID] = p
	return p
}

func (s *fakeStore) product(id uuid.UUID) domain.Product {
	return s.snapshot().products[id]
}

func (s *fakeStore) cartLinesFor(userID uuid.UUID) []domain.CartLine {
	d := s.snapshot()
	var out []domain.CartLine
	for _, l := range d.lines {
		if c, ok := d.carts[l.CartID]; ok && c.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

type fakeQuerier struct {
	store *fakeStore
	mu    *sync.Mutex
	get   func() *fakeData
}

var _ repository.Querier = (*fakeQuerier)(nil)

func (q *fakeQuerier) EnsureUser(ctx context.Context, userID uuid.UUID) error {
	if err := q.store.check("EnsureUser", userID); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.get().users[userID] = true
	return nil
}

func (q *fakeQuerier) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := q.store.check("CreateProduct", p); err != nil {
		return domain.Product{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	p.CreatedAt = d.tick()
	p.UpdatedAt = p.CreatedAt
	d.products[p.ID] = p
	return p, nil
}

func (q *fakeQuerier) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.get().products[id]
	if !ok {
		return domain.Product{}, repository.ErrNoRows
	}
	return p, nil
}

func (q *fakeQuerier) GetProductForUpdate(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return q.GetProduct(ctx, id)
}

func (q *fakeQuerier) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := q.store.check("UpdateProduct", p); err != nil {
		return domain.Product{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	existing, ok := d.products[p.ID]
	if !ok {
		return domain.Product{}, repository.ErrNoRows
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = d.tick()
	d.products[p.ID] = p
	return p, nil
}

func (q *fakeQuerier) UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Product, error) {
	if err := q.store.check("UpdateProductPrice", id); err != nil {
		return domain.Product{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	p, ok := d.products[id]
	if !ok {
		return domain.Product{}, repository.ErrNoRows
	}
	p.Price = price
	p.UpdatedAt = d.tick()
	d.products[id] = p
	return p, nil
}

func (q *fakeQuerier) AdjustProductStock(ctx context.Context, id uuid.UUID, delta int) error {
	if err := q.store.check("AdjustProductStock", id); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	p, ok := d.products[id]
	if !ok {
		return nil
	}
	if p.Quantity+delta < 0 {
		return fmt.Errorf("products_quantity_check violated for %s", id)
	}
	p.Quantity += delta
	d.products[id] = p
	return nil
}

func (q *fakeQuerier) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := q.store.check("DeleteProduct", id); err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	if _, ok := d.products[id]; !ok {
		return 0, nil
	}
	delete(d.products, id)
	for lid, l := range d.lines {
		if l.ProductID == id {
			delete(d.lines, lid)
		}
	}
	return 1, nil
}

func (q *fakeQuerier) cartByUser(userID uuid.UUID) (domain.Cart, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range q.get().carts {
		if c.UserID == userID {
			return c, nil
		}
	}
	return domain.Cart{}, repository.ErrNoRows
}

func (q *fakeQuerier) GetCartByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	return q.cartByUser(userID)
}

func (q *fakeQuerier) GetCartByUserForUpdate(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	return q.cartByUser(userID)
}

func (q *fakeQuerier) CreateCart(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if existing, err := q.cartByUser(cart.UserID); err == nil {
		return existing, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	cart.CreatedAt = d.tick()
	d.carts[cart.ID] = cart
	return cart, nil
}

// joined fills in the product columns the real query joins.
func (q *fakeQuerier) joined(l domain.CartLine) domain.CartLine {
	p := q.get().products[l.ProductID]
	l.ProductName = p.Name
	l.UnitPrice = p.Price
	return l
}

func (q *fakeQuerier) ListCartLines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []domain.CartLine
	for _, l := range q.get().lines {
		if l.CartID == cartID {
			out = append(out, q.joined(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (q *fakeQuerier) GetCartLine(ctx context.Context, cartID, productID uuid.UUID) (domain.CartLine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, l := range q.get().lines {
		if l.CartID == cartID && l.ProductID == productID {
			return q.joined(l), nil
		}
	}
	return domain.CartLine{}, repository.ErrNoRows
}

func (q *fakeQuerier) UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	if err := q.store.check("UpsertCartLine", line); err != nil {
		return domain.CartLine{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	for id, l := range d.lines {
		if l.CartID == line.CartID && l.ProductID == line.ProductID {
			l.Quantity = line.Quantity
			d.lines[id] = l
			return q.joined(l), nil
		}
	}
	d.lines[line.ID] = line
	return q.joined(line), nil
}

func (q *fakeQuerier) DeleteCartLine(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	var n int64
	for id, l := range d.lines {
		if l.CartID == cartID && l.ProductID == productID {
			delete(d.lines, id)
			n++
		}
	}
	return n, nil
}

func (q *fakeQuerier) DeleteCartLines(ctx context.Context, cartID uuid.UUID) (int64, error) {
	if err := q.store.check("DeleteCartLines", cartID); err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	var n int64
	for id, l := range d.lines {
		if l.CartID == cartID {
			delete(d.lines, id)
			n++
		}
	}
	return n, nil
}

func (q *fakeQuerier) ListCartLinesByProduct(ctx context.Context, productID uuid.UUID) ([]domain.AffectedLine, error) {
	if err := q.store.check("ListCartLinesByProduct", productID); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	var out []domain.AffectedLine
	for _, l := range d.lines {
		if l.ProductID != productID {
			continue
		}
		out = append(out, domain.AffectedLine{
			CartID:    l.CartID,
			UserID:    d.carts[l.CartID].UserID,
			ProductID: productID,
			Quantity:  l.Quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (q *fakeQuerier) DeleteCartLinesByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	var n int64
	for id, l := range d.lines {
		if l.ProductID == productID {
			delete(d.lines, id)
			n++
		}
	}
	return n, nil
}

func (q *fakeQuerier) CreateAddress(ctx context.Context, a domain.Address) (domain.Address, error) {
	if err := q.store.check("CreateAddress", a); err != nil {
		return domain.Address{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	a.CreatedAt = d.tick()
	d.addresses[a.ID] = a
	return a, nil
}

func (q *fakeQuerier) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	if err := q.store.check("CreateOrder", o); err != nil {
		return domain.Order{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	o.Lines = nil
	o.CreatedAt = d.tick()
	d.orders[o.ID] = o
	return o, nil
}

func (q *fakeQuerier) CreateOrderLine(ctx context.Context, l domain.OrderLine) (domain.OrderLine, error) {
	if err := q.store.check("CreateOrderLine", l); err != nil {
		return domain.OrderLine{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	d.orderLines = append(d.orderLines, l)
	return l, nil
}

func (q *fakeQuerier) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	o, ok := q.get().orders[id]
	if !ok {
		return domain.Order{}, repository.ErrNoRows
	}
	return o, nil
}

func (q *fakeQuerier) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]domain.OrderLine, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []domain.OrderLine
	for _, l := range q.get().orderLines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (q *fakeQuerier) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []domain.Order
	for _, o := range q.get().orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (q *fakeQuerier) CreatePayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if err := q.store.check("CreatePayment", p); err != nil {
		return domain.Payment{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	p.CreatedAt = d.tick()
	d.payments[p.ID] = p
	return p, nil
}

func (q *fakeQuerier) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if err := q.store.check("CreateNotification", n); err != nil {
		return domain.Notification{}, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	n.CreatedAt = d.tick()
	d.notifications = append(d.notifications, n)
	return n, nil
}

func (q *fakeQuerier) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []domain.Notification
	for _, n := range q.get().notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (q *fakeQuerier) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var n int64
	for _, x := range q.get().notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (q *fakeQuerier) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	for i, x := range d.notifications {
		if x.UserID == userID && x.ID == id {
			d.notifications[i].Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (q *fakeQuerier) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	var n int64
	for i, x := range d.notifications {
		if x.UserID == userID && !x.Read {
			d.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

func (q *fakeQuerier) DeleteNotification(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	d := q.get()
	for i, x := range d.notifications {
		if x.UserID == userID && x.ID == id {
			d.notifications = append(d.notifications[:i], d.notifications[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// recordingPusher stands in for the broker.
type recordingPusher struct {
	mu     sync.Mutex
	online map[uuid.UUID]bool
	sent   []domain.Notification
}

func newRecordingPusher(online ...uuid.UUID) *recordingPusher {
	p := &recordingPusher{online: map[uuid.UUID]bool{}}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *recordingPusher) Send(userID uuid.UUID, n domain.Notification) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.sent = append(p.sent, n)
	return true
}

func (p *recordingPusher) delivered() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Notification(nil), p.sent...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
