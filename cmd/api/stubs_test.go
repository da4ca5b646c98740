package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quickmart/quickmart/internal/auth"
	"github.com/quickmart/quickmart/internal/delivery"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
	"github.com/quickmart/quickmart/internal/product"
	"github.com/quickmart/quickmart/internal/shop"
	"github.com/quickmart/quickmart/internal/user"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUB REPOS (in-memory implementations of the interfaces) ----------
//

type stubUsers struct{ byID map[string]*user.User }

func newStubUsers() *stubUsers { return &stubUsers{byID: map[string]*user.User{}} }

func (s *stubUsers) Create(_ context.Context, u *user.User) error {
	for _, have := range s.byID {
		if have.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	cp := *u
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.byID[u.ID] = &cp
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

type stubShops struct{ byID map[string]*shop.Shop }

func newStubShops() *stubShops { return &stubShops{byID: map[string]*shop.Shop{}} }

func (s *stubShops) GetByOwner(_ context.Context, ownerID string) (*shop.Shop, error) {
	for _, sh := range s.byID {
		if sh.OwnerID == ownerID {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, shop.ErrNotFound
}

func (s *stubShops) GetByID(_ context.Context, id string) (*shop.Shop, error) {
	sh, ok := s.byID[id]
	if !ok {
		return nil, shop.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (s *stubShops) ListOpen(_ context.Context) ([]shop.Shop, error) {
	var out []shop.Shop
	for _, sh := range s.byID {
		if sh.IsActive && sh.IsOpen {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (s *stubShops) Create(_ context.Context, sh *shop.Shop) error {
	cp := *sh
	cp.IsActive = true
	cp.CreatedAt = time.Now().UTC()
	s.byID[sh.ID] = &cp
	return nil
}

func (s *stubShops) UpdateByOwner(_ context.Context, ownerID string, req shop.UpsertRequest) error {
	for _, have := range s.byID {
		if have.OwnerID == ownerID {
			if req.Name != "" {
				have.Name = req.Name
			}
			if req.Address != "" {
				have.Address = req.Address
			}
			if req.IsOpen != nil {
				have.IsOpen = *req.IsOpen
			}
			if req.Categories != nil {
				have.Categories = req.Categories
			}
			return nil
		}
	}
	return shop.ErrNotFound
}

func (s *stubShops) SetOpen(_ context.Context, ownerID string, open bool) error {
	for _, have := range s.byID {
		if have.OwnerID == ownerID {
			have.IsOpen = open
			return nil
		}
	}
	return shop.ErrNotFound
}

func (s *stubShops) Stats(_ context.Context, _ string) (shop.Stats, error) {
	return shop.Stats{TotalRevenue: "0"}, nil
}

type stubProducts struct{ byID map[string]*product.Product }

func newStubProducts() *stubProducts { return &stubProducts{byID: map[string]*product.Product{}} }

func (s *stubProducts) Create(_ context.Context, p *product.Product) error {
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	s.byID[p.ID] = &cp
	return nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) ListByShop(_ context.Context, shopID string) ([]product.Product, error) {
	var out []product.Product
	for _, p := range s.byID {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProducts) ListAvailable(ctx context.Context, shopID string) ([]product.Product, error) {
	all, _ := s.ListByShop(ctx, shopID)
	var out []product.Product
	for _, p := range all {
		if p.IsAvailable {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProducts) Update(_ context.Context, shopID, id string, req product.UpdateRequest) (*product.Product, error) {
	p, ok := s.byID[id]
	if !ok || p.ShopID != shopID {
		return nil, product.ErrNotFound
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Price != "" {
		p.Price = req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		p.IsAvailable = *req.IsAvailable
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) Delete(_ context.Context, shopID, id string) (bool, error) {
	p, ok := s.byID[id]
	if !ok || p.ShopID != shopID {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *stubProducts) SetStock(_ context.Context, shopID, id string, stock int) error {
	p, ok := s.byID[id]
	if !ok || p.ShopID != shopID {
		return product.ErrNotFound
	}
	p.Stock = stock
	return nil
}

// stubOrders mirrors the repo's transactional behavior in memory, including
// stock movement against a stubProducts and the delivery counters.
type stubOrders struct {
	products        *stubProducts
	byID            map[string]*order.Order
	items           map[string][]order.Item
	seq             int
	agentDeliveries map[string]int
}

func newStubOrders(products *stubProducts) *stubOrders {
	return &stubOrders{
		products:        products,
		byID:            map[string]*order.Order{},
		items:           map[string][]order.Item{},
		agentDeliveries: map[string]int{},
	}
}

func (s *stubOrders) Create(_ context.Context, o *order.Order, items []order.Item) error {
	for _, it := range items {
		p, ok := s.products.byID[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return fmt.Errorf("%w: product %s", order.ErrInsufficientStock, it.ProductID)
		}
	}
	for _, it := range items {
		s.products.byID[it.ProductID].Stock -= it.Quantity
	}
	s.seq++
	o.Number = fmt.Sprintf("ORD-%04d", s.seq)
	cp := *o
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.byID[o.ID] = &cp
	s.items[o.ID] = append([]order.Item(nil), items...)
	return nil
}

func (s *stubOrders) get(id string) (*order.Order, error) {
	o, ok := s.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	cp.Items = append([]order.Item(nil), s.items[id]...)
	return &cp, nil
}

func (s *stubOrders) GetByID(_ context.Context, id string) (*order.Order, error) { return s.get(id) }

func (s *stubOrders) GetForCustomer(_ context.Context, id, customerID string) (*order.Order, error) {
	o, err := s.get(id)
	if err != nil || o.CustomerID != customerID {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *stubOrders) ListByShop(_ context.Context, shopID string, status order.Status) ([]order.Order, error) {
	var out []order.Order
	for id, o := range s.byID {
		if o.ShopID == shopID && (status == "" || o.Status == status) {
			cp, _ := s.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (s *stubOrders) ListByCustomer(_ context.Context, customerID string) ([]order.Order, error) {
	var out []order.Order
	for id, o := range s.byID {
		if o.CustomerID == customerID {
			cp, _ := s.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (s *stubOrders) restock(id string) {
	for _, it := range s.items[id] {
		if p, ok := s.products.byID[it.ProductID]; ok {
			p.Stock += it.Quantity
		}
	}
}

func (s *stubOrders) UpdateStatusByShop(_ context.Context, id, shopID string, to order.Status) error {
	o, ok := s.byID[id]
	if !ok || o.ShopID != shopID {
		return order.ErrNotFound
	}
	if !o.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", order.ErrBadTransition, o.Status, to)
	}
	o.Status = to
	if to == order.StatusCancelled {
		s.restock(id)
	}
	return nil
}

func (s *stubOrders) CancelByCustomer(_ context.Context, id, customerID string) error {
	o, ok := s.byID[id]
	if !ok || o.CustomerID != customerID {
		return order.ErrNotFound
	}
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return fmt.Errorf("%w: %s -> cancelled", order.ErrBadTransition, o.Status)
	}
	o.Status = order.StatusCancelled
	s.restock(id)
	return nil
}

func (s *stubOrders) ListAvailable(_ context.Context) ([]order.Order, error) {
	var out []order.Order
	for id, o := range s.byID {
		if o.DeliveryAgentID == nil && o.Status == order.StatusDispatched {
			cp, _ := s.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (s *stubOrders) ListAssigned(_ context.Context, agentID string) ([]order.Order, error) {
	var out []order.Order
	for id, o := range s.byID {
		if o.DeliveryAgentID != nil && *o.DeliveryAgentID == agentID && o.Status == order.StatusDispatched {
			cp, _ := s.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (s *stubOrders) ListCompleted(_ context.Context, agentID string) ([]order.Order, error) {
	var out []order.Order
	for id, o := range s.byID {
		if o.DeliveryAgentID != nil && *o.DeliveryAgentID == agentID && o.Status == order.StatusDelivered {
			cp, _ := s.get(id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (s *stubOrders) Accept(_ context.Context, id, agentID string) error {
	o, ok := s.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.DeliveryAgentID != nil {
		return order.ErrAlreadyAssigned
	}
	if o.Status != order.StatusDispatched {
		return order.ErrNotReady
	}
	o.DeliveryAgentID = &agentID
	return nil
}

func (s *stubOrders) MarkDelivered(_ context.Context, id, agentID string) error {
	o, ok := s.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	if o.DeliveryAgentID == nil || *o.DeliveryAgentID != agentID {
		return order.ErrNotAssigned
	}
	if o.Status != order.StatusDispatched {
		return fmt.Errorf("%w: %s -> delivered", order.ErrBadTransition, o.Status)
	}
	now := time.Now().UTC()
	o.Status = order.StatusDelivered
	o.PaymentStatus = order.PaymentPaid
	o.DeliveredAt = &now
	s.agentDeliveries[agentID]++
	return nil
}

func (s *stubOrders) StatsByShop(_ context.Context, shopID string) (order.ShopStats, error) {
	st := order.ShopStats{Stats: []order.StatusCount{}}
	for _, o := range s.byID {
		if o.ShopID == shopID {
			st.TotalOrders++
		}
	}
	return st, nil
}

func (s *stubOrders) AgentStats(_ context.Context, agentID string) (order.AgentStats, error) {
	n := s.agentDeliveries[agentID]
	return order.AgentStats{TotalDeliveries: n, TotalEarnings: n * 20}, nil
}

type stubAgents struct{ byUser map[string]*delivery.Agent }

func newStubAgents() *stubAgents { return &stubAgents{byUser: map[string]*delivery.Agent{}} }

func (s *stubAgents) Create(_ context.Context, a *delivery.Agent) error {
	if _, ok := s.byUser[a.UserID]; ok {
		return delivery.ErrAlreadyExists
	}
	for _, have := range s.byUser {
		if have.LicenseNumber == a.LicenseNumber || have.VehicleNumber == a.VehicleNumber {
			return delivery.ErrDuplicate
		}
	}
	cp := *a
	s.byUser[a.UserID] = &cp
	return nil
}

func (s *stubAgents) GetByUser(_ context.Context, userID string) (*delivery.Agent, error) {
	a, ok := s.byUser[userID]
	if !ok {
		return nil, delivery.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAgents) SetOnline(_ context.Context, userID string, online bool) error {
	a, ok := s.byUser[userID]
	if !ok {
		return delivery.ErrNotFound
	}
	a.IsOnline = online
	return nil
}

//
// ---------- HARNESS ----------
//

type env struct {
	users    *stubUsers
	shops    *stubShops
	products *stubProducts
	orders   *stubOrders
	agents   *stubAgents
	router   *gin.Engine
}

func newEnv() *env {
	users := newStubUsers()
	shops := newStubShops()
	products := newStubProducts()
	orders := newStubOrders(products)
	agents := newStubAgents()
	r := newRouter(deps{
		users:     users,
		shops:     shops,
		products:  products,
		orders:    orders,
		agents:    agents,
		notifier:  notify.LogNotifier{},
		jwtSecret: testSecret,
		tokenTTL:  time.Hour,
	})
	return &env{users: users, shops: shops, products: products, orders: orders, agents: agents, router: r}
}

// seedUser creates a user directly in the stub store and returns a bearer
// token for it. Password hashing is skipped; these users never log in.
func (e *env) seedUser(role string) (*user.User, string) {
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         "Test " + role,
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Phone:        "+15550001111",
		Address:      "1 Test St",
		Role:         role,
		IsActive:     true,
	}
	_ = e.users.Create(context.Background(), u)
	tok, _ := auth.IssueToken(testSecret, u.ID, time.Hour)
	return u, tok
}

func (e *env) seedShop(ownerID, name string) *shop.Shop {
	sh := &shop.Shop{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Name:    name,
		Address: "12 Market Rd",
		Phone:   "+15550002222",
		Email:   "shop@x.com",
		IsOpen:  true,
	}
	_ = e.shops.Create(context.Background(), sh)
	return sh
}

func (e *env) seedProduct(shopID, name, price string, stock int) *product.Product {
	p := &product.Product{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		Name:        name,
		Price:       price,
		Unit:        "kg",
		Stock:       stock,
		Category:    "fruit",
		Images:      []string{},
		IsAvailable: true,
	}
	_ = e.products.Create(context.Background(), p)
	return p
}

func (e *env) do(method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	e.router.ServeHTTP(w, req)
	return w
}
