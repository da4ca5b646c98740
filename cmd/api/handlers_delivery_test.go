package main

import (
	"net/http"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/quickmart/quickmart/internal/order"
)

// seedDispatchedOrder walks an order to the dispatched state directly in the
// stores; the lifecycle up to that point is covered elsewhere.
func seedDispatchedOrder(e *env, custTok string) string {
	owner, _ := e.seedUser("shop_owner")
	sh := e.seedShop(owner.ID, "Fresh Mart")
	p := e.seedProduct(sh.ID, "Apple", "2.50", 10)
	w := e.do(http.MethodPost, "/api/customer/orders", custTok,
		`{"shop_id": "`+sh.ID+`", "items": [{"product_id": "`+p.ID+`", "quantity": 1}]}`)
	id := gjson.Get(w.Body.String(), "data.order.id").String()
	e.orders.byID[id].Status = order.StatusDispatched
	return id
}

func TestCreateDeliveryAccount(t *testing.T) {
	e := newEnv()
	_, tok := e.seedUser("delivery_agent")
	payload := `{
		"agency_name": "Swift Couriers", "address": "4 Depot Lane",
		"license_number": "DL-99812", "mobile_number": "+15550002222",
		"vehicle_type": "bike", "vehicle_number": "KA-01-1234"
	}`

	w := e.do(http.MethodPost, "/api/delivery/create-account", tok, payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(http.MethodPost, "/api/delivery/create-account", tok, payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second account: got %d, want 400", w.Code)
	}
	if msg := gjson.Get(w.Body.String(), "message").String(); msg != "Delivery account already exists" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, tok2 := e.seedUser("delivery_agent")
	w = e.do(http.MethodPost, "/api/delivery/create-account", tok2, payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate license: got %d, want 400", w.Code)
	}
	if msg := gjson.Get(w.Body.String(), "message").String(); msg != "License or vehicle number already registered" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCreateDeliveryAccountRejectsBadVehicleType(t *testing.T) {
	e := newEnv()
	_, tok := e.seedUser("delivery_agent")

	w := e.do(http.MethodPost, "/api/delivery/create-account", tok, `{
		"agency_name": "Swift", "address": "4 Depot Lane", "license_number": "DL-1",
		"mobile_number": "+1555", "vehicle_type": "submarine", "vehicle_number": "KA-1"
	}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", w.Code, w.Body.String())
	}
}

// First agent to claim a dispatched order wins; everyone after gets a clean
// rejection, not a reassignment.
func TestAcceptOrderFirstClaimWins(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	agentA, tokA := e.seedUser("delivery_agent")
	_, tokB := e.seedUser("delivery_agent")

	w := e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tokA, "")
	if w.Code != http.StatusOK {
		t.Fatalf("accept: got %d: %s", w.Code, w.Body.String())
	}
	if got := gjson.Get(w.Body.String(), "data.order.delivery_agent_id").String(); got != agentA.ID {
		t.Fatalf("agent %q, want %q", got, agentA.ID)
	}

	w = e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tokB, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second accept: got %d, want 400", w.Code)
	}
	if msg := gjson.Get(w.Body.String(), "message").String(); msg != "Order already assigned to another delivery agent" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got := *e.orders.byID[orderID].DeliveryAgentID; got != agentA.ID {
		t.Fatalf("assignment moved to %q", got)
	}
}

func TestAcceptOrderNotReady(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	e.orders.byID[orderID].Status = order.StatusPending
	_, tok := e.seedUser("delivery_agent")

	w := e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tok, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400: %s", w.Code, w.Body.String())
	}
	if msg := gjson.Get(w.Body.String(), "message").String(); msg != "Order is not ready for delivery" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestMarkDeliveredOnceOnly(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	agent, tok := e.seedUser("delivery_agent")
	_, otherTok := e.seedUser("delivery_agent")

	if w := e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tok, ""); w.Code != http.StatusOK {
		t.Fatalf("accept: got %d", w.Code)
	}

	// only the assigned agent may deliver
	w := e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/deliver", otherTok, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign deliver: got %d, want 403", w.Code)
	}

	w = e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/deliver", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: got %d: %s", w.Code, w.Body.String())
	}
	if got := gjson.Get(w.Body.String(), "data.order.status").String(); got != "delivered" {
		t.Fatalf("status %q", got)
	}
	if got := gjson.Get(w.Body.String(), "data.order.payment_status").String(); got != "paid" {
		t.Fatalf("payment status %q", got)
	}

	// repeating the call must not double-count the delivery
	w = e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/deliver", tok, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("repeat deliver: got %d, want 409", w.Code)
	}
	if got := e.orders.agentDeliveries[agent.ID]; got != 1 {
		t.Fatalf("deliveries counted %d, want 1", got)
	}

	w = e.do(http.MethodGet, "/api/delivery/stats", tok, "")
	if got := gjson.Get(w.Body.String(), "data.totalDeliveries").Int(); got != 1 {
		t.Fatalf("totalDeliveries %d, want 1", got)
	}
	if got := gjson.Get(w.Body.String(), "data.totalEarnings").Int(); got != 20 {
		t.Fatalf("totalEarnings %d, want 20", got)
	}
}

// An unclaimed dispatched order shows up in discovery; once an agent accepts
// it, it leaves the pool.
func TestAvailableOrdersFeedTheAcceptFlow(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	_, tok := e.seedUser("delivery_agent")

	w := e.do(http.MethodGet, "/api/delivery/available-orders", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 1 {
		t.Fatalf("available count %d, want 1", n)
	}
	if got := gjson.Get(w.Body.String(), "data.orders.0.id").String(); got != orderID {
		t.Fatalf("order id %q, want %q", got, orderID)
	}

	e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tok, "")

	w = e.do(http.MethodGet, "/api/delivery/available-orders", tok, "")
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 0 {
		t.Fatalf("available count after accept %d, want 0", n)
	}
}

// Orders still making their way through the shop are not offered to agents.
func TestAvailableOrdersExcludesUndispatched(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	e.orders.byID[orderID].Status = order.StatusPacked
	_, tok := e.seedUser("delivery_agent")

	w := e.do(http.MethodGet, "/api/delivery/available-orders", tok, "")
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 0 {
		t.Fatalf("available count %d, want 0", n)
	}
}

func TestAssignedAndCompletedLists(t *testing.T) {
	e := newEnv()
	_, custTok := e.seedUser("customer")
	orderID := seedDispatchedOrder(e, custTok)
	_, tok := e.seedUser("delivery_agent")

	e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/accept", tok, "")

	w := e.do(http.MethodGet, "/api/delivery/assigned-orders", tok, "")
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 1 {
		t.Fatalf("assigned count %d, want 1", n)
	}

	e.do(http.MethodPut, "/api/delivery/orders/"+orderID+"/deliver", tok, "")

	w = e.do(http.MethodGet, "/api/delivery/assigned-orders", tok, "")
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 0 {
		t.Fatalf("assigned count after delivery %d, want 0", n)
	}
	w = e.do(http.MethodGet, "/api/delivery/completed-orders", tok, "")
	if n := gjson.Get(w.Body.String(), "data.count").Int(); n != 1 {
		t.Fatalf("completed count %d, want 1", n)
	}
}

func TestAvailabilityToggle(t *testing.T) {
	e := newEnv()
	agent, tok := e.seedUser("delivery_agent")
	e.do(http.MethodPost, "/api/delivery/create-account", tok, `{
		"agency_name": "Swift", "address": "4 Depot Lane", "license_number": "DL-1",
		"mobile_number": "+1555", "vehicle_type": "bike", "vehicle_number": "KA-1"
	}`)

	w := e.do(http.MethodPut, "/api/delivery/availability", tok, `{"isAvailable": true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	if !e.agents.byUser[agent.ID].IsOnline {
		t.Fatal("agent not marked online")
	}
}
