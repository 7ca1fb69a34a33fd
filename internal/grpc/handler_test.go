package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/ledger"
	"github.com/fjod/storefront/internal/order"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type failingHistory struct{}

func (failingHistory) ListFor(context.Context, string) ([]domain.Order, error) {
	return nil, errors.New("disk on fire")
}

func (failingHistory) Get(context.Context, string, string) (domain.Order, error) {
	return domain.Order{}, errors.New("disk on fire")
}

const testSecret = "test-secret"

// ordersClient calls OrdersService with the JSON codec.
type ordersClient struct {
	cc grpc.ClientConnInterface
}

func (c *ordersClient) call(ctx context.Context, method string, in, out interface{}) error {
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *ordersClient) ListOrders(ctx context.Context, in *ListOrdersRequest) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.call(ctx, "ListOrders", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ordersClient) GetOrder(ctx context.Context, in *GetOrderRequest) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	if err := c.call(ctx, "GetOrder", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ordersClient) GetCheckoutState(ctx context.Context, in *GetCheckoutStateRequest) (*GetCheckoutStateResponse, error) {
	out := new(GetCheckoutStateResponse)
	if err := c.call(ctx, "GetCheckoutState", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

type testServer struct {
	client   *ordersClient
	auth     *identity.JWTAuthenticator
	ledger   *ledger.Ledger
	sessions *session.Manager
}

func startServer(t *testing.T, history OrderHistory) *testServer {
	l := ledger.New(storage.NewMemoryStore())
	if history == nil {
		history = l
	}
	m := session.NewManager(func(c *cart.Store) *checkout.Orchestrator {
		return checkout.NewOrchestrator(c, payment.NewValidator(),
			payment.NewSimulator(payment.WithLatency(0)), order.NewFactory(), l)
	}, time.Hour)
	t.Cleanup(func() { m.Close() })

	auth, err := identity.NewJWTAuthenticator(testSecret, "storefront")
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(AuthInterceptor(auth)))
	RegisterOrdersServiceServer(srv, NewOrdersHandler(history, m))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testServer{client: &ordersClient{cc: conn}, auth: auth, ledger: l, sessions: m}
}

// as returns a context carrying a bearer token for userID.
func (s *testServer) as(t *testing.T, userID string) context.Context {
	token, err := s.auth.Issue(userID, "", time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

var orders = order.NewFactory()

func placeOrder(t *testing.T, l *ledger.Ledger, userID string, price int64) domain.Order {
	o := orders.Create([]domain.CartLine{
		{ProductID: 1, Title: "Phone", UnitPrice: decimal.NewFromInt(price), Quantity: 1},
	}, domain.PaymentKindCard, domain.DeliveryInfo{FullName: "Ada"})
	require.NoError(t, l.Append(context.Background(), userID, o))
	return o
}

func TestListOrders(t *testing.T) {
	s := startServer(t, nil)
	first := placeOrder(t, s.ledger, "user_42", 10)
	second := placeOrder(t, s.ledger, "user_42", 20)

	resp, err := s.client.ListOrders(s.as(t, "user_42"), &ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, second.ID, resp.Orders[0].ID)
	assert.Equal(t, first.ID, resp.Orders[1].ID)
	assert.True(t, resp.Orders[0].Total.Equal(decimal.NewFromInt(25)))
}

func TestListOrders_Empty(t *testing.T) {
	s := startServer(t, nil)

	resp, err := s.client.ListOrders(s.as(t, "nobody"), &ListOrdersRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Orders)
}

func TestListOrders_Unauthenticated(t *testing.T) {
	s := startServer(t, nil)

	_, err := s.client.ListOrders(context.Background(), &ListOrdersRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestListOrders_IgnoresClaimedUser(t *testing.T) {
	s := startServer(t, nil)
	placeOrder(t, s.ledger, "user_42", 10)

	claimed := struct {
		UserID string `json:"user_id"`
	}{UserID: "user_42"}

	t.Run("anonymous", func(t *testing.T) {
		ctx := metadata.AppendToOutgoingContext(context.Background(), "user-id", "user_42")
		out := new(ListOrdersResponse)
		err := s.client.call(ctx, "ListOrders", &claimed, out)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("signed in as someone else", func(t *testing.T) {
		out := new(ListOrdersResponse)
		err := s.client.call(s.as(t, "user_7"), "ListOrders", &claimed, out)
		require.NoError(t, err)
		assert.Empty(t, out.Orders)
	})
}

func TestListOrders_InvalidToken(t *testing.T) {
	s := startServer(t, nil)

	other, err := identity.NewJWTAuthenticator("another-secret", "storefront")
	require.NoError(t, err)
	forged, err := other.Issue("user_42", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", "Bearer " + forged},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", tt.header)
			_, err := s.client.ListOrders(ctx, &ListOrdersRequest{})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestListOrders_BackendFailure(t *testing.T) {
	s := startServer(t, failingHistory{})

	_, err := s.client.ListOrders(s.as(t, "user_42"), &ListOrdersRequest{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGetOrder(t *testing.T) {
	s := startServer(t, nil)
	o := placeOrder(t, s.ledger, "user_42", 10)

	resp, err := s.client.GetOrder(s.as(t, "user_42"), &GetOrderRequest{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.Order.ID)
	assert.Equal(t, "Ada", resp.Order.DeliveryInfo.FullName)
}

func TestGetOrder_Errors(t *testing.T) {
	s := startServer(t, nil)
	o := placeOrder(t, s.ledger, "user_42", 10)

	tests := []struct {
		name string
		ctx  context.Context
		req  *GetOrderRequest
		want codes.Code
	}{
		{"missing order id", s.as(t, "user_42"), &GetOrderRequest{}, codes.InvalidArgument},
		{"unknown order", s.as(t, "user_42"), &GetOrderRequest{OrderID: "ORD-1"}, codes.NotFound},
		{"other user's order", s.as(t, "user_7"), &GetOrderRequest{OrderID: o.ID}, codes.NotFound},
		{"anonymous", context.Background(), &GetOrderRequest{OrderID: o.ID}, codes.Unauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.client.GetOrder(tt.ctx, tt.req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestGetCheckoutState(t *testing.T) {
	s := startServer(t, nil)
	sess := s.sessions.Create()

	resp, err := s.client.GetCheckoutState(context.Background(), &GetCheckoutStateRequest{SessionID: sess.ID})
	require.NoError(t, err)
	assert.Equal(t, "IDLE", resp.Status)
	assert.Empty(t, resp.Error)

	sess.Cart.Add(domain.CartLine{ProductID: 1, UnitPrice: decimal.NewFromInt(5)}, 1)
	_, err = sess.Checkout.Submit(context.Background(), "user_42", domain.JazzCash{MobileNumber: "123", PIN: "12345"}, domain.DeliveryInfo{})
	require.Error(t, err)

	resp, err = s.client.GetCheckoutState(context.Background(), &GetCheckoutStateRequest{SessionID: sess.ID})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestGetCheckoutState_Errors(t *testing.T) {
	s := startServer(t, nil)

	_, err := s.client.GetCheckoutState(context.Background(), &GetCheckoutStateRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.client.GetCheckoutState(context.Background(), &GetCheckoutStateRequest{SessionID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
