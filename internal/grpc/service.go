package grpc

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
	"google.golang.org/grpc"
)

const (
	serviceName = "storefront.OrdersService"

	listOrdersMethod       = "/" + serviceName + "/ListOrders"
	getOrderMethod         = "/" + serviceName + "/GetOrder"
	getCheckoutStateMethod = "/" + serviceName + "/GetCheckoutState"
)

type ListOrdersRequest struct{}

type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type GetOrderRequest struct {
	OrderID string `json:"order_id"`
}

type GetOrderResponse struct {
	Order domain.Order `json:"order"`
}

type GetCheckoutStateRequest struct {
	SessionID string `json:"session_id"`
}

type GetCheckoutStateResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type OrdersServiceServer interface {
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	GetCheckoutState(context.Context, *GetCheckoutStateRequest) (*GetCheckoutStateResponse, error)
}

func RegisterOrdersServiceServer(s grpc.ServiceRegistrar, srv OrdersServiceServer) {
	s.RegisterService(&OrdersServiceDesc, srv)
}

// OrdersServiceDesc is registered without generated protobuf types; messages
// travel through the JSON codec.
var OrdersServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrdersServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListOrders", Handler: listOrdersHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "GetCheckoutState", Handler: getCheckoutStateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/orders",
}

func listOrdersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listOrdersMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrdersServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrdersServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getCheckoutStateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetCheckoutStateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrdersServiceServer).GetCheckoutState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCheckoutStateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrdersServiceServer).GetCheckoutState(ctx, req.(*GetCheckoutStateRequest))
	}
	return interceptor(ctx, in, info, handler)
}
