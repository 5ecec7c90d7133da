package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/domain"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProductCatalogServiceName is the fully qualified gRPC service name.
const ProductCatalogServiceName = "catalog.v1.ProductCatalog"

// ProductCatalogServer is the gRPC surface of the catalog. Messages are
// protobuf well-known types; products travel as structpb.Struct with the
// same field names as the REST representation.
type ProductCatalogServer interface {
	ListProducts(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetProduct(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteProduct(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

func unaryMethod[Req proto.Message](
	name string,
	newReq func() Req,
	call func(ProductCatalogServer, context.Context, Req) (proto.Message, error),
) grpc.MethodDesc {
	fullMethod := "/" + ProductCatalogServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ProductCatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ProductCatalogServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ProductCatalogServiceDesc describes the service for grpc.Server.RegisterService.
var ProductCatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductCatalogServiceName,
	HandlerType: (*ProductCatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListProducts", func() *emptypb.Empty { return new(emptypb.Empty) },
			func(s ProductCatalogServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.ListProducts(ctx, in)
			}),
		unaryMethod("GetProduct", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s ProductCatalogServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.GetProduct(ctx, in)
			}),
		unaryMethod("CreateProduct", func() *structpb.Struct { return new(structpb.Struct) },
			func(s ProductCatalogServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.CreateProduct(ctx, in)
			}),
		unaryMethod("UpdateProduct", func() *structpb.Struct { return new(structpb.Struct) },
			func(s ProductCatalogServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.UpdateProduct(ctx, in)
			}),
		unaryMethod("DeleteProduct", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
			func(s ProductCatalogServer, ctx context.Context, in *wrapperspb.StringValue) (proto.Message, error) {
				return s.DeleteProduct(ctx, in)
			}),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterProductCatalogServer registers srv on s.
func RegisterProductCatalogServer(s grpc.ServiceRegistrar, srv ProductCatalogServer) {
	s.RegisterService(&ProductCatalogServiceDesc, srv)
}

// GRPCHandler implements ProductCatalogServer over the catalog service.
type GRPCHandler struct {
	service *catalog.Service
	logger  *log.Logger
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(svc *catalog.Service, logger *log.Logger) *GRPCHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &GRPCHandler{service: svc, logger: logger}
}

// --- Helper: Error Mapping ---
func (s *GRPCHandler) mapServiceErrorToGrpcStatus(err error, op string, resourceID interface{}) error {
	var vErr *catalog.ValidationError
	switch {
	case errors.As(err, &vErr):
		return status.Error(codes.InvalidArgument, vErr.Message)
	case errors.Is(err, catalog.ErrNotFound):
		return status.Errorf(codes.NotFound, "Product with ID %v not found", resourceID)
	default:
		s.logger.Printf("ERROR: gRPC %s for product ID %v failed: %v", op, resourceID, err)
		return status.Errorf(codes.Internal, "Failed to process %s for product ID %v: %v", op, resourceID, err)
	}
}

func productToStruct(p *domain.Product) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
		"category":    p.Category,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode product %s: %v", p.ID, err)
	}
	return st, nil
}

// decodeStruct re-reads a Struct through its JSON form so that gRPC and REST
// share the same input decoding.
func decodeStruct(in *structpb.Struct, dst interface{}) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid request payload: %v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid request payload: %v", err)
	}
	return nil
}

func (s *GRPCHandler) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	products, err := s.service.ListProducts(ctx)
	if err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "ListProducts", "*")
	}

	values := make([]*structpb.Value, 0, len(products))
	for i := range products {
		st, err := productToStruct(&products[i])
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *GRPCHandler) GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	product, err := s.service.GetProduct(ctx, req.GetValue())
	if err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "GetProduct", req.GetValue())
	}
	return productToStruct(product)
}

func (s *GRPCHandler) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input catalog.ProductInput
	if err := decodeStruct(req, &input); err != nil {
		return nil, err
	}
	created, err := s.service.CreateProduct(ctx, input)
	if err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "CreateProduct", "(new)")
	}
	return productToStruct(created)
}

// UpdateProduct reads the target id from the "id" field; all other fields
// form the patch.
func (s *GRPCHandler) UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.NotFound, "Product not found")
	}

	var input catalog.ProductPatchInput
	if err := decodeStruct(req, &input); err != nil {
		return nil, err
	}
	patch, err := input.Patch()
	if err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "UpdateProduct", id)
	}
	updated, err := s.service.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "UpdateProduct", id)
	}
	return productToStruct(updated)
}

func (s *GRPCHandler) DeleteProduct(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if err := s.service.DeleteProduct(ctx, req.GetValue()); err != nil {
		return nil, s.mapServiceErrorToGrpcStatus(err, "DeleteProduct", req.GetValue())
	}
	return wrapperspb.String("Product deleted"), nil
}

// LoggingUnaryInterceptor logs every unary call with its outcome and latency.
func LoggingUnaryInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Printf("INFO: gRPC %s code=%s duration=%s", info.FullMethod, status.Code(err), time.Since(start))
		return resp, err
	}
}

// ProductCatalogClient is a thin client for the catalog gRPC service.
type ProductCatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewProductCatalogClient(cc grpc.ClientConnInterface) *ProductCatalogClient {
	return &ProductCatalogClient{cc: cc}
}

func (c *ProductCatalogClient) invoke(ctx context.Context, method string, in, out proto.Message, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ProductCatalogServiceName+"/"+method, in, out, opts...)
}

func (c *ProductCatalogClient) ListProducts(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, "ListProducts", new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductCatalogClient) GetProduct(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetProduct", wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductCatalogClient) CreateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "CreateProduct", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductCatalogClient) UpdateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "UpdateProduct", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ProductCatalogClient) DeleteProduct(ctx context.Context, id string, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "DeleteProduct", wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
