// Package grpcserver implements the SearchService gRPC server.
//
// It delegates all business logic to the search dispatcher and handles
// only the gRPC transport concerns: metadata extraction, error mapping,
// and conversion between the domain model and google.protobuf.Struct
// messages. The service has a single unary method:
//
//	/jobmate.search.v1.SearchService/Search
//
// Request fields: term, page, pageSize, mode, sponsorship, tenantId.
// The response is the JSON shape of model.SearchResponse.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/search"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobmate.search.v1.SearchService"

// SearchMethod is the full method name of the Search RPC.
const SearchMethod = "/" + ServiceName + "/Search"

const defaultPageSize = 20

// SearchServiceServer is the server API for SearchService.
type SearchServiceServer interface {
	Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes SearchService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SearchServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: searchHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/search/v1/search.proto",
}

func searchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchServiceServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SearchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchServiceServer).Search(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Searcher runs a search request.
type Searcher interface {
	Dispatch(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
}

// Server implements SearchServiceServer.
type Server struct {
	searcher Searcher
}

// NewServer constructs a gRPC Server backed by the given Searcher.
func NewServer(searcher Searcher) *Server {
	return &Server{searcher: searcher}
}

// Register mounts SearchService and the standard health service on gs.
// The returned health server reports SERVING for both the overall server
// and SearchService.
func Register(gs *grpc.Server, srv *Server) *health.Server {
	gs.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// ─── RPC implementations ──────────────────────────────────────────────────────

// searchMessage mirrors the Struct fields accepted by Search.
type searchMessage struct {
	Term        string `json:"term"`
	Page        *int   `json:"page"`
	PageSize    *int   `json:"pageSize"`
	Mode        string `json:"mode"`
	Sponsorship string `json:"sponsorship"`
	TenantID    string `json:"tenantId"`
}

// Search runs a search request. The x-tenant-id metadata key takes
// precedence over the tenantId field.
func (s *Server) Search(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := toSearchRequest(in)
	if err != nil {
		return nil, err
	}
	if tenantID := tenantFromCtx(ctx); tenantID != "" {
		req.TenantID = tenantID
	}

	resp, err := s.searcher.Dispatch(ctx, req)
	if err != nil {
		return nil, toGRPCError(err)
	}

	out, err := toStruct(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// tenantFromCtx extracts the x-tenant-id value forwarded by the Gateway
// via gRPC metadata. A missing value means the global tenant.
func tenantFromCtx(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get("x-tenant-id"); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func toSearchRequest(in *structpb.Struct) (model.SearchRequest, error) {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return model.SearchRequest{}, status.Error(codes.InvalidArgument, "malformed request")
	}
	var msg searchMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return model.SearchRequest{}, status.Error(codes.InvalidArgument, "page and pageSize must be integers")
	}

	req := model.SearchRequest{
		Term:        msg.Term,
		Page:        1,
		PageSize:    defaultPageSize,
		Mode:        model.ParseMode(msg.Mode),
		Sponsorship: model.ParseSponsorshipFilter(msg.Sponsorship),
		TenantID:    msg.TenantID,
	}
	if msg.Page != nil {
		req.Page = *msg.Page
	}
	if msg.PageSize != nil {
		req.PageSize = *msg.PageSize
	}
	return req, nil
}

func toStruct(resp *model.SearchResponse) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	var ve *search.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Msg)
	case errors.Is(err, search.ErrNoStrategy):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, "internal server error")
}
