// Package server provides Connect RPC handlers for the word service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/scanvoca/scanvoca/internal/dictionary"
	"github.com/scanvoca/scanvoca/internal/resolver"
	"github.com/scanvoca/scanvoca/internal/validation"
)

const (
	WordServiceName = "scanvoca.v1.WordService"

	ResolveWordsProcedure = "/" + WordServiceName + "/ResolveWords"
	GetStatsProcedure     = "/" + WordServiceName + "/GetStats"

	DefaultMaxBatchSize = 100
)

// WordResolver resolves a batch of words.
type WordResolver interface {
	Resolve(ctx context.Context, words []string) resolver.Batch
}

// StatsReader reports aggregate word statistics.
type StatsReader interface {
	Stats(ctx context.Context) (dictionary.Stats, error)
}

type ResolveWordsRequest struct {
	Words []string `json:"words" validate:"dive,max=100"`
}

type ResolveWordsResponse struct {
	BatchID         string             `json:"batchId"`
	Results         []resolver.Outcome `json:"results"`
	CacheHits       int                `json:"cacheHits"`
	StoreHits       int                `json:"storeHits"`
	GenerationCalls int                `json:"generationCalls"`
	Errors          int                `json:"errors"`
}

type GetStatsRequest struct{}

type GetStatsResponse struct {
	TotalWords       int64   `json:"totalWords"`
	GeneratedWords   int64   `json:"generatedWords"`
	ImportedWords    int64   `json:"importedWords"`
	ManualWords      int64   `json:"manualWords"`
	TotalUsage       int64   `json:"totalUsage"`
	AverageUsage     float64 `json:"averageUsage"`
	SavedGenerations int64   `json:"savedGenerations"`
	HitRate          float64 `json:"hitRate"`
}

// WordHandler serves the word service.
type WordHandler struct {
	resolver     WordResolver
	stats        StatsReader
	validator    *validation.Validator
	maxBatchSize int
	logger       *slog.Logger
}

// NewWordHandler creates a WordHandler. A maxBatchSize below 1 uses DefaultMaxBatchSize.
func NewWordHandler(r WordResolver, stats StatsReader, maxBatchSize int, logger *slog.Logger) (*WordHandler, error) {
	v, err := validation.New("json")
	if err != nil {
		return nil, fmt.Errorf("validation.New() > %w", err)
	}
	if maxBatchSize < 1 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &WordHandler{
		resolver:     r,
		stats:        stats,
		validator:    v,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}, nil
}

// NewWordServiceHandler builds an HTTP handler for the word service and
// returns the path on which to mount it.
func NewWordServiceHandler(h *WordHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(ResolveWordsProcedure, connect.NewUnaryHandler(ResolveWordsProcedure, h.ResolveWords, opts...))
	mux.Handle(GetStatsProcedure, connect.NewUnaryHandler(GetStatsProcedure, h.GetStats, opts...))
	return "/" + WordServiceName + "/", mux
}

// ResolveWords resolves every requested word. Per-word failures are reported in
// the results, never as an RPC error.
func (h *WordHandler) ResolveWords(
	ctx context.Context,
	req *connect.Request[ResolveWordsRequest],
) (*connect.Response[ResolveWordsResponse], error) {
	var extra []validation.FieldError
	if len(req.Msg.Words) > h.maxBatchSize {
		extra = append(extra, validation.FieldError{
			Field:   "words",
			Message: fmt.Sprintf("words must contain at most %d items", h.maxBatchSize),
		})
	}
	if err := h.validateRequest(req.Msg, extra...); err != nil {
		return nil, err
	}

	batch := h.resolver.Resolve(ctx, req.Msg.Words)
	h.logger.Info("resolved words",
		"batchID", batch.ID,
		"words", len(req.Msg.Words),
		"cacheHits", batch.CacheHits,
		"storeHits", batch.StoreHits,
		"generationCalls", batch.GenerationCalls,
		"errors", batch.Errors)

	return connect.NewResponse(&ResolveWordsResponse{
		BatchID:         batch.ID.String(),
		Results:         batch.Outcomes,
		CacheHits:       batch.CacheHits,
		StoreHits:       batch.StoreHits,
		GenerationCalls: batch.GenerationCalls,
		Errors:          batch.Errors,
	}), nil
}

func (h *WordHandler) GetStats(
	ctx context.Context,
	_ *connect.Request[GetStatsRequest],
) (*connect.Response[GetStatsResponse], error) {
	stats, err := h.stats.Stats(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("load word stats: %w", err))
	}
	return connect.NewResponse(&GetStatsResponse{
		TotalWords:       stats.TotalWords,
		GeneratedWords:   stats.GeneratedWords,
		ImportedWords:    stats.ImportedWords,
		ManualWords:      stats.ManualWords,
		TotalUsage:       stats.TotalUsage,
		AverageUsage:     stats.AverageUsage(),
		SavedGenerations: stats.SavedGenerations(),
		HitRate:          stats.HitRate(),
	}), nil
}

func (h *WordHandler) validateRequest(msg any, extra ...validation.FieldError) *connect.Error {
	fieldErrors, err := h.validator.Struct(msg)
	if err != nil {
		return connect.NewError(connect.CodeInternal, fmt.Errorf("validate request: %w", err))
	}
	fieldErrors = append(fieldErrors, extra...)
	if len(fieldErrors) == 0 {
		return nil
	}

	connectErr := connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid request: %s", validation.Messages(fieldErrors)))
	fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       fe.Field,
			Description: fe.Message,
		})
	}
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: fieldViolations,
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}
