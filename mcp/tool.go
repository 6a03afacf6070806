package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	kbschema "github.com/viant/emergencykb/schema"
	"github.com/viant/emergencykb/service"
)

//go:embed tools/search.md
var descSearch string

//go:embed tools/stats.md
var descStats string

//go:embed tools/status.md
var descStatus string

func registerTools(registry *protoserver.Registry, h *Handler) error {
	if err := protoserver.RegisterTool[*SearchInput, *SearchOutput](registry, "search", descSearch, func(ctx context.Context, in *SearchInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.search(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*StatsInput, *StatsOutput](registry, "stats", descStats, func(ctx context.Context, in *StatsInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.stats(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}

	if err := protoserver.RegisterTool[*StatusInput, *StatusOutput](registry, "status", descStatus, func(ctx context.Context, in *StatusInput) (*schema.CallToolResult, *jsonrpc.Error) {
		out, err := h.status(ctx, in)
		if err != nil {
			return buildErrorResult(err.Error())
		}
		return buildSuccessResult(out)
	}); err != nil {
		return err
	}
	return nil
}

func buildErrorResult(message string) (*schema.CallToolResult, *jsonrpc.Error) {
	return nil, jsonrpc.NewError(jsonrpc.InvalidParams, message, nil)
}

func buildSuccessResult(payload any) (*schema.CallToolResult, *jsonrpc.Error) {
	b, _ := json.Marshal(payload)
	return &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(b)},
		},
		StructuredContent: map[string]any{"result": payload},
	}, nil
}

func (h *Handler) search(ctx context.Context, in *SearchInput) (*SearchOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	if in == nil {
		in = &SearchInput{}
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, fmt.Errorf("mcp: missing query")
	}
	k := in.K
	if k <= 0 {
		k = service.DefaultK
	}
	limit := k
	if in.Category != "" {
		limit = h.service.Len()
	}
	results, err := h.service.Search(ctx, in.Query, limit)
	if err != nil {
		return nil, err
	}
	if in.Category != "" {
		filtered := make([]kbschema.Result, 0, k)
		for _, result := range results {
			if result.Document.Category == in.Category {
				filtered = append(filtered, result)
			}
			if len(filtered) == k {
				break
			}
		}
		results = filtered
	}
	if h.metricsLog {
		log.Printf("mcp metric op=search k=%d category=%s matches=%d dur=%s", k, in.Category, len(results), time.Since(start))
	}
	return &SearchOutput{Results: results}, nil
}

func (h *Handler) stats(ctx context.Context, _ *StatsInput) (*StatsOutput, error) {
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	return &StatsOutput{Stats: h.service.Stats()}, nil
}

func (h *Handler) status(ctx context.Context, _ *StatusInput) (*StatusOutput, error) {
	start := time.Now()
	if h == nil || h.service == nil {
		return nil, fmt.Errorf("mcp: service unavailable")
	}
	status, err := h.service.Status(ctx)
	if err != nil {
		return nil, err
	}
	if h.metricsLog {
		log.Printf("mcp metric op=status files=%d dur=%s", status.FileCount, time.Since(start))
	}
	return &StatusOutput{Status: status, Indexed: h.service.Len()}, nil
}
