package tools

import (
	"context"
	"strings"
	"time"

	"google.golang.org/adk/tool"

	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// RemoteTool is a tool advertised by an external tool server.
type RemoteTool struct {
	Name        string
	Description string
	// InputSchema is the raw JSON schema of the arguments, appended to the description
	// so the model sees the expected fields even though arguments travel as a free-form object.
	InputSchema string
}

// Server is a connected tool server such as the Bright Data MCP process.
type Server interface {
	ListTools(ctx context.Context) ([]RemoteTool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// DiscoverOptions tune the middleware applied to every remote tool.
type DiscoverOptions struct {
	Timeout time.Duration
}

// Discover lists the server's tools and registers each one as an ADK tool that proxies to the server.
func Discover(ctx context.Context, srv Server, opts DiscoverOptions) (*Registry, error) {
	if srv == nil {
		return nil, errors.Wrap(errors.ErrToolServer, "tool server not configured")
	}

	remote, err := srv.ListTools(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrToolServer, err.Error())
	}

	log := logger.FromContext(ctx)
	reg := NewRegistry()
	for _, rt := range remote {
		if strings.TrimSpace(rt.Name) == "" {
			log.Warn("Skipping remote tool without a name")
			continue
		}

		name := rt.Name
		factory := NewFactory(name, describeRemote(rt), func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return srv.CallTool(ctx, name, args)
		}).WithStats()
		if opts.Timeout > 0 {
			factory.WithTimeout(opts.Timeout)
		}

		t, err := factory.Build()
		if err != nil {
			return nil, err
		}
		reg.Register(t)
	}

	log.Infow("Tools loaded", "tool_count", reg.Len(), "tools", reg.List())
	return reg, nil
}

func describeRemote(rt RemoteTool) string {
	desc := strings.TrimSpace(rt.Description)
	if rt.InputSchema == "" {
		return desc
	}
	if desc == "" {
		return "Arguments schema: " + rt.InputSchema
	}
	return desc + "\nArguments schema: " + rt.InputSchema
}

// Static returns a Server-independent source for already-built tools, mainly for tests and offline runs.
type Static []tool.Tool

// Tools returns the static list.
func (s Static) Tools(context.Context) ([]tool.Tool, error) {
	return s, nil
}

type connector interface {
	Connect(ctx context.Context) error
}

// ServerSource connects to a tool server on first use and discovers its tools on every call.
type ServerSource struct {
	Server  Server
	Options DiscoverOptions
}

// Tools connects the server when it supports it and returns the discovered tools.
func (s ServerSource) Tools(ctx context.Context) ([]tool.Tool, error) {
	if c, ok := s.Server.(connector); ok {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}
	reg, err := Discover(ctx, s.Server, s.Options)
	if err != nil {
		return nil, err
	}
	return reg.Tools(), nil
}
