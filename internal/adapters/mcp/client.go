package mcp

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stockresearch/internal/tools"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// Config describes how to launch the tool server process.
type Config struct {
	Command         string
	Args            []string
	APIToken        string
	WebUnlockerZone string
	BrowserZone     string
}

// Client is a stdio MCP client; it implements tools.Server.
type Client struct {
	cfg     Config
	mu      sync.Mutex
	session *mcp.ClientSession
	log     *logger.Logger
}

var _ tools.Server = (*Client)(nil)

// New creates a client; nothing is started until Connect.
func New(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		log: logger.Get().With("component", "mcp", "command", cfg.Command),
	}
}

// Connect launches the server process and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil
	}
	if strings.TrimSpace(c.cfg.Command) == "" {
		return errors.Wrap(errors.ErrToolServer, "no tool server command configured")
	}

	cmd := exec.Command(c.cfg.Command, c.cfg.Args...)
	cmd.Env = append(os.Environ(), serverEnv(c.cfg)...)
	cmd.Stderr = os.Stderr

	client := mcp.NewClient(&mcp.Implementation{Name: "stockresearch"}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return errors.Wrapf(errors.ErrToolServer, "connect to %s: %v", c.cfg.Command, err)
	}

	c.session = session
	c.log.Infow("Tool server connected", "args", c.cfg.Args)
	return nil
}

// Connected reports whether a session is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Ping is used by the readiness check.
func (c *Client) Ping(context.Context) error {
	if !c.Connected() {
		return errors.Wrap(errors.ErrToolServer, "not connected")
	}
	return nil
}

// ListTools returns every tool the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]tools.RemoteTool, error) {
	session, err := c.current()
	if err != nil {
		return nil, err
	}

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrToolServer, "list tools: %v", err)
	}

	out := make([]tools.RemoteTool, 0, len(res.Tools))
	for _, t := range res.Tools {
		if t == nil {
			continue
		}
		rt := tools.RemoteTool{Name: t.Name, Description: t.Description}
		if t.InputSchema != nil {
			if raw, err := json.Marshal(t.InputSchema); err == nil {
				rt.InputSchema = string(raw)
			}
		}
		out = append(out, rt)
	}
	return out, nil
}

// CallTool invokes a remote tool and flattens its content into {"result": text}.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	session, err := c.current()
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrToolServer, "call %s: %v", name, err)
	}

	text, err := flattenContent(res.Content)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s result", name)
	}
	if res.IsError {
		return nil, errors.Wrapf(errors.ErrExternal, "tool %s: %s", name, text)
	}

	return map[string]any{"result": text}, nil
}

// Close terminates the session and the server process.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	if err != nil {
		return errors.Wrap(err, "close tool server session")
	}
	c.log.Info("Tool server disconnected")
	return nil
}

func (c *Client) current() (*mcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errors.Wrap(errors.ErrToolServer, "not connected")
	}
	return c.session, nil
}

// serverEnv returns the Bright Data variables the server process expects. Empty values are omitted.
func serverEnv(cfg Config) []string {
	var env []string
	add := func(k, v string) {
		if v != "" {
			env = append(env, k+"="+v)
		}
	}
	add("API_TOKEN", cfg.APIToken)
	add("WEB_UNLOCKER_ZONE", cfg.WebUnlockerZone)
	add("BROWSER_ZONE", cfg.BrowserZone)
	return env
}

// flattenContent joins text items and keeps other items as their JSON encoding.
func flattenContent[T any](items []T) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		var part struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &part); err == nil && part.Type == "text" {
			parts = append(parts, part.Text)
			continue
		}
		parts = append(parts, string(raw))
	}
	return strings.Join(parts, "\n"), nil
}
