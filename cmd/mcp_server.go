package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/wintheme/internal/config"
	"github.com/mj1618/wintheme/internal/controller"
	"github.com/mj1618/wintheme/internal/model"
	"github.com/mj1618/wintheme/internal/output"
	"github.com/mj1618/wintheme/internal/version"
)

// mcpServer exposes the wintheme verbs as MCP tools. Injection rounds are
// serialized: two concurrent injects would race on the fixed-name init
// segment.
type mcpServer struct {
	ctrl          controller.Controller
	overridesPath string
	injectMu      sync.Mutex
	mcp           *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport     string
	Port          int
	OverridesPath string
}

// newMCPServer creates and configures an MCP server with all wintheme tools.
func newMCPServer(cfg MCPConfig) *mcpServer {
	s := &mcpServer{
		ctrl:          controller.New(log),
		overridesPath: cfg.OverridesPath,
	}
	s.mcp = mcpserver.NewMCPServer("wintheme", version.Version)
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// inject
	s.mcp.AddTool(
		mcp.NewTool("inject",
			mcp.WithDescription("Inject the theming library into a shell process and apply an appearance mode to its matched elements"),
			mcp.WithString("target", mcp.Description("Target preset (Taskbar, StartMenu, ActionCenter, or from the overrides file)"), mcp.Required()),
			mcp.WithString("mode", mcp.Description("Initial mode: default, transparent, acrylic")),
			mcp.WithString("process", mcp.Description("Override the target's process name")),
			mcp.WithNumber("pid", mcp.Description("Inject into this PID instead of resolving by name")),
			mcp.WithString("dll", mcp.Description("Path to the theming library")),
			mcp.WithNumber("wait", mcp.Description("Seconds to wait for the module to come up")),
		),
		s.handleInject,
	)

	// discover
	s.mcp.AddTool(
		mcp.NewTool("discover",
			mcp.WithDescription("Inject in observe-only mode: log every element of the host's visual tree without mutating anything"),
			mcp.WithString("target", mcp.Description("Target preset"), mcp.Required()),
			mcp.WithString("log", mcp.Description("Discovery log path (default: next to the library)")),
			mcp.WithString("dll", mcp.Description("Path to the theming library")),
			mcp.WithNumber("pid", mcp.Description("Inject into this PID instead of resolving by name")),
		),
		s.handleDiscover,
	)

	// set_mode
	s.mcp.AddTool(
		mcp.NewTool("set_mode",
			mcp.WithDescription("Change the appearance mode of an already-injected target (picked up within 250ms)"),
			mcp.WithString("target", mcp.Description("Target preset"), mcp.Required()),
			mcp.WithString("mode", mcp.Description("Mode: default, transparent, acrylic"), mcp.Required()),
		),
		s.handleSetMode,
	)

	// status
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report whether a target's module is attached and its current mode"),
			mcp.WithString("target", mcp.Description("Target preset"), mcp.Required()),
		),
		s.handleStatus,
	)

	// targets
	s.mcp.AddTool(
		mcp.NewTool("targets",
			mcp.WithDescription("List the known target presets with their processes and element matchers"),
		),
		s.handleTargets,
	)
}

// resultToText serializes a result to YAML for MCP responses.
func resultToText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func (s *mcpServer) injectOptions(params map[string]interface{}) (controller.InjectOptions, error) {
	target, err := config.Lookup(stringParam(params, "target", ""), s.overridesPath)
	if err != nil {
		return controller.InjectOptions{}, err
	}
	if process := stringParam(params, "process", ""); process != "" {
		target.Process = process
	}
	dll := stringParam(params, "dll", "")
	if dll == "" {
		dll = defaultDLLPath()
	}
	return controller.InjectOptions{
		Target:     target,
		PID:        uint32(intParam(params, "pid", 0)),
		DLLPath:    dll,
		AttachWait: time.Duration(intParam(params, "wait", 0)) * time.Second,
	}, nil
}

func (s *mcpServer) handleInject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts, err := s.injectOptions(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.Mode, err = model.ParseMode(stringParam(params, "mode", "default"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.injectMu.Lock()
	defer s.injectMu.Unlock()
	res, err := s.ctrl.Inject(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *mcpServer) handleDiscover(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts, err := s.injectOptions(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.Discovery = true
	opts.LogPath = stringParam(params, "log", "")

	s.injectMu.Lock()
	defer s.injectMu.Unlock()
	res, err := s.ctrl.Inject(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(res)), nil
}

func (s *mcpServer) handleSetMode(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	targetID := stringParam(params, "target", "")
	mode, err := model.ParseMode(stringParam(params, "mode", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ctrl.SetMode(targetID, mode); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := s.ctrl.Status(targetID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(status)), nil
}

func (s *mcpServer) handleStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.ctrl.Status(stringParam(request.GetArguments(), "target", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(status)), nil
}

func (s *mcpServer) handleTargets(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targets, err := config.Targets(s.overridesPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(output.TargetsResult{Targets: targets})), nil
}

// stringParam extracts a string parameter with a default.
func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

// intParam extracts a numeric parameter with a default. JSON numbers
// arrive as float64.
func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}
