// Package tool implements the tool-side building blocks for TaskMesh: a
// generic adapter exposing plain Go functions as engine tools, a uniform
// ToolError for failures, and the async task-management tool set that lets a
// driving agent submit, inspect and await engine tasks through its own
// tool-calling loop.
package tool

import (
	"context"
	"fmt"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`              // Name of the tool that failed
	Message string      `json:"message"`           // Error message
	Code    string      `json:"code"`              // Error code for categorization
	Details interface{} `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// FunctionTool is a generic adapter that exposes a plain Go function as a
// TaskMesh tool.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines, which is exactly the reentrancy
// contract the engine assumes for registered tools. If the wrapped function
// closes over shared state, that state must be synchronized by the caller.
//
// Error semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description
	description string
	// User supplied implementation
	fn func(ctx context.Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from a name, description and
// function.
//
// Example:
//
//	double := tool.NewFunctionTool(
//	  "double",
//	  "Double a number",
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    x, ok := args["x"].(float64)
//	    if !ok {
//	      return nil, fmt.Errorf("argument x must be a number")
//	    }
//	    return 2 * x, nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{name: name, description: description, fn: fn}
}

// Name returns the unique tool name used as the registry key.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description of the tool.
func (t *FunctionTool) Description() string { return t.description }

// Call invokes the underlying function, normalizing failures to *ToolError
// for uniform downstream handling.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}
	return result, nil
}
