// Package tools implements the MCP tool handlers for OpenProject.
//
// Each tool is a struct holding its dependencies (the API client),
// with a Definition for registration and a Handle implementing the
// call. Failures coming from the OpenProject API are returned as tool
// error results so the model can read the classification and hint and
// adjust; only infrastructure failures propagate as Go errors.
package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"opmcp/internal/openproject"
)

// errorResult renders an API failure as a tool error result, keeping
// the classification and remediation hint visible to the caller.
func errorResult(err error) *mcp.CallToolResult {
	var apiErr *openproject.Error
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("OpenProject error (%s)", apiErr.Kind)
		if apiErr.Status != 0 {
			msg = fmt.Sprintf("%s, HTTP %d", msg, apiErr.Status)
		}
		if apiErr.Hint != "" {
			msg += ": " + apiErr.Hint
		}
		if apiErr.Body != "" {
			msg += "\n\nServer response: " + apiErr.Body
		}
		return mcp.NewToolResultError(msg)
	}
	return mcp.NewToolResultError(err.Error())
}

// requireID reads a positive integer argument, returning a tool error
// result when it is missing or not positive.
func requireID(req mcp.CallToolRequest, name string) (int, *mcp.CallToolResult) {
	id := req.GetInt(name, 0)
	if id <= 0 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s is required and must be a positive integer", name))
	}
	return id, nil
}
