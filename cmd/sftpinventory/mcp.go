package main

import (
	"context"
	"strings"

	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/http"

	"github.com/darshan-rambhia/sftpinventory"
)

// ListFilesArgs are the arguments of the sftp_list_files tool.
type ListFilesArgs struct {
	Extension string `json:"extension" jsonschema:"description=File extension to match without the leading dot (case-sensitive),required"`
}

// BasePathArgs are the arguments of the sftp_base_path tool.
type BasePathArgs struct{}

func listFilesTool(ctx context.Context, inv sftpinventory.Inventory) func(ListFilesArgs) (*mcp_golang.ToolResponse, error) {
	return func(args ListFilesArgs) (*mcp_golang.ToolResponse, error) {
		records, err := inv.ListFiles(ctx, args.Extension)
		if err != nil {
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent("List error: " + err.Error())), err
		}
		if len(records) == 0 {
			return mcp_golang.NewToolResponse(mcp_golang.NewTextContent("No files with extension " + args.Extension)), nil
		}

		var b strings.Builder
		writeRecords(&b, records)
		return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(b.String())), nil
	}
}

func basePathTool(inv sftpinventory.Inventory) func(BasePathArgs) (*mcp_golang.ToolResponse, error) {
	return func(BasePathArgs) (*mcp_golang.ToolResponse, error) {
		return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(inv.Path())), nil
	}
}

// serveMCP exposes the inventory as MCP tools over HTTP on addr. It blocks
// until ctx is done or the server fails. The listener is released on
// process exit.
func serveMCP(ctx context.Context, inv sftpinventory.Inventory, addr string) error {
	transport := http.NewHTTPTransport("/mcp").WithAddr(addr)

	server := mcp_golang.NewServer(
		transport,
		mcp_golang.WithName("sftpinventory"),
		mcp_golang.WithInstructions("Lists files in one remote SFTP directory by extension"),
		mcp_golang.WithVersion(version),
	)

	if err := server.RegisterTool("sftp_list_files", "List files in the remote base path whose extension matches", listFilesTool(ctx, inv)); err != nil {
		return err
	}
	if err := server.RegisterTool("sftp_base_path", "Show the remote directory being inventoried", basePathTool(inv)); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- server.Serve() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if err != nil {
				return err
			}
			// Serve may return once the transport is running.
			errc = nil
		}
	}
}
