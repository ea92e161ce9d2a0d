package tools

import (
	"context"
	"fmt"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

// FileSearchTool advertises document lookup. No document store is wired yet,
// so every call reports the gap explicitly.
type FileSearchTool struct{}

type FileResult struct {
	Error    string `json:"error,omitempty"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

func (r FileResult) Failed() bool {
	return r.URL == ""
}

func NewFileSearch() *FileSearchTool {
	return &FileSearchTool{}
}

func (t *FileSearchTool) Name() Name {
	return FileSearch
}

func (t *FileSearchTool) Description() string {
	return "Fetch a product document by filename (e.g., manual or safety sheet). Returns a URL if found."
}

func (t *FileSearchTool) Params() Params {
	return Params{
		{Name: "filename", Type: TypeString, Description: "Filename to locate", Required: true},
	}
}

func (t *FileSearchTool) Execute(ctx context.Context, args Args) (any, error) {
	return FileResult{
		Error:    fmt.Sprintf("%s %s", FileSearch, core.ErrNotImplemented),
		Filename: args.String("filename"),
	}, nil
}
