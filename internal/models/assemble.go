// Package models holds the request/response DTOs for the HTTP trigger
// surface; the domain types themselves (render.Options, render.Report,
// outline.Node) live in their owning packages.
package models

// AssembleRequest is the body of POST /api/v1/assemble: the directory,
// already present on disk, to discover toc.json files under.
type AssembleRequest struct {
	Directory string `json:"directory" binding:"required"`
}

// AssembleResponse mirrors render.Report for the HTTP trigger endpoint so
// the CLI and HTTP paths return the same shape.
type AssembleResponse struct {
	TOCPath    string `json:"tocPath"`
	OutputPath string `json:"outputPath"`
	Pages      int    `json:"pages"`
	Error      string `json:"error,omitempty"`
}
