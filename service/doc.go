// Package service provides the emergency knowledge base: building the similarity index from a
// source directory, incremental additions, search, persistence and statistics.
//
// This package is intended for embedding the knowledge base into other programs
// (the CLI and the MCP server both use it) without shelling out.
package service
