package parser

import (
	"fmt"
	"os"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

// Parser parses RCL catalog files into Abstract Syntax Trees.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 1MB)
	maxDepth    int   // Maximum condition nesting depth (default: 8)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 1 * 1024 * 1024, // 1MB
		maxDepth:    8,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum condition nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse parses a catalog file at the given path and returns the AST.
// It returns an error if the file cannot be read, has invalid YAML syntax,
// or contains structural errors.
func (p *Parser) Parse(path string) (*ast.Document, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &rclErrors.Error{
			Type:     rclErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &rclErrors.Error{
			Type:     rclErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("file size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &rclErrors.Error{
			Type:     rclErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses catalog YAML from a byte slice.
// This is useful for testing or parsing catalogs from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Document, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &rclErrors.Error{
			Type:     rclErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	yamlDoc, _, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &rclErrors.Error{
			Type:       rclErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   ast.Location{File: sourcePath, Line: 1},
			Suggestion: "check YAML syntax (indentation, colons, quotes)",
		}
	}

	builder := newBuilder(sourcePath, p.maxDepth)
	return builder.buildDocument(yamlDoc)
}
