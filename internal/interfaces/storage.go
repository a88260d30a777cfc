package interfaces

import "context"

// ReportStore persists generated report files
type ReportStore interface {
	// Save writes data under name and returns the stored location
	Save(ctx context.Context, name string, data []byte) (string, error)

	// Load reads a previously saved report
	Load(ctx context.Context, name string) ([]byte, error)

	// List returns stored report names, newest first
	List(ctx context.Context) ([]string, error)
}
