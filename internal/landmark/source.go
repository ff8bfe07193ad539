package landmark

import (
	"context"
	"errors"
	"io"
)

//go:generate go tool mockgen -source=source.go -destination=mock_source.go -package=landmark

// Source yields pose-engine records in frame order. Next returns io.EOF once
// the stream is exhausted.
type Source interface {
	Next(ctx context.Context) (Record, error)
}

// ReadAll drains src into memory.
func ReadAll(ctx context.Context, src Source) ([]Record, error) {
	var records []Record
	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
