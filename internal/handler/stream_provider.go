package handler

import (
	"context"

	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/service"
)

type streamProvider interface {
	List(ctx context.Context) ([]db.Stream, error)
	ListByDate(ctx context.Context, date db.Date) ([]db.Stream, error)
	Get(ctx context.Context, id string) (*db.Stream, error)
	Upsert(ctx context.Context, stream db.Stream) (*db.Stream, error)
	Delete(ctx context.Context, id string) error
	Today() db.Date
}

type statsProvider interface {
	Overview(ctx context.Context) (service.GlobalStats, error)
}
