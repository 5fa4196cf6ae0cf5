package domain

import "context"

// UnitOfWork represents a unit of work for managing repositories and transactions.
type UnitOfWork interface {
	// Dataset returns the repository for managing datasets and rows.
	Dataset() DatasetRepository
	// Layer returns the repository for managing layer metadata.
	Layer() LayerRepository
	// Point returns the repository for managing layer points.
	Point() PointRepository
	// Outbox returns the repository for managing outbox events.
	Outbox() OutboxRepository
	// Execute runs a function within the context of a unit of work.
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
}
