package submission

import (
	"context"

	"gorm.io/gorm"

	"github.com/sharath018/jharkhand-tourism-backend/internal/application"
	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

// Store persists a submission's application, documents and profile status
// together.
type Store interface {
	Save(ctx context.Context, app *application.Application, docs []application.Document, pending vendorprofile.PendingUpdate) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Save(ctx context.Context, app *application.Application, docs []application.Document, pending vendorprofile.PendingUpdate) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := application.NewRepository(tx).Create(ctx, app, docs); err != nil {
			return err
		}
		return vendorprofile.NewRepository(tx).MarkPending(ctx, pending)
	})
}
