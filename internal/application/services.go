package application

import (
	"context"

	"espresso-log/internal/domain"
)

// ShotService is the domain collaborator for shot records. MostRecent
// returns (nil, nil) when no shot has been logged yet.
type ShotService interface {
	Create(ctx context.Context, shot domain.Shot) (domain.Shot, error)
	Update(ctx context.Context, shot domain.Shot) error
	MostRecent(ctx context.Context) (*domain.Shot, error)
	Find(ctx context.Context, filter domain.ShotFilter) ([]domain.Shot, error)
	Count(ctx context.Context, filter domain.ShotFilter) (int, error)
}

type BeanService interface {
	Create(ctx context.Context, bean domain.Bean) (domain.Bean, error)
	List(ctx context.Context) ([]domain.Bean, error)
}

type BagService interface {
	Create(ctx context.Context, bag domain.Bag) (domain.Bag, error)
	List(ctx context.Context) ([]domain.Bag, error)
}

type EquipmentService interface {
	Create(ctx context.Context, eq domain.Equipment) (domain.Equipment, error)
	List(ctx context.Context) ([]domain.Equipment, error)
}

type ProfileService interface {
	Create(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
}
