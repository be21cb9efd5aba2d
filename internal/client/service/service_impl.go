package service

import (
	"context"
	"strings"
	"time"

	"github.com/agencyops/fakturo/internal/cache"
	clientdomain "github.com/agencyops/fakturo/internal/client/domain"
	"github.com/agencyops/fakturo/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const directoryCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	log        *zap.Logger
	clientRepo repository.Repository[clientdomain.Client]
	byID       *cache.TTLCache[string, clientdomain.Client]
}

func NewService(p Params) clientdomain.Directory {
	return &Service{
		log:        p.Log.Named("client.directory"),
		clientRepo: repository.ProvideStore[clientdomain.Client](p.DB),
		byID:       cache.NewTTLCache[string, clientdomain.Client](),
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*clientdomain.Client, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, clientdomain.ErrInvalidClientID
	}

	if cached, ok := s.byID.Get(id); ok {
		return &cached, nil
	}

	record, err := s.clientRepo.First(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	s.byID.Set(id, *record, directoryCacheTTL)
	return record, nil
}

func (s *Service) List(ctx context.Context) ([]clientdomain.Client, error) {
	return s.clientRepo.Find(ctx)
}
