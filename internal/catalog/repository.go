package catalog

import (
	"context"

	"github.com/statusdesk/statusdesk/internal/domain"
)

// Repository defines the interface for service catalog storage.
type Repository interface {
	CreateService(ctx context.Context, service *domain.Service) error
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	UpdateService(ctx context.Context, service *domain.Service) error
	UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error
}
