package memory

import (
	"sync"

	"github.com/omarshaarawi/upgradebot/internal/models"
)

type Repository struct {
	matrix *models.UpgradeMatrix
	mu     sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) SaveMatrix(matrix models.UpgradeMatrix) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matrix = &matrix
}

// GetMatrix returns the last saved matrix, or nil if nothing has been harvested yet.
func (r *Repository) GetMatrix() *models.UpgradeMatrix {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matrix
}
