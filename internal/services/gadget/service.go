package gadget

import (
	"errors"
	"fmt"
	"time"

	"github.com/imf-ops/gadgetry/internal/codename"
	"github.com/imf-ops/gadgetry/internal/models"
	"github.com/imf-ops/gadgetry/internal/utils"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a gadget id does not resolve
var ErrNotFound = errors.New("gadget not found")

// WithProbability decorates a gadget with a transient mission success
// probability. Attached to read responses only, never persisted.
type WithProbability struct {
	models.Gadget
	SuccessProbability int `json:"successProbability"`
}

// UpdateParams carries the optional fields of an update request
type UpdateParams struct {
	Name   *string
	Status *models.GadgetStatus
}

// Service handles gadget operations
type Service struct {
	db        *gorm.DB
	codenames *codename.Generator
}

// NewService creates a new gadget service
func NewService(db *gorm.DB) *Service {
	s := &Service{db: db}
	s.codenames = codename.NewGenerator(s.codenameExists)
	return s
}

func (s *Service) codenameExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Gadget{}).Where("codename = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func decorate(gadgets []models.Gadget) []WithProbability {
	out := make([]WithProbability, 0, len(gadgets))
	for _, g := range gadgets {
		out = append(out, WithProbability{
			Gadget:             g,
			SuccessProbability: utils.SuccessProbability(),
		})
	}
	return out
}

// List returns all gadgets, optionally filtered to one status
func (s *Service) List(status *models.GadgetStatus) ([]WithProbability, error) {
	var gadgets []models.Gadget
	query := s.db
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&gadgets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch gadgets: %w", err)
	}
	return decorate(gadgets), nil
}

// GetByID returns one gadget decorated with a success probability
func (s *Service) GetByID(id string) (*WithProbability, error) {
	var gadget models.Gadget
	if err := s.db.Where("id = ?", id).First(&gadget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch gadget: %w", err)
	}
	return &WithProbability{
		Gadget:             gadget,
		SuccessProbability: utils.SuccessProbability(),
	}, nil
}

// Create persists a new gadget with a freshly generated codename and
// status Available
func (s *Service) Create(name string) (*models.Gadget, error) {
	cn, err := s.codenames.Generate()
	if err != nil {
		return nil, err
	}

	gadget := models.Gadget{
		Name:     name,
		Codename: cn,
		Status:   models.StatusAvailable,
	}
	if err := s.db.Create(&gadget).Error; err != nil {
		return nil, fmt.Errorf("failed to create gadget: %w", err)
	}
	return &gadget, nil
}

// Update overwrites only the supplied fields of an existing gadget
func (s *Service) Update(id string, params UpdateParams) (*models.Gadget, error) {
	gadget, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		gadget.Name = *params.Name
	}
	if params.Status != nil {
		gadget.Status = *params.Status
	}

	if err := s.db.Save(gadget).Error; err != nil {
		return nil, fmt.Errorf("failed to update gadget: %w", err)
	}
	return gadget, nil
}

// Decommission sets status to Decommissioned and stamps the time
func (s *Service) Decommission(id string) (*models.Gadget, error) {
	gadget, err := s.find(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	gadget.Status = models.StatusDecommissioned
	gadget.DecommissionedAt = &now

	if err := s.db.Save(gadget).Error; err != nil {
		return nil, fmt.Errorf("failed to decommission gadget: %w", err)
	}
	return gadget, nil
}

// Destroy sets status to Destroyed. Unlike Decommission it stamps no
// timestamp.
func (s *Service) Destroy(id string) (*models.Gadget, error) {
	gadget, err := s.find(id)
	if err != nil {
		return nil, err
	}

	gadget.Status = models.StatusDestroyed

	if err := s.db.Save(gadget).Error; err != nil {
		return nil, fmt.Errorf("failed to destroy gadget: %w", err)
	}
	return gadget, nil
}

// ListByStatus returns all gadgets with exactly the given status
func (s *Service) ListByStatus(status models.GadgetStatus) ([]WithProbability, error) {
	return s.List(&status)
}

func (s *Service) find(id string) (*models.Gadget, error) {
	var gadget models.Gadget
	if err := s.db.Where("id = ?", id).First(&gadget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch gadget: %w", err)
	}
	return &gadget, nil
}
