package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jalvarez/statline/backend/models"
	"gorm.io/gorm"
)

// Store owns every persisted entity collection. Mutations follow the
// container contract: unknown ids are silent no-ops, deletes never cascade,
// and partial payloads are shallow-merged into the matching record.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate runs database migrations
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&models.Profile{},
		&models.Product{},
		&models.WorkSession{},
		&models.Evaluation{},
		&models.InternalNote{},
		&models.SystemConfig{},
	)
}

// ProfilePatch is a partial profile payload; nil fields are left untouched.
type ProfilePatch struct {
	FullName  *string `json:"full_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Title     *string `json:"title,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// ProductPatch is a partial product payload; nil fields are left untouched.
type ProductPatch struct {
	Name            *string  `json:"name,omitempty"`
	ValueWeight     *float64 `json:"value_weight,omitempty"`
	StandardSeconds *int     `json:"standard_seconds,omitempty"`
	DifficultyLevel *int     `json:"difficulty_level,omitempty"`
	Active          *bool    `json:"active,omitempty"`
}

// ConfigPatch is a partial weight payload; nil fields keep their current value.
type ConfigPatch struct {
	VelocityWeight     *float64 `json:"velocity_weight,omitempty"`
	ProductivityWeight *float64 `json:"productivity_weight,omitempty"`
	ResolutionWeight   *float64 `json:"resolution_weight,omitempty"`
	ComplianceWeight   *float64 `json:"compliance_weight,omitempty"`
}

// Profile operations

func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		slog.Error("Failed to create profile", "error", err)
		return err
	}
	slog.Info("Profile created", "profile_id", profile.ID, "full_name", profile.FullName)
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get profile", "error", err, "profile_id", id)
		return nil, err
	}
	return &profile, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("created_at").Find(&profiles).Error; err != nil {
		slog.Error("Failed to list profiles", "error", err)
		return nil, err
	}
	return profiles, nil
}

// UpdateProfile shallow-merges the patch into the matching record. A missing
// id is a silent no-op.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}

	if patch.FullName != nil {
		profile.FullName = *patch.FullName
	}
	if patch.Role != nil {
		profile.Role = *patch.Role
	}
	if patch.Title != nil {
		profile.Title = *patch.Title
	}
	if patch.AvatarURL != nil {
		profile.AvatarURL = *patch.AvatarURL
	}

	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		slog.Error("Failed to update profile", "error", err, "profile_id", id)
		return err
	}
	slog.Info("Profile updated", "profile_id", id)
	return nil
}

// DeleteProfile removes the matching record. Related sessions, notes and
// evaluations keep their employee id; resolving those orphaned references is
// the reader's problem, not the container's.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		slog.Error("Failed to delete profile", "error", err, "profile_id", id)
		return err
	}
	slog.Info("Profile deleted", "profile_id", id)
	return nil
}

// Product operations

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		slog.Error("Failed to create product", "error", err)
		return err
	}
	slog.Info("Product created", "product_id", product.ID, "name", product.Name)
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get product", "error", err, "product_id", id)
		return nil, err
	}
	return &product, nil
}

// ListProducts returns the product catalog. With activeOnly set, inactive
// products are excluded; that filter is for session-start selection and has no
// effect on historical stats, which always see the full catalog.
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	var products []models.Product
	query := s.db.WithContext(ctx).Order("id")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&products).Error; err != nil {
		slog.Error("Failed to list products", "error", err)
		return nil, err
	}
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return nil
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.ValueWeight != nil {
		product.ValueWeight = *patch.ValueWeight
	}
	if patch.StandardSeconds != nil {
		product.StandardSeconds = *patch.StandardSeconds
	}
	if patch.DifficultyLevel != nil {
		product.DifficultyLevel = *patch.DifficultyLevel
	}
	if patch.Active != nil {
		product.Active = *patch.Active
	}

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		slog.Error("Failed to update product", "error", err, "product_id", id)
		return err
	}
	slog.Info("Product updated", "product_id", id)
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error; err != nil {
		slog.Error("Failed to delete product", "error", err, "product_id", id)
		return err
	}
	slog.Info("Product deleted", "product_id", id)
	return nil
}

// Config operations

func (s *Store) GetConfig(ctx context.Context) (*models.SystemConfig, error) {
	var config models.SystemConfig
	if err := s.db.WithContext(ctx).First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get system config", "error", err)
		return nil, err
	}
	return &config, nil
}

func (s *Store) CreateConfig(ctx context.Context, config *models.SystemConfig) error {
	if err := s.db.WithContext(ctx).Create(config).Error; err != nil {
		slog.Error("Failed to create system config", "error", err)
		return err
	}
	return nil
}

// UpdateConfig merges the supplied weights into the singleton config row.
// Weight-sum validation happens at the editing boundary, not here.
func (s *Store) UpdateConfig(ctx context.Context, patch ConfigPatch) error {
	config, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}
	if config == nil {
		return nil
	}

	if patch.VelocityWeight != nil {
		config.VelocityWeight = *patch.VelocityWeight
	}
	if patch.ProductivityWeight != nil {
		config.ProductivityWeight = *patch.ProductivityWeight
	}
	if patch.ResolutionWeight != nil {
		config.ResolutionWeight = *patch.ResolutionWeight
	}
	if patch.ComplianceWeight != nil {
		config.ComplianceWeight = *patch.ComplianceWeight
	}

	if err := s.db.WithContext(ctx).Save(config).Error; err != nil {
		slog.Error("Failed to update system config", "error", err)
		return err
	}
	slog.Info("System config updated",
		"velocity_weight", config.VelocityWeight,
		"productivity_weight", config.ProductivityWeight,
		"resolution_weight", config.ResolutionWeight,
		"compliance_weight", config.ComplianceWeight)
	return nil
}
