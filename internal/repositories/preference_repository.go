package repositories

import (
	"github.com/pulsegram/backend/internal/models"
	"gorm.io/gorm"
)

// PreferenceRepository defines the interface for notification preference operations
type PreferenceRepository interface {
	GetPreferences(userID uint) (*models.NotificationPreferences, error)
	UpdatePreferences(userID uint, req *models.UpdatePreferencesRequest) (*models.NotificationPreferences, error)
}

type postgresPreferenceRepository struct {
	db *gorm.DB
}

func NewPostgresPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &postgresPreferenceRepository{db: db}
}

// GetPreferences returns the user's row, creating it with defaults on
// first access.
func (r *postgresPreferenceRepository) GetPreferences(userID uint) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.Where("user_id = ?", userID).First(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := models.DefaultPreferences(userID)
	if err := r.db.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePreferences merges a partial update; nil fields keep their prior
// value. Enabling quiet hours for the first time without an explicit
// window seeds the 22:00-08:00 default.
func (r *postgresPreferenceRepository) UpdatePreferences(userID uint, req *models.UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	prefs, err := r.GetPreferences(userID)
	if err != nil {
		return nil, err
	}

	prefs.Apply(req)

	if err := r.db.Save(prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
