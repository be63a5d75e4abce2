package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/models"
)

// ProfileInput carries the writable business-profile fields.
type ProfileInput struct {
	BusinessName  string
	Email         string
	Phone         string
	Address       string
	BankName      string
	AccountNumber string
	RoutingNumber string
}

// ProfileService manages the one-to-one business profile of a user.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Get returns the user's profile, or ErrProfileMissing when none was saved yet.
func (s *ProfileService) Get(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert updates the profile if one exists for the user, otherwise creates
// and links it. Keyed on user_id.
func (s *ProfileService) Upsert(userID uint, in ProfileInput) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		// update in place
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.Profile{UserID: userID}
	default:
		return nil, err
	}

	profile.BusinessName = in.BusinessName
	profile.Email = in.Email
	profile.Phone = in.Phone
	profile.Address = in.Address
	profile.BankName = in.BankName
	profile.AccountNumber = in.AccountNumber
	profile.RoutingNumber = in.RoutingNumber

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetLogoURL stores the public URL of an uploaded logo on the user's profile.
// The profile must already exist; a logo upload without a saved profile is
// rejected with ErrProfileMissing.
func (s *ProfileService) SetLogoURL(userID uint, logoURL string) error {
	res := s.db.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("logo_url", logoURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileMissing
	}
	return nil
}
