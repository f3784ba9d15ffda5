package models

import "time"

// PreferenceSingletonId is the only row of the preferences table.
const PreferenceSingletonId = 1

type Preference struct {
	ID               int       `gorm:"primary_key;autoIncrement:false" json:"id"`
	MaxPelunasanHari int       `gorm:"not null;default:0" json:"max_pelunasan_hari"`
	DarkMode         bool      `gorm:"not null;default:false" json:"dark_mode"`
	Language         string    `gorm:"size:10;default:id" json:"language"`
	CompanyName      string    `gorm:"size:255" json:"company_name"`
	CompanyAddress   string    `gorm:"type:text" json:"company_address"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPreference struct {
	MaxPelunasanHari *int   `json:"max_pelunasan_hari" validate:"required,gte=0"`
	DarkMode         bool   `json:"dark_mode"`
	Language         string `json:"language" validate:"omitempty,max=10"`
	CompanyName      string `json:"company_name" validate:"max=255"`
	CompanyAddress   string `json:"company_address"`
}

func (input NewPreference) Validate() error {
	return ValidateStruct(input)
}

// ToPreference maps the input onto the singleton row.
func (input NewPreference) ToPreference() Preference {
	p := Preference{
		ID:             PreferenceSingletonId,
		DarkMode:       input.DarkMode,
		Language:       input.Language,
		CompanyName:    input.CompanyName,
		CompanyAddress: input.CompanyAddress,
	}
	if input.MaxPelunasanHari != nil {
		p.MaxPelunasanHari = *input.MaxPelunasanHari
	}
	return p
}
