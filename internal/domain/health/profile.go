package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is the user's health profile, one row per user.
type Profile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`

	DOB           *datatypes.Date `gorm:"column:dob" json:"dob,omitempty"`
	Sex           string          `gorm:"column:sex" json:"sex"`
	HeightCM      *float64        `gorm:"column:height_cm" json:"height_cm,omitempty"`
	WeightKG      *float64        `gorm:"column:weight_kg" json:"weight_kg,omitempty"`
	ActivityLevel string          `gorm:"column:activity_level" json:"activity_level"`

	DietaryPrefs       datatypes.JSONSlice[string] `gorm:"column:dietary_prefs" json:"dietary_prefs"`
	Allergies          datatypes.JSONSlice[string] `gorm:"column:allergies" json:"allergies"`
	MedicalConditions  datatypes.JSONSlice[string] `gorm:"column:medical_conditions" json:"medical_conditions"`
	Disabilities       datatypes.JSONSlice[string] `gorm:"column:disabilities" json:"disabilities"`
	Goals              datatypes.JSONSlice[string] `gorm:"column:goals" json:"goals"`
	FavoriteActivities datatypes.JSONSlice[string] `gorm:"column:favorite_activities" json:"favorite_activities"`
	HappyTriggers      datatypes.JSONSlice[string] `gorm:"column:happy_triggers" json:"happy_triggers"`
	SocialCircle       datatypes.JSONSlice[string] `gorm:"column:social_circle" json:"social_circle"`
	DoctorNotes        string                      `gorm:"column:doctor_notes" json:"doctor_notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
