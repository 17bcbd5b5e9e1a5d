package models

// Motorcycle представляет мотоцикл, служащий залогом по кредиту
type Motorcycle struct {
	Base
	Brand       string  `json:"brand" gorm:"column:brand;not null;size:100" validate:"required,max=100"`
	Model       string  `json:"model" gorm:"column:model;not null;size:100" validate:"required,max=100"`
	Plate       string  `json:"plate" gorm:"column:plate;uniqueIndex;not null;size:20" validate:"required,max=20"`
	Color       *string `json:"color,omitempty" gorm:"column:color;size:50" validate:"omitempty,max=50"`
	EngineCC    *int    `json:"engineCc,omitempty" gorm:"column:engine_cc" validate:"omitempty,gt=0"`
	GPSDeviceID *string `json:"gpsDeviceId,omitempty" gorm:"column:gps_device_id;size:100" validate:"omitempty,max=100"`
}

func (Motorcycle) TableName() string {
	return "motorcycles"
}

func (Motorcycle) EntityName() string {
	return "motorcycle"
}

// Validate проверяет поля мотоцикла
func (m *Motorcycle) Validate() error {
	return ValidateStruct(m)
}
