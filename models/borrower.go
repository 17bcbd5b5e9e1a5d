package models

// Borrower представляет заемщика
type Borrower struct {
	Base
	Name                    string `json:"name" gorm:"column:name;not null;size:255" validate:"required,max=255"`
	Identification          string `json:"identification" gorm:"column:identification;uniqueIndex;not null;size:50" validate:"required,max=50"`
	Age                     int    `json:"age" gorm:"column:age;not null" validate:"gte=18,lte=120"`
	Phone                   string `json:"phone" gorm:"column:phone;not null;size:30" validate:"required,max=30"`
	Address                 string `json:"address" gorm:"column:address;not null;size:255" validate:"required,max=255"`
	ReferenceName           string `json:"referenceName" gorm:"column:reference_name;size:255" validate:"max=255"`
	ReferenceIdentification string `json:"referenceIdentification" gorm:"column:reference_identification;size:50" validate:"max=50"`
	ReferencePhone          string `json:"referencePhone" gorm:"column:reference_phone;size:30" validate:"max=30"`
}

func (Borrower) TableName() string {
	return "borrowers"
}

func (Borrower) EntityName() string {
	return "borrower"
}

// Validate проверяет поля заемщика
func (b *Borrower) Validate() error {
	return ValidateStruct(b)
}
