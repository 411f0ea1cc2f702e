package models

// SubmissionReport tamamlanan bir submission için üretilen PDF raporudur.
// İçerik dış bir render süreci tarafından doldurulur; e-posta kayıt
// backend'i "pdf" ek formatında bu içeriği kullanır.
type SubmissionReport struct {
	BaseModel
	SubmissionID uint   `gorm:"uniqueIndex;not null"`
	Title        string `gorm:"type:varchar(255);not null"`
	Content      []byte `gorm:"type:bytea"`

	// GORM İlişkileri
	Submission Submission `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
