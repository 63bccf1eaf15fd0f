package model

// StudentProfile links an external account to a display name and a
// single grade. One profile per account.
type StudentProfile struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	AccountID string `json:"account_id" bson:"account_id" validate:"required,min=1,max=100"`
	Name      string `json:"name" bson:"name" validate:"required,min=2,max=250"`
	GradeID   string `json:"grade_id" bson:"grade_id" validate:"required,mongodb"`
}
