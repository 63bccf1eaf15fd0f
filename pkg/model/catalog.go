package model

// Grade is a school grade level. Referenced by students and by activity
// eligibility lists; never mutated once referenced.
type Grade struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name string `json:"name" bson:"name" validate:"required,min=1,max=10"`
}

// Activity is a bookable weekly slot. (Name, Day) is unique. Capacity 0
// means unlimited. Instructor, Venue and TimeLabel are display-only.
type Activity struct {
	ID            string   `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name          string   `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Day           Weekday  `json:"day" bson:"day" validate:"required,weekday"`
	Capacity      int      `json:"capacity" bson:"capacity" validate:"min=0,max=1000"`
	AllowedGrades []string `json:"allowed_grades" bson:"allowed_grades" validate:"required,min=1,dive,mongodb"`
	Instructor    string   `json:"instructor,omitempty" bson:"instructor,omitempty" validate:"omitempty,max=150"`
	Venue         string   `json:"venue,omitempty" bson:"venue,omitempty" validate:"omitempty,max=150"`
	TimeLabel     string   `json:"time" bson:"time" validate:"omitempty,max=50"`
}

// ActivityUpdate carries the admin-editable subset of an activity.
// Day is deliberately absent: moving an activity to another day would
// orphan the derived day on its bookings.
type ActivityUpdate struct {
	Name          string   `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Capacity      *int     `json:"capacity,omitempty" validate:"omitempty,min=0,max=1000"`
	AllowedGrades []string `json:"allowed_grades,omitempty" validate:"omitempty,min=1,dive,mongodb"`
	Instructor    *string  `json:"instructor,omitempty" validate:"omitempty,max=150"`
	Venue         *string  `json:"venue,omitempty" validate:"omitempty,max=150"`
	TimeLabel     *string  `json:"time,omitempty" validate:"omitempty,max=50"`
}

// Unlimited reports whether the activity has no seat limit.
func (a *Activity) Unlimited() bool {
	return a.Capacity == 0
}

// AllowsGrade reports whether students of the given grade may book this
// activity.
func (a *Activity) AllowsGrade(gradeID string) bool {
	for _, g := range a.AllowedGrades {
		if g == gradeID {
			return true
		}
	}
	return false
}

// SpotsLeft returns remaining seats given the current booking count.
// Negative results are clamped to zero. Meaningless for unlimited
// activities; callers check Unlimited first.
func (a *Activity) SpotsLeft(booked int64) int {
	left := a.Capacity - int(booked)
	if left < 0 {
		return 0
	}
	return left
}
