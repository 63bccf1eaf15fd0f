package model

import "time"

// Booking commits one student to one activity on one weekday.
// (StudentID, Day) is unique: a student holds at most one booking per
// weekday. Day is always derived from the activity; use NewBooking so
// the two cannot drift.
type Booking struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StudentID  string    `json:"student_id" bson:"student_id" validate:"required,mongodb"`
	ActivityID string    `json:"activity_id" bson:"activity_id" validate:"required,mongodb"`
	Day        Weekday   `json:"day" bson:"day" validate:"required,weekday"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	Attended   bool      `json:"attended" bson:"attended"`
}

// NewBooking builds a booking for the given student and activity with
// the day copied from the activity. This is the only constructor; the
// Day field is never set independently.
func NewBooking(studentID string, activity *Activity) *Booking {
	return &Booking{
		StudentID:  studentID,
		ActivityID: activity.ID,
		Day:        activity.Day,
	}
}

// ModifiableAt reports whether the booking may still be changed or
// removed at the given instant, under the given window.
func (b *Booking) ModifiableAt(now time.Time, window time.Duration) bool {
	return now.Sub(b.CreatedAt) <= window
}
