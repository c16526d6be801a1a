package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyScore is one entry of the weekly productivity series.
type DailyScore struct {
	Day   string `json:"day" bson:"day"`
	Score int    `json:"score" bson:"score"`
}

// UserStats is the denormalized statistics snapshot stored on the user
// document. It is always recomputed from the user's full task set and
// written back wholesale, never edited field by field.
type UserStats struct {
	TotalTasks         int          `json:"totalTasks" bson:"totalTasks"`
	CompletedTasks     int          `json:"completedTasks" bson:"completedTasks"`
	TaskCompletionRate float64      `json:"taskCompletionRate" bson:"taskCompletionRate"`
	ProductivityScore  int          `json:"productivityScore" bson:"productivityScore"`
	StreakDays         int          `json:"streakDays" bson:"streakDays"`
	WeeklyProductivity []DailyScore `json:"weeklyProductivity" bson:"weeklyProductivity"`
}

type User struct {
	ID                       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username                 string             `json:"username" bson:"username"`
	Email                    string             `json:"email" bson:"email"`
	Password                 string             `json:"-" bson:"password"`
	IsEmailVerified          bool               `json:"isEmailVerified" bson:"isEmailVerified"`
	VerificationToken        string             `json:"-" bson:"verificationToken,omitempty"`
	VerificationTokenExpires time.Time          `json:"-" bson:"verificationTokenExpires,omitempty"`
	ResetPasswordToken       string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires     time.Time          `json:"-" bson:"resetPasswordExpires,omitempty"`
	RefreshToken             string             `json:"-" bson:"refreshToken,omitempty"`
	AvatarURL                string             `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	Stats                    UserStats          `json:"stats" bson:",inline"`
}
