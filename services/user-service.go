package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Rafael-TF/EffiDo/logging"
	"github.com/Rafael-TF/EffiDo/models"
	"github.com/Rafael-TF/EffiDo/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type UserService struct {
	UserCollection *mongo.Collection
	TaskCollection *mongo.Collection
	JWTService     *JWTService
	Mailer         *utils.Mailer

	// verifyGroup collapses concurrent verification requests for the same
	// token into a single database update.
	verifyGroup singleflight.Group
}

func NewUserService(
	userCollection *mongo.Collection,
	taskCollection *mongo.Collection,
	jwtService *JWTService,
	mailer *utils.Mailer,
) *UserService {
	return &UserService{
		UserCollection: userCollection,
		TaskCollection: taskCollection,
		JWTService:     jwtService,
		Mailer:         mailer,
	}
}

// RegisterUser stores a new unverified user and mails the verification link.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) error {
	var existing models.User
	err := s.UserCollection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	}).Decode(&existing)
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check existing user: %v", err)
	}

	if err := utils.ValidatePassword(password); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	verificationToken, err := utils.GenerateSecureToken(20)
	if err != nil {
		return err
	}

	user := models.User{
		Username:                 html.EscapeString(username),
		Email:                    html.EscapeString(email),
		Password:                 string(hashedPassword),
		IsEmailVerified:          false,
		VerificationToken:        verificationToken,
		VerificationTokenExpires: time.Now().Add(24 * time.Hour),
		Stats: models.UserStats{
			WeeklyProductivity: []models.DailyScore{},
		},
	}

	if _, err := s.UserCollection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %v", err)
	}

	if err := s.Mailer.SendVerificationEmail(user.Email, verificationToken); err != nil {
		return fmt.Errorf("failed to send verification email: %v", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: Verification email sent to %s", user.Email)
	return nil
}

// VerifyEmail activates the account behind a verification token and returns
// the user together with a fresh auth token. Concurrent calls with the same
// token share one execution.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (models.User, string, error) {
	type verifyResult struct {
		user      models.User
		authToken string
	}

	v, err, _ := s.verifyGroup.Do(token, func() (interface{}, error) {
		var user models.User
		err := s.UserCollection.FindOne(ctx, bson.M{"verificationToken": token}).Decode(&user)
		if err != nil {
			return nil, ErrInvalidToken
		}

		if !user.VerificationTokenExpires.IsZero() && user.VerificationTokenExpires.Before(time.Now()) {
			return nil, ErrInvalidToken
		}

		_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set":   bson.M{"isEmailVerified": true},
			"$unset": bson.M{"verificationToken": "", "verificationTokenExpires": ""},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to activate user: %v", err)
		}
		user.IsEmailVerified = true

		authToken, err := s.JWTService.GenerateAuthToken(user.ID.Hex())
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %v", err)
		}

		logging.Logger.Infof("Event ID: EMAIL_VERIFIED, Description: Email verified for user %s", user.ID.Hex())
		return verifyResult{user: user, authToken: authToken}, nil
	})
	if err != nil {
		return models.User{}, "", err
	}

	result := v.(verifyResult)
	return result.user, result.authToken, nil
}

// LoginUser authenticates by email and password and returns the user with a
// new access/refresh token pair. Unverified accounts cannot log in.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (models.User, string, string, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return models.User{}, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, "", "", ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return models.User{}, "", "", ErrEmailNotVerified
	}

	accessToken, err := s.JWTService.GenerateAuthToken(user.ID.Hex())
	if err != nil {
		return models.User{}, "", "", fmt.Errorf("failed to generate token: %v", err)
	}

	refreshToken, err := s.JWTService.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		return models.User{}, "", "", fmt.Errorf("failed to generate refresh token: %v", err)
	}

	_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"refreshToken": refreshToken}})
	if err != nil {
		return models.User{}, "", "", fmt.Errorf("failed to store refresh token: %v", err)
	}

	return user, accessToken, refreshToken, nil
}

// RefreshAccessToken exchanges a valid refresh token for a short-lived
// access token. The token must match the one stored on the user record.
func (s *UserService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	userID, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ErrInvalidToken
	}

	var user models.User
	err = s.UserCollection.FindOne(ctx, bson.M{"_id": objectID, "refreshToken": refreshToken}).Decode(&user)
	if err != nil {
		return "", ErrInvalidToken
	}

	return s.JWTService.GenerateShortAccessToken(userID)
}

// Logout invalidates the stored refresh token.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.UserCollection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$unset": bson.M{"refreshToken": ""}})
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %v", err)
	}
	return nil
}

// SendPasswordResetLink generates a reset token, stores its digest with a
// 10-minute expiry and mails the plain token to the user.
func (s *UserService) SendPasswordResetLink(ctx context.Context, email string) error {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return ErrUserNotFound
	}

	resetToken, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}

	_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetPasswordToken":   utils.HashToken(resetToken),
		"resetPasswordExpires": time.Now().Add(10 * time.Minute),
	}})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %v", err)
	}

	if err := s.Mailer.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	return nil
}

// ResetPassword sets a new password for the account matching an unexpired
// reset token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}

	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{
		"resetPasswordToken":   utils.HashToken(token),
		"resetPasswordExpires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(hashedPassword)},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}

	logging.Logger.Infof("Event ID: PASSWORD_RESET, Description: Password reset for user %s", user.ID.Hex())
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}

	user.Password = ""
	return user, nil
}

// UpdateProfile changes username and/or email. Empty fields are left as is.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, username, email string) (models.User, error) {
	set := bson.M{}
	if username != "" {
		set["username"] = html.EscapeString(username)
	}
	if email != "" {
		set["email"] = html.EscapeString(email)
	}

	if len(set) > 0 {
		_, err := s.UserCollection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
		if err != nil {
			return models.User{}, fmt.Errorf("failed to update profile: %v", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

// ChangePassword verifies the current password before storing a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := utils.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %v", err)
	}

	_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": string(hashedPassword)}})
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}

	return nil
}

// DeleteAccount removes the user and every task they own. Tasks go first so
// a failure cannot leave orphaned tasks behind a deleted user.
func (s *UserService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.TaskCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		return fmt.Errorf("failed to delete tasks: %v", err)
	}

	result, err := s.UserCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}

	logging.Logger.Infof("Event ID: ACCOUNT_DELETED, Description: Account %s deleted with task cascade", userID.Hex())
	return nil
}

// SaveAvatar stores the uploaded image on disk under a random name, removes
// the previous file and persists the new URL.
func (s *UserService) SaveAvatar(ctx context.Context, userID primitive.ObjectID, ext string, file io.Reader) (string, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return "", ErrUserNotFound
	}

	avatarDir := os.Getenv("AVATAR_DIR")
	if avatarDir == "" {
		avatarDir = "public/avatars"
	}
	if err := os.MkdirAll(avatarDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create avatar directory: %v", err)
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(avatarDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %v", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to store avatar: %v", err)
	}
	out.Close()

	if user.AvatarURL != "" {
		oldPath := filepath.Join(avatarDir, filepath.Base(user.AvatarURL))
		if _, err := os.Stat(oldPath); err == nil {
			os.Remove(oldPath)
		}
	}

	avatarURL := "/avatars/" + filename
	_, err = s.UserCollection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"avatarUrl": avatarURL}})
	if err != nil {
		return "", fmt.Errorf("failed to update avatar: %v", err)
	}

	return avatarURL, nil
}
