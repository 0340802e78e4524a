package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"worktime-bot/internal/models"
	"worktime-bot/internal/report"
	"worktime-bot/internal/repository"
	"worktime-bot/pkg/holidays"
	"worktime-bot/pkg/odoo"
	"worktime-bot/pkg/secret"
)

type UserService struct {
	repo          repository.UserRepository
	box           *secret.Box
	defaultRegion string
	logger        *logrus.Logger
}

// NewUserService creates the service. box may be nil, in which case
// credentials cannot be stored.
func NewUserService(repo repository.UserRepository, box *secret.Box, defaultRegion string) *UserService {
	return &UserService{
		repo:          repo,
		box:           box,
		defaultRegion: strings.ToUpper(defaultRegion),
		logger:        newLogger(),
	}
}

// Register returns the existing user for chatID or creates a client user.
// The bool reports whether a new user was created.
func (s *UserService) Register(chatID int64, username, firstName, lastName string) (*models.User, bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, false, nil
	}

	if firstName == "" {
		firstName = username
	}
	user = &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleClient,
		Region:    s.defaultRegion,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"region":  user.Region,
	}).Info("User registered")
	return user, true, nil
}

func (s *UserService) GetUser(chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetAllUsers() ([]*models.User, error) {
	return s.repo.GetAll()
}

func (s *UserService) GetStats() (int, int, error) {
	return s.repo.GetStats()
}

func (s *UserService) IsAdmin(chatID int64) (bool, error) {
	user, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}

// InitializeAdmin promotes or creates the configured admin.
func (s *UserService) InitializeAdmin(adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.repo.UpdateRole(adminChatID, models.RoleAdmin)
	}

	return s.repo.Create(&models.User{
		ChatID:    adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
		Region:    s.defaultRegion,
	})
}

// UpdateRole changes the role of targetChatID; only admins may do this.
func (s *UserService) UpdateRole(adminChatID, targetChatID int64, role models.Role) error {
	isAdmin, err := s.IsAdmin(adminChatID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrAccessDenied
	}
	if _, err := s.GetUser(targetChatID); err != nil {
		return err
	}
	return s.repo.UpdateRole(targetChatID, role)
}

// SetRegion stores the state code whose holidays apply to the user.
func (s *UserService) SetRegion(chatID int64, region string) error {
	region = strings.ToUpper(strings.TrimSpace(region))
	if !holidays.ValidRegion(region) {
		return fmt.Errorf("%w %q, use one of %s", ErrInvalidRegion, region, strings.Join(holidays.RegionCodes(), ", "))
	}
	if err := s.repo.UpdateRegion(chatID, region); err != nil {
		return s.mapNotFound(err)
	}
	return nil
}

// SetCarryOver stores the balance carried in from before tracking started.
func (s *UserService) SetCarryOver(chatID int64, value string) (decimal.Decimal, error) {
	hours, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(value), ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number of hours", ErrInvalidArgument, value)
	}
	if err := s.repo.UpdateCarryOver(chatID, hours); err != nil {
		return decimal.Zero, s.mapNotFound(err)
	}
	return hours, nil
}

// SetCredentials validates and seals the Odoo credentials.
func (s *UserService) SetCredentials(chatID int64, creds odoo.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if s.box == nil {
		return fmt.Errorf("%w: CREDENTIALS_KEY is not set", ErrNotConfigured)
	}

	session, err := s.box.Seal(creds.SessionID)
	if err != nil {
		return err
	}
	csrf, err := s.box.Seal(creds.CSRFToken)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateCredentials(chatID, session, csrf, creds.UID); err != nil {
		return s.mapNotFound(err)
	}

	s.logger.WithField("chat_id", chatID).Info("Odoo credentials stored")
	return nil
}

// Credentials opens the stored credentials of user.
func (s *UserService) Credentials(user *models.User) (odoo.Credentials, error) {
	if !user.HasCredentials() {
		return odoo.Credentials{}, ErrNoCredentials
	}
	if s.box == nil {
		return odoo.Credentials{}, fmt.Errorf("%w: CREDENTIALS_KEY is not set", ErrNotConfigured)
	}
	session, err := s.box.Open(user.OdooSession)
	if err != nil {
		return odoo.Credentials{}, fmt.Errorf("open session id: %w", err)
	}
	csrf, err := s.box.Open(user.OdooCSRF)
	if err != nil {
		return odoo.Credentials{}, fmt.Errorf("open csrf token: %w", err)
	}
	return odoo.Credentials{SessionID: session, CSRFToken: csrf, UID: user.OdooUID}, nil
}

func (s *UserService) ClearCredentials(chatID int64) error {
	return s.mapNotFound(s.repo.UpdateCredentials(chatID, "", "", ""))
}

func (s *UserService) DeleteUser(chatID int64) error {
	return s.mapNotFound(s.repo.Delete(chatID))
}

func (s *UserService) mapNotFound(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *UserService) FormatUserInfo(user *models.User) string {
	var lines []string

	lines = append(lines, "👤 Profile")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 Chat ID: %d", user.ChatID))
	if user.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Username: @%s", user.Username))
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	lines = append(lines, fmt.Sprintf("👨‍💼 Name: %s", name))

	regionName, _ := holidays.RegionName(user.Region)
	lines = append(lines, fmt.Sprintf("📍 Region: %s (%s)", user.Region, regionName))
	lines = append(lines, fmt.Sprintf("➕ Carry-over: %s", report.FormatSigned(user.CarryOver)))

	if user.HasCredentials() {
		lines = append(lines, "🔑 Odoo credentials: set")
	} else {
		lines = append(lines, "🔑 Odoo credentials: not set (/credentials)")
	}

	roleEmoji := "👤"
	if user.IsAdmin() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Role: %s", roleEmoji, string(user.Role)))

	return strings.Join(lines, "\n")
}

func (s *UserService) FormatAllUsers() (string, error) {
	users, err := s.GetAllUsers()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "📭 No users yet.", nil
	}

	var lines []string
	lines = append(lines, "📋 All users:", "")
	for i, user := range users {
		roleEmoji := "👤"
		if user.IsAdmin() {
			roleEmoji = "👑"
		}
		info := fmt.Sprintf("%d. %s %s", i+1, roleEmoji, strings.TrimSpace(user.FirstName+" "+user.LastName))
		if user.Username != "" {
			info += fmt.Sprintf(" (@%s)", user.Username)
		}
		info += fmt.Sprintf(" - ID: %d, %s", user.ChatID, user.Region)
		lines = append(lines, info)
	}

	total, admins, _ := s.GetStats()
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("📊 Users: %d", total))
	lines = append(lines, fmt.Sprintf("👑 Admins: %d", admins))

	return strings.Join(lines, "\n"), nil
}
