package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/groupbuilder/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// CharacterBuilder creates test characters
type CharacterBuilder struct {
	owner *domain.User
	name  string
}

// NewCharacterBuilder creates a new CharacterBuilder with default values
func NewCharacterBuilder() *CharacterBuilder {
	return &CharacterBuilder{
		name: fmt.Sprintf("char_%s", uuid.New().String()[:6]),
	}
}

// WithOwner sets the owning user
func (b *CharacterBuilder) WithOwner(user *domain.User) *CharacterBuilder {
	b.owner = user
	return b
}

// WithName sets the character name
func (b *CharacterBuilder) WithName(name string) *CharacterBuilder {
	b.name = name
	return b
}

// Build creates the character in the database, creating an owner if none was set
func (b *CharacterBuilder) Build(t *testing.T, db *gorm.DB) *domain.Character {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	character := &domain.Character{
		ID:        uuid.New(),
		UserID:    b.owner.ID,
		Name:      b.name,
		CreatedAt: time.Now(),
	}

	if err := db.Omit("User").Create(character).Error; err != nil {
		t.Fatalf("failed to create character: %v", err)
	}

	return character
}

// EntryBuilder creates availability entries directly in the database,
// bypassing the reconciler
type EntryBuilder struct {
	character   *domain.Character
	weekday     domain.Weekday
	start       string
	end         string
	spec        string
	keystone    string
	createdDate string
}

// NewEntryBuilder creates a new EntryBuilder with default values
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		weekday:     domain.Monday,
		start:       "18:00",
		end:         "20:00",
		spec:        "dps",
		keystone:    "+10",
		createdDate: "2024-01-01",
	}
}

// ForCharacter sets the character (and its owner) the entry belongs to
func (b *EntryBuilder) ForCharacter(character *domain.Character) *EntryBuilder {
	b.character = character
	return b
}

// On sets the weekday
func (b *EntryBuilder) On(weekday domain.Weekday) *EntryBuilder {
	b.weekday = weekday
	return b
}

// Between sets the time window
func (b *EntryBuilder) Between(start, end string) *EntryBuilder {
	b.start = start
	b.end = end
	return b
}

// WithSpec sets the spec
func (b *EntryBuilder) WithSpec(spec string) *EntryBuilder {
	b.spec = spec
	return b
}

// WithKeystone sets the keystone
func (b *EntryBuilder) WithKeystone(keystone string) *EntryBuilder {
	b.keystone = keystone
	return b
}

// CreatedOn sets the created date (YYYY-MM-DD)
func (b *EntryBuilder) CreatedOn(date string) *EntryBuilder {
	b.createdDate = date
	return b
}

// Build creates the entry in the database, creating a character if none was set
func (b *EntryBuilder) Build(t *testing.T, db *gorm.DB) *domain.Entry {
	t.Helper()

	if b.character == nil {
		b.character = NewCharacterBuilder().Build(t, db)
	}

	created, err := domain.ParseDate(b.createdDate)
	if err != nil {
		t.Fatalf("bad created date: %v", err)
	}

	entry := &domain.Entry{
		ID:          uuid.New(),
		UserID:      b.character.UserID,
		CharacterID: b.character.ID,
		Spec:        b.spec,
		Weekday:     b.weekday,
		Keystone:    b.keystone,
		StartTime:   b.start,
		EndTime:     b.end,
		CreatedDate: datatypes.Date(created),
	}

	if err := db.Omit("User", "Character").Create(entry).Error; err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}

	return entry
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
