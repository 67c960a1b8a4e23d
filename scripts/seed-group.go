package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const apiBase = "http://localhost:8080/api/v1"

type User struct {
	DisplayName string
	Token       string
	CharacterID string
}

type RegisterResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken string `json:"accessToken"`
}

type Match struct {
	Username  string `json:"username"`
	Character string `json:"character"`
	Weekday   string `json:"weekday"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Spec      string `json:"spec"`
	Keystone  string `json:"keystone"`
}

func call(method, path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	}

	req, _ := http.NewRequest(method, apiBase+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (%d): %s", method, path, resp.StatusCode, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func registerUser(displayName, password string) (*User, error) {
	var result RegisterResponse
	err := call("POST", "/auth/register", "", map[string]string{
		"displayName": displayName,
		"password":    password,
	}, &result)
	if err != nil {
		return nil, err
	}

	var character struct {
		ID string `json:"id"`
	}
	if err := call("POST", "/characters", result.AccessToken, map[string]string{"name": displayName + "_main"}, &character); err != nil {
		return nil, err
	}

	return &User{
		DisplayName: result.User.DisplayName,
		Token:       result.AccessToken,
		CharacterID: character.ID,
	}, nil
}

func submit(u *User, weekdays []string, start, end, spec, keystone string) error {
	return call("POST", "/entries", u.Token, map[string]interface{}{
		"characterId": u.CharacterID,
		"weekdays":    weekdays,
		"startTime":   start,
		"endTime":     end,
		"spec":        spec,
		"keystone":    keystone,
	}, nil)
}

func generateUsername(prefix string) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("%s_%s", prefix, string(random))
}

func main() {
	fmt.Println("Seeding a small group...")

	password := "testpassword123"
	days := []string{"Monday", "Wednesday", "Friday"}
	plans := []struct {
		prefix     string
		start, end string
		spec       string
	}{
		{"healer", "18:00", "20:00", "heal"},
		{"tank", "19:00", "21:00", "tank"},
		{"dps", "19:30", "22:00", "dps"},
	}

	var users []*User
	for _, p := range plans {
		user, err := registerUser(generateUsername(p.prefix), password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register %s: %v\n", p.prefix, err)
			os.Exit(1)
		}
		if err := submit(user, days, p.start, p.end, p.spec, "+10"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to submit for %s: %v\n", user.DisplayName, err)
			os.Exit(1)
		}
		users = append(users, user)
		fmt.Printf("  ✓ %s available %s-%s as %s\n", user.DisplayName, p.start, p.end, p.spec)
	}

	var dash struct {
		Matches []Match `json:"matches"`
	}
	start := time.Now()
	if err := call("GET", "/dashboard", users[0].Token, nil, &dash); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dashboard: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nMatches for %s (%s):\n", users[0].DisplayName, time.Since(start).Round(time.Millisecond))
	for _, m := range dash.Matches {
		fmt.Printf("  %-9s %s-%s  %s / %s (%s, %s)\n", m.Weekday, m.Start, m.End, m.Username, m.Character, m.Spec, m.Keystone)
	}
	fmt.Println("\nPassword for all users:", password)
}
