// Package testutil holds helpers for tests that run against the Firebase
// emulator suite started by `firebase emulators:start`.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

// ProjectID is the demo project the emulators are started with. Demo
// projects never reach production services.
const ProjectID = "demo-test-project"

// FakeAPIKey is accepted by the Auth emulator for Identity Toolkit calls.
const FakeAPIKey = "fake-api-key" //nolint:gosec // emulator only

// Emulator is one service of the local emulator suite.
type Emulator struct {
	Name    string
	Host    string
	EnvVar  string
	dataURL string
}

var (
	// Auth backs account sign-in and ID token verification.
	Auth = Emulator{
		Name:    "Auth",
		Host:    "127.0.0.1:7110",
		EnvVar:  "FIREBASE_AUTH_EMULATOR_HOST",
		dataURL: "/emulator/v1/projects/%s/accounts",
	}
	// Firestore backs the profile and feedback stores.
	Firestore = Emulator{
		Name:    "Firestore",
		Host:    "127.0.0.1:7130",
		EnvVar:  "FIRESTORE_EMULATOR_HOST",
		dataURL: "/emulator/v1/projects/%s/databases/(default)/documents",
	}
)

// Available reports whether the emulator accepts TCP connections.
func (e Emulator) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", e.Host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Require skips t when the emulator is down and otherwise points the
// Firebase SDKs at it for the duration of the test.
func (e Emulator) Require(t *testing.T) {
	t.Helper()
	if !e.Available() {
		t.Skipf("%s emulator not available", e.Name)
	}
	t.Setenv(e.EnvVar, e.Host)
}

// Reset wipes all data the emulator holds for ProjectID.
func (e Emulator) Reset(t *testing.T) {
	t.Helper()
	url := "http://" + e.Host + fmt.Sprintf(e.dataURL, ProjectID)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("reset %s: %v", e.Name, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("reset %s: %v", e.Name, err)
	}
	_ = resp.Body.Close()
}

// SkipIfFirestoreUnavailable skips the test if the Firestore emulator is not running.
func SkipIfFirestoreUnavailable(t *testing.T) {
	t.Helper()
	if !Firestore.Available() {
		t.Skip("Firestore emulator not available")
	}
}

// SkipIfAuthUnavailable skips the test if the Auth emulator is not running.
func SkipIfAuthUnavailable(t *testing.T) {
	t.Helper()
	if !Auth.Available() {
		t.Skip("Auth emulator not available")
	}
}

// SetupEmulator points the Firebase SDKs at both emulators.
func SetupEmulator(t *testing.T) {
	t.Helper()
	t.Setenv(Auth.EnvVar, Auth.Host)
	t.Setenv(Firestore.EnvVar, Firestore.Host)
}

// ClearAccounts removes all users from the Auth emulator.
func ClearAccounts(t *testing.T) {
	t.Helper()
	Auth.Reset(t)
}

// ClearFirestore removes all documents from the Firestore emulator.
func ClearFirestore(t *testing.T) {
	t.Helper()
	Firestore.Reset(t)
}

// IdentityToolkitURL is the emulator's Identity Toolkit base URL.
func IdentityToolkitURL() string {
	return "http://" + Auth.Host + "/identitytoolkit.googleapis.com/v1"
}

// CreateTestUser registers an email/password account in the Auth emulator
// and returns its uid.
func CreateTestUser(t *testing.T, email, password string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		t.Fatalf("encode sign-up: %v", err)
	}

	url := IdentityToolkitURL() + "/accounts:signUp?key=" + FakeAPIKey
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create sign-up request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign up %s: status %d", email, resp.StatusCode)
	}

	var out struct {
		LocalID string `json:"localId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode sign-up: %v", err)
	}
	return out.LocalID
}
