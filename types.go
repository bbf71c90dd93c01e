package dukani

import (
	"time"

	"github.com/dukani/dukani-go/credstore"
	"github.com/dukani/dukani-go/internal/flows"
	"github.com/dukani/dukani-go/prefcache"
)

// CredentialPair is an access/refresh token pair. Both are bearer secrets;
// the access token is short-lived, the refresh token single-use per
// exchange.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// User is the authenticated storefront user.
type User struct {
	ID    string
	Phone string
	Name  string
	Role  string
}

// Session is a read-only snapshot of the client's authentication state.
// The Client owns the live session exclusively; callers only read these
// snapshots.
type Session struct {
	Authenticated bool
	User          User
	Role          string
	AccessToken   string

	// PendingPhone and CodeExpiresAt describe the pending-verification
	// state between RequestCode and VerifyCode. They carry no credential
	// material.
	PendingPhone  string
	CodeExpiresAt time.Time
}

// LoginResult is returned by [Client.VerifyCode].
type LoginResult struct {
	Session   Session
	IsNewUser bool
}

// CredentialStore is the secure persistence boundary for bearer secrets.
type CredentialStore = credstore.Store

// PreferenceCache is the durable local cache behind the reconciliation
// engine.
type PreferenceCache = prefcache.Cache

func userFromInfo(info flows.UserInfo) User {
	return User{ID: info.ID, Phone: info.Phone, Name: info.Name, Role: info.Role}
}
