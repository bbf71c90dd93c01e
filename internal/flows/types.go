// Package flows holds the orchestration logic for every client operation,
// free of root-package dependencies. Each flow is a Run* function fed by a
// Deps struct of function fields; the root client wires real backend and
// storage calls into those fields once, and tests substitute fakes.
package flows

// TokenPair is an access/refresh credential pair as issued by the backend.
// The refresh token is single-use: the backend invalidates it on a
// successful exchange and issues a new pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserInfo is the backend's view of the authenticated user.
type UserInfo struct {
	ID    string
	Phone string
	Name  string
	Role  string
}
