package flows

// Deps groups flow dependency sets. The root client builds this once and
// delegates every operation to the matching flow implementation.
type Deps struct {
	Login     LoginDeps
	Restore   RestoreDeps
	Logout    LogoutDeps
	Refresh   RefreshDeps
	Send      SendDeps
	Favorites FavoritesDeps
}
