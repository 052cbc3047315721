// ABOUTME: Navigation abstraction used by logout and the 401 response interceptor
// ABOUTME: The portal records a redirect per request; the CLI prints a hint

package services

import "sync"

// Well-known client paths
const (
	LoginPath     = "/"
	HomePath      = "/home"
	DashboardPath = "/dashboard"
	CallbackPath  = "/callback"

	// ExternalLoginFailedPath is where a failed federated login lands
	ExternalLoginFailedPath = LoginPath + "?error=external_login_failed"
)

// Navigator moves the user to another view
type Navigator interface {
	// CurrentPath is the path of the view the user is on
	CurrentPath() string
	// Navigate replaces the current view with target
	Navigate(target string)
}

// RecordingNavigator remembers navigation requests instead of performing them.
// The portal uses one per request and turns the first target into a redirect.
type RecordingNavigator struct {
	mu      sync.Mutex
	current string
	targets []string
}

var _ Navigator = (*RecordingNavigator)(nil)

// NewRecordingNavigator starts at path current
func NewRecordingNavigator(current string) *RecordingNavigator {
	return &RecordingNavigator{current: current}
}

func (n *RecordingNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *RecordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	n.current = target
}

// Target returns the first requested navigation, if any
func (n *RecordingNavigator) Target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return "", false
	}
	return n.targets[0], true
}

// Count reports how many navigations were requested
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.targets)
}
