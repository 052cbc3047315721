// ABOUTME: Login command: password grant or federated Microsoft login
// ABOUTME: Stores the token in the config directory for later commands

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/galaxy-weather/weather-portal/backend/models"
	"github.com/galaxy-weather/weather-portal/backend/services"
	"github.com/galaxy-weather/weather-portal/backend/views"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/loginform"
	"github.com/galaxy-weather/weather-portal/cli/internal/tui/widgets"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername  string
	loginPassword  string
	loginMicrosoft bool
	loginListen    string
	loginWait      time.Duration
)

// promptCredentials asks for missing credentials; replaced in tests
var promptCredentials = func(ctx context.Context, username string) (models.LoginRequest, error) {
	return loginform.New(username).Run(ctx)
}

// openBrowser shows the federated login URL; replaced in tests
var openBrowser = func(w io.Writer, url string) {
	fmt.Fprintf(w, "Open this URL in your browser to continue:\n\n  %s\n\n", url)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the token",
	Long: `Sign in with username and password (password grant), or with --microsoft
through the identity provider. Missing credentials are prompted for when
stdin is a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		var exitCode int
		if loginMicrosoft {
			exitCode = runMicrosoftLogin(ctx, os.Stdout, loginListen, loginWait)
		} else {
			exitCode = runLogin(ctx, os.Stdout, loginUsername, loginPassword, isInteractive())
		}
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginMicrosoft, "microsoft", false, "Sign in with Microsoft through the browser")
	loginCmd.Flags().StringVar(&loginListen, "listen", "127.0.0.1:0", "Loopback address for the Microsoft login callback")
	loginCmd.Flags().DurationVar(&loginWait, "wait", 5*time.Minute, "How long to wait for the Microsoft login callback")
	rootCmd.AddCommand(loginCmd)
}

// isInteractive reports whether stdin is a terminal
func isInteractive() bool {
	return isTerminal(os.Stdin)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// runLogin performs the password grant and returns exit code
func runLogin(ctx context.Context, w io.Writer, username, password string, interactive bool) int {
	auth, err := newAuthService()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}

	creds := models.LoginRequest{Username: username, Password: password}
	if interactive && (username == "" || password == "") {
		creds, err = promptCredentials(ctx, username)
		if errors.Is(err, loginform.ErrCancelled) {
			fmt.Fprintln(w, "Login cancelled.")
			return exitUsage
		}
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return exitRuntime
		}
	}

	resp, err := auth.SignIn(ctx, signInKey, newSessionTokens(), creds)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			fmt.Fprintf(w, "Error: %s\n", services.MsgFillBothFields)
			return exitUsage
		}
		slog.Debug("Sign-in failed", "error", err)
		fmt.Fprintf(w, "Error: %s\n", views.MsgLoginFailed)
		return exitRuntime
	}

	username = creds.Trimmed().Username
	if IsJSONOutput() {
		fmt.Fprintln(w, formatLoginJSON(username, resp))
	} else {
		fmt.Fprintln(w, widgets.StatusText("Signed in as "+username, widgets.StatusOK))
	}
	return exitOK
}

func formatLoginJSON(username string, resp *models.LoginResponse) string {
	output := map[string]interface{}{
		"authenticated": true,
		"username":      username,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}

// runMicrosoftLogin serves a one-shot loopback callback, prints the provider
// URL, and waits for the redirect carrying the token.
func runMicrosoftLogin(ctx context.Context, w io.Writer, listen string, wait time.Duration) int {
	auth, err := newAuthService()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitUsage
	}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		fmt.Fprintf(w, "Error: cannot listen for callback on %s: %v\n", listen, err)
		return exitUsage
	}

	store := newSessionTokens()
	results := make(chan services.CallbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+services.CallbackPath, func(rw http.ResponseWriter, r *http.Request) {
		result := services.HandleCallback(r.Context(), r.URL.Query(), store)
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if result.Outcome == services.CallbackSuccess {
			fmt.Fprintln(rw, "Sesión iniciada. Ya puedes cerrar esta ventana.")
		} else {
			rw.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(rw, views.MsgExternalLoginFailed)
		}
		select {
		case results <- result:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Callback listener failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	callbackURL := "http://" + ln.Addr().String() + services.CallbackPath
	openBrowser(w, auth.MicrosoftLoginURL(callbackURL))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case result := <-results:
		if result.Outcome != services.CallbackSuccess {
			fmt.Fprintf(w, "Error: %s\n", views.MsgExternalLoginFailed)
			return exitRuntime
		}
		fmt.Fprintln(w, widgets.StatusText("Signed in with Microsoft", widgets.StatusOK))
		return exitOK
	case <-timer.C:
		fmt.Fprintln(w, "Error: timed out waiting for the Microsoft login callback")
		return exitRuntime
	case <-ctx.Done():
		fmt.Fprintln(w, "Login cancelled.")
		return exitUsage
	}
}
