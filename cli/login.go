// ABOUTME: Google login CLI command
// ABOUTME: Runs the OAuth consent flow through a loopback callback server and saves the token
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const callbackPath = "/oauth/callback"

// LoginCommand handles OAuth setup
func (a *App) LoginCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.Out)
	noBrowser := fs.Bool("no-browser", false, "Print the consent URL without opening a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	auth, err := a.authenticator()
	if err != nil {
		return fmt.Errorf("failed to get OAuth config: %w", err)
	}

	// Random loopback port, registered as the redirect target for this login.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}
	redirectURL := fmt.Sprintf("http://%s%s", listener.Addr(), callbackPath)

	state := uuid.NewString()
	authURL, verifier := auth.AuthCodeURL(redirectURL, state)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	report := func(err error) {
		select {
		case errChan <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			report(fmt.Errorf("callback state mismatch"))
			return
		}
		if reason := query.Get("error"); reason != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			report(fmt.Errorf("authorization denied: %s", reason))
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			report(fmt.Errorf("no authorization code received"))
			return
		}

		_, _ = fmt.Fprint(w, "Authorization successful! You can close this window.")
		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			report(err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	a.printf("Opening browser for Google OAuth...\n")
	a.printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	if !*noBrowser && a.OpenBrowser != nil {
		if err := a.OpenBrowser(authURL); err != nil {
			a.Logger.Debug("failed to open browser", "err", err)
		}
	}

	// Wait for callback or error
	select {
	case code := <-codeChan:
		if _, err := auth.Exchange(ctx, redirectURL, code, verifier); err != nil {
			return err
		}
	case err := <-errChan:
		return fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}

	a.printf("\n")
	a.ok("Authenticated successfully")
	a.ok("Token saved to %s", auth.Store().Location())
	a.printf("\nReady to sync! Run 'gcalsync sync_contacts' to create birthday events.\n")
	return nil
}
