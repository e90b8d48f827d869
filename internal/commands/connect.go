package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

func init() {
	Register(&ConnectCmd{})
}

// ConnectCmd implements the connect command. It runs the OAuth
// authorization-code flow against the gist host and stores the access
// token as the gist token.
type ConnectCmd struct {
	gistID string
}

func (c *ConnectCmd) Name() string      { return "connect" }
func (c *ConnectCmd) Aliases() []string { return nil }
func (c *ConnectCmd) Synopsis() string  { return "Obtain a gist token through OAuth" }
func (c *ConnectCmd) Usage() string     { return "gtodo connect [common flags] [--gist-id <id>]" }
func (c *ConnectCmd) NeedsStore() bool  { return true }
func (c *ConnectCmd) NeedsLogin() bool  { return false }
func (c *ConnectCmd) AutoSync() bool    { return false }

func (c *ConnectCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.gistID, "gist-id", "", "")
}

func (c *ConnectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth client not configured in %s\n\n", cfg.FilePath())
		fmt.Fprintln(errOut, "To connect the gist backup through OAuth you need an application:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Create an OAuth application on the gist host")
		fmt.Fprintf(errOut, "   with callback URL http://localhost:%d/callback\n", oauthStartPort)
		fmt.Fprintln(errOut, "2. Grant it the gists scope")
		fmt.Fprintln(errOut, "3. Add to config.yaml:")
		fmt.Fprintln(errOut, "   oauth:")
		fmt.Fprintln(errOut, "     client_id: <id>")
		fmt.Fprintln(errOut, "     client_secret: <secret>")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'gtodo connect' again, or set a token by hand:")
		fmt.Fprintln(errOut, "   gtodo settings --token <token> --gist-id <id>")
		return exitcode.AuthError
	}

	oauthConfig := oauthConfigFrom(cfg)

	// Find available port
	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintf(errOut, "error: could not bind to local port for OAuth callback\n")
		return exitcode.AuthError
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	// Generate PKCE verifier
	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state", oauth2.S256ChallengeOption(verifier))

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	code, err := awaitCallback(ctx, listener)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	// Exchange code for token
	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	patch := service.SettingsPatch{GistToken: &token.AccessToken}
	if c.gistID != "" {
		patch.GistID = &c.gistID
	}
	if err := svc.UpdateSettings(patch); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// oauthConfigFrom builds the OAuth client from config.yaml.
func oauthConfigFrom(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		Scopes:       cfg.OAuth.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.OAuth.AuthURL,
			TokenURL:  cfg.OAuth.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// awaitCallback serves /callback on listener until a code arrives.
func awaitCallback(ctx context.Context, listener net.Listener) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("no code in callback"):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Connected</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-time.After(oauthCallbackTimeout):
		return "", fmt.Errorf("oauth callback timed out")
	case <-ctx.Done():
		return "", fmt.Errorf("cancelled")
	}
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}
