package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/theakshaypant/dayplan/internal/adapter/outlook"
)

const (
	redirectPort = "8085"
	redirectURL  = "http://localhost:" + redirectPort + "/callback"
	authTimeout  = 5 * time.Minute
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with your calendar provider",
	Long: `Sign in to the calendar behind the google or outlook source.

A browser window opens for the provider's consent screen; the token it
hands back is written to token_file and reused by later runs.

The provider is the configured source (source: google|outlook).`,
	RunE:              runAuth,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil }, // Skip source init
}

func init() {
	rootCmd.AddCommand(authCmd)
}

// oauthProvider is what differs between the calendar sign-in flows.
type oauthProvider struct {
	source string
	label  string
	config *oauth2.Config
	opts   []oauth2.AuthCodeOption
}

func runAuth(cmd *cobra.Command, args []string) error {
	p, err := authProvider(viper.GetString("source"))
	if err != nil {
		return err
	}

	tokenFile := expandPath(viper.GetString("token_file"))
	tok, err := authorize(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	if err := saveToken(tokenFile, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Println("\n✅ Signed in to", p.label)
	fmt.Printf("📁 Token saved to %s\n", tokenFile)
	fmt.Printf("\nPlan from it with: dayplan ui --source %s\n", p.source)
	return nil
}

// authProvider builds the OAuth settings for a calendar source.
func authProvider(source string) (oauthProvider, error) {
	switch source {
	case "google":
		credsFile := expandPath(viper.GetString("credentials_file"))
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return oauthProvider{}, fmt.Errorf("unable to read credentials file: %w\n\nDownload OAuth client credentials (Desktop app) from the Google Cloud console", err)
		}
		config, err := google.ConfigFromJSON(b, calendar.CalendarReadonlyScope)
		if err != nil {
			return oauthProvider{}, fmt.Errorf("unable to parse credentials: %w", err)
		}
		config.RedirectURL = redirectURL
		return oauthProvider{
			source: source,
			label:  "Google Calendar",
			config: config,
			opts:   []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce},
		}, nil

	case "outlook":
		clientID := viper.GetString("client_id")
		if clientID == "" {
			return oauthProvider{}, fmt.Errorf("client_id not configured\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
		}
		return oauthProvider{
			source: source,
			label:  "Outlook",
			config: outlook.OAuthConfig(clientID, viper.GetString("tenant_id"), redirectURL),
			opts:   []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "consent")},
		}, nil

	default:
		return oauthProvider{}, fmt.Errorf("the %q source does not need authentication (auth supports: google, outlook)", source)
	}
}

// callbackResult is what the redirect handler hands back to authorize.
type callbackResult struct {
	code string
	err  error
}

// callbackHandler accepts the provider's redirect, checks the state and
// forwards the authorization code.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "Authorization failed: state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			reason := q.Get("error")
			http.Error(w, "Authorization failed: "+reason, http.StatusBadRequest)
			deliver(results, callbackResult{err: fmt.Errorf("authorization failed: %s", reason)})
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, signedInPage)
		deliver(results, callbackResult{code: code})
	}
}

// deliver keeps the first result; a repeated redirect must not block the
// handler, or shutting the server down would wait on it.
func deliver(results chan<- callbackResult, r callbackResult) {
	select {
	case results <- r:
	default:
	}
}

const signedInPage = `<!DOCTYPE html>
<html>
<head>
<title>dayplan: signed in</title>
<style>
body { font-family: -apple-system, sans-serif; display: grid; place-items: center;
       height: 100vh; margin: 0; background: #1a1a1a; color: #fff; }
main { background: #2d2d2d; padding: 40px; border-radius: 12px; text-align: center; }
h1 { color: #4ade80; }
p { color: #a1a1aa; }
</style>
</head>
<body>
<main>
<h1>Signed in</h1>
<p>Your calendar is connected. Return to the terminal to keep planning.</p>
</main>
</body>
</html>`

// authorize runs the browser consent flow against a local redirect server
// and exchanges the code for a token.
func authorize(ctx context.Context, p oauthProvider) (*oauth2.Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, results))
	server := &http.Server{Addr: ":" + redirectPort, Handler: mux}
	defer server.Shutdown(context.Background())

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			deliver(results, callbackResult{err: err})
		}
	}()

	authURL := p.config.AuthCodeURL(state, p.opts...)
	fmt.Printf("🔐 Opening browser to sign in to %s...\n\n", p.label)
	if err := openBrowser(authURL); err != nil {
		fmt.Println("⚠️  Couldn't open browser automatically.")
		fmt.Println("   Please open this URL manually:")
		fmt.Println(authURL)
	}
	fmt.Println("⏳ Waiting for authorization...")

	var res callbackResult
	select {
	case res = <-results:
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("timeout waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := p.config.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tok, nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
