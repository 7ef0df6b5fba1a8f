package outlook

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	appLog "github.com/theakshaypant/dayplan/internal/log"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// tokenCredential bridges our saved OAuth2 token into the Azure SDK's
// TokenCredential interface, allowing the Microsoft Graph SDK to
// authenticate requests.
type tokenCredential struct {
	adapter *OutlookAdapter
}

func (c *tokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.adapter.accessToken(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	c.adapter.tokenMu.Lock()
	expiry := c.adapter.token.Expiry
	c.adapter.tokenMu.Unlock()
	return azcore.AccessToken{
		Token:     tok,
		ExpiresOn: expiry,
	}, nil
}

// OutlookAdapter reads a Microsoft Outlook / Office 365 calendar through
// the Microsoft Graph SDK and turns it into itinerary lines.
type OutlookAdapter struct {
	id        string
	name      string
	clientID  string
	tenantID  string
	tokenFile string
	calendars map[string]string
	filter    []string

	token   *oauth2.Token
	tokenMu sync.Mutex
	client  *msgraphsdk.GraphServiceClient
}

func NewOutlookAdapter(id, name, clientID, tenantID, tokenFile string) *OutlookAdapter {
	if tenantID == "" {
		tenantID = "common"
	}
	return &OutlookAdapter{
		id:        id,
		name:      name,
		clientID:  clientID,
		tenantID:  tenantID,
		tokenFile: tokenFile,
		calendars: make(map[string]string),
	}
}

func (o *OutlookAdapter) ID() string   { return o.id }
func (o *OutlookAdapter) Name() string { return o.name }

// Scopes are the Graph permissions dayplan asks for.
var Scopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"https://graph.microsoft.com/User.Read",
	"offline_access",
}

// OAuthConfig returns the OAuth2 configuration for the Microsoft identity
// platform. The auth command uses it for the initial flow.
func OAuthConfig(clientID, tenantID, redirectURL string) *oauth2.Config {
	if tenantID == "" {
		tenantID = "common"
	}
	return &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    microsoft.AzureADEndpoint(tenantID),
		RedirectURL: redirectURL,
		Scopes:      Scopes,
	}
}

func (o *OutlookAdapter) oauthConfig() *oauth2.Config {
	return OAuthConfig(o.clientID, o.tenantID, "http://localhost:8085/callback")
}

// Login loads the saved OAuth token and initializes the Graph SDK client.
func (o *OutlookAdapter) Login(ctx context.Context) error {
	tok, err := tokenFromFile(o.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'dayplan auth' first): %w", err)
	}

	if tok.AccessToken == "" {
		return fmt.Errorf("token file has no access token: delete %s and run 'dayplan auth' again", o.tokenFile)
	}

	o.token = tok

	cred := &tokenCredential{adapter: o}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{
		"https://graph.microsoft.com/.default",
	})
	if err != nil {
		return fmt.Errorf("create graph client: %w", err)
	}
	o.client = client

	if err := o.loadCalendarList(ctx); err != nil {
		return fmt.Errorf("load calendar list: %w", err)
	}

	return nil
}

// accessToken returns a valid access token, refreshing if expired.
func (o *OutlookAdapter) accessToken(ctx context.Context) (string, error) {
	o.tokenMu.Lock()
	defer o.tokenMu.Unlock()

	if o.token.Valid() {
		return o.token.AccessToken, nil
	}

	// Expired, refresh it
	src := o.oauthConfig().TokenSource(ctx, o.token)
	newTok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("token expired and refresh failed (delete %s and run 'dayplan auth'): %w", o.tokenFile, err)
	}

	o.token = newTok

	if err := saveToken(o.tokenFile, newTok); err != nil {
		appLog.Error("outlook: persist refreshed token", err, "file", o.tokenFile)
	}

	return newTok.AccessToken, nil
}

// Calendars returns all available calendars (ID → Name).
func (o *OutlookAdapter) Calendars() map[string]string {
	return o.calendars
}

// SetCalendarFilter restricts FetchItinerary to the given calendar IDs.
func (o *OutlookAdapter) SetCalendarFilter(ids []string) {
	o.filter = ids
}

// loadCalendarList fetches all calendars the user has access to.
func (o *OutlookAdapter) loadCalendarList(ctx context.Context) error {
	result, err := o.client.Me().Calendars().Get(ctx, nil)
	if err != nil {
		// The default calendar view still works without the list.
		appLog.Error("outlook: list calendars", err)
		o.calendars["default"] = "Calendar"
		return nil
	}
	for _, cal := range result.GetValue() {
		id := cal.GetId()
		name := cal.GetName()
		if id != nil && name != nil {
			o.calendars[*id] = *name
		}
	}

	return nil
}
