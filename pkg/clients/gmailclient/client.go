package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/utils"
)

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
	logger  *zap.Logger

	userID  string
	sender  string
	siteURL string

	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a new Gmail client using an existing OAuth token
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token, emailCfg config.EmailConfig, logger *zap.Logger) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	return NewClientWithOptions(ctx, emailCfg, logger, option.WithHTTPClient(httpClient))
}

// NewClientWithOptions creates a Gmail client from raw API client options
func NewClientWithOptions(ctx context.Context, emailCfg config.EmailConfig, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	userID := emailCfg.GmailUserID
	if userID == "" {
		userID = "me"
	}

	return &Client{
		service:  service,
		logger:   logger,
		userID:   userID,
		sender:   emailCfg.GmailSender,
		siteURL:  emailCfg.SiteURL,
		interval: EmailInterval,
	}, nil
}
