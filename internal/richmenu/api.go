package richmenu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	apperrors "github.com/imigo-bot/imigo-linebot-go/internal/errors"
)

// MenuInfo identifies a rich menu that already exists on the LINE
// platform.
type MenuInfo struct {
	ID   string
	Name string
}

// MenuAPI abstracts the LINE rich menu endpoints so bootstrap and sync
// can be tested against a fake.
type MenuAPI interface {
	ListMenus(ctx context.Context) ([]MenuInfo, error)
	CreateMenu(ctx context.Context, def Definition) (string, error)
	UploadImage(ctx context.Context, menuID string, png []byte) error
	SetDefault(ctx context.Context, menuID string) error
	LinkUser(ctx context.Context, userID, menuID string) error
	UnlinkUser(ctx context.Context, userID string) error
}

// blobEndpoint is the LINE data API host used for rich menu image
// uploads, which go to a different host than the JSON endpoints.
const blobEndpoint = "https://api-data.line.me"

// LineMenuAPI implements MenuAPI against the LINE Messaging API.
type LineMenuAPI struct {
	client       *messaging_api.MessagingApiAPI
	channelToken string
	httpClient   *http.Client
	blobEndpoint string
}

var _ MenuAPI = (*LineMenuAPI)(nil)

// NewLineMenuAPI wraps an existing messaging client. The channel token
// is needed separately because image uploads bypass the SDK client.
func NewLineMenuAPI(client *messaging_api.MessagingApiAPI, channelToken string) *LineMenuAPI {
	return &LineMenuAPI{
		client:       client,
		channelToken: channelToken,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		blobEndpoint: blobEndpoint,
	}
}

// ListMenus returns every rich menu registered for the channel.
func (a *LineMenuAPI) ListMenus(_ context.Context) ([]MenuInfo, error) {
	resp, err := a.client.GetRichMenuList()
	if err != nil {
		return nil, fmt.Errorf("list rich menus: %w", err)
	}

	menus := make([]MenuInfo, 0, len(resp.Richmenus))
	for _, m := range resp.Richmenus {
		menus = append(menus, MenuInfo{ID: m.RichMenuId, Name: m.Name})
	}
	return menus, nil
}

// CreateMenu registers a new rich menu and returns its platform ID. The
// menu is not usable until an image has been uploaded for it.
func (a *LineMenuAPI) CreateMenu(_ context.Context, def Definition) (string, error) {
	areas := make([]messaging_api.RichMenuArea, 0, len(def.Buttons))
	for _, b := range def.Buttons {
		areas = append(areas, messaging_api.RichMenuArea{
			Bounds: &messaging_api.RichMenuBounds{
				X:      int64(b.X),
				Y:      int64(b.Y),
				Width:  int64(b.Width),
				Height: int64(b.Height),
			},
			Action: &messaging_api.PostbackAction{
				Label: b.Label,
				Data:  b.Data,
			},
		})
	}

	resp, err := a.client.CreateRichMenu(&messaging_api.RichMenuRequest{
		Size: &messaging_api.RichMenuSize{
			Width:  menuWidth,
			Height: menuHeight,
		},
		Selected:    true,
		Name:        def.Name,
		ChatBarText: def.ChatBarText,
		Areas:       areas,
	})
	if err != nil {
		return "", fmt.Errorf("create rich menu %q: %w", def.Name, err)
	}
	return resp.RichMenuId, nil
}

// UploadImage attaches a PNG image to a rich menu. The upload goes to
// the LINE data host directly since the messaging client does not cover
// blob endpoints.
func (a *LineMenuAPI) UploadImage(ctx context.Context, menuID string, png []byte) error {
	url := fmt.Sprintf("%s/v2/bot/richmenu/%s/content", a.blobEndpoint, menuID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(png))
	if err != nil {
		return fmt.Errorf("build image upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.channelToken)
	req.Header.Set("Content-Type", "image/png")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload rich menu image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewUpstreamError("line", resp.StatusCode,
			fmt.Errorf("upload rich menu image: %s", string(body)))
	}
	return nil
}

// SetDefault makes the menu the channel-wide default shown to users
// without an individual link.
func (a *LineMenuAPI) SetDefault(_ context.Context, menuID string) error {
	if _, err := a.client.SetDefaultRichMenu(menuID); err != nil {
		return fmt.Errorf("set default rich menu: %w", err)
	}
	return nil
}

// LinkUser links a rich menu to an individual user.
func (a *LineMenuAPI) LinkUser(_ context.Context, userID, menuID string) error {
	if _, err := a.client.LinkRichMenuIdToUser(userID, menuID); err != nil {
		return fmt.Errorf("link rich menu to user: %w", err)
	}
	return nil
}

// UnlinkUser removes the individual rich menu link from a user, causing
// the channel default to apply again.
func (a *LineMenuAPI) UnlinkUser(_ context.Context, userID string) error {
	if _, err := a.client.UnlinkRichMenuIdFromUser(userID); err != nil {
		return fmt.Errorf("unlink rich menu from user: %w", err)
	}
	return nil
}
