package richmenu

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

// Bootstrap ensures a rich menu exists on the LINE platform for every
// supported language and fills the registry with their IDs. Menus left
// over from a previous run are matched by name and reused, so repeated
// startups do not accumulate duplicates. After all menus are registered
// the menu of the default language becomes the channel default.
//
// A missing menu artifact would make every later sync fail, so the
// server keeps retrying Bootstrap and stays not-ready until it succeeds.
func Bootstrap(ctx context.Context, api MenuAPI, reg *Registry, defaultLang catalog.Code, imageDir string) error {
	existing, err := api.ListMenus(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap rich menus: %w", err)
	}

	byName := make(map[string]string, len(existing))
	for _, m := range existing {
		byName[m.Name] = m.ID
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, lang := range catalog.Codes() {
		lang := lang

		if id, ok := byName[MenuName(lang)]; ok {
			reg.Set(lang, id)
			slog.Info("reusing existing rich menu",
				slog.String("language", string(lang)),
				slog.String("menu_id", id))
			continue
		}

		g.Go(func() error {
			id, err := createMenu(ctx, api, lang, imageDir)
			if err != nil {
				return err
			}
			reg.Set(lang, id)
			slog.Info("created rich menu",
				slog.String("language", string(lang)),
				slog.String("menu_id", id))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("bootstrap rich menus: %w", err)
	}

	defaultID, ok := reg.Get(defaultLang)
	if !ok {
		return fmt.Errorf("bootstrap rich menus: no menu for default language %s", defaultLang)
	}
	if err := api.SetDefault(ctx, defaultID); err != nil {
		return fmt.Errorf("bootstrap rich menus: %w", err)
	}
	return nil
}

// createMenu registers one menu and uploads its image. A menu without an
// image cannot be linked, so the ID is only returned once both steps
// succeeded.
func createMenu(ctx context.Context, api MenuAPI, lang catalog.Code, imageDir string) (string, error) {
	id, err := api.CreateMenu(ctx, DefinitionFor(lang))
	if err != nil {
		return "", err
	}

	img, err := MenuImage(imageDir, lang)
	if err != nil {
		return "", err
	}
	if err := api.UploadImage(ctx, id, img); err != nil {
		return "", fmt.Errorf("menu %s: %w", id, err)
	}
	return id, nil
}
