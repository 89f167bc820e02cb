package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/remote"
)

var runForm = func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) }

// chooseAsset asks the user which release asset to install.
func chooseAsset(ctx context.Context, r addon.Resolved, candidates []remote.Asset) (remote.Asset, error) {
	opts := make([]huh.Option[int], len(candidates))
	for i, c := range candidates {
		opts[i] = huh.NewOption(c.Name, i)
	}
	choice := 0
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf(messages.UpdateChooseAssetTitleFmt, r.Name())).
				Options(opts...).
				Value(&choice),
		),
	)
	if err := runForm(ctx, form); err != nil {
		return remote.Asset{}, err
	}
	return candidates[choice], nil
}
