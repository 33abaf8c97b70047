package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
)

// Pools lists the current user's pools.
func (a *App) Pools(ctx context.Context) error {
	a.prepare(ctx)

	pools, err := a.pools.List(ctx, a.userID)
	if err != nil {
		return a.report(ctx, "pools", err)
	}
	if len(pools) == 0 {
		fmt.Fprintln(a.out, "No pools yet. Use 'addpool' to create one.")
		return nil
	}

	units := a.units(ctx)
	for _, p := range pools {
		fmt.Fprintf(a.out, "%s  %-20s %8.1f %-3s  %-7s %s\n",
			p.ID, p.Name, units.FromCubicMetres(p.Volume), units.VolumeLabel(), p.Location, equipmentString(p.Equipment))
	}
	return nil
}

// AddPool prompts for a new pool.
func (a *App) AddPool(ctx context.Context) error {
	a.prepare(ctx)

	var patch models.PoolPatch

	name, err := getSimpleText(a.reader, "Pool name", a.out)
	if err != nil {
		return err
	}
	patch.Name = &name

	if err := a.readPoolDetails(ctx, &patch, false); err != nil {
		return err
	}

	p, err := a.pools.Save(ctx, a.userID, patch)
	if err != nil {
		return a.report(ctx, "addpool", err)
	}
	fmt.Fprintf(a.out, "Pool saved: %s\n", p.ID)
	return nil
}

// EditPool prompts for changes to pool id. Empty answers keep the stored
// value. The pool is first refreshed from the remote store.
func (a *App) EditPool(ctx context.Context, id string) error {
	a.prepare(ctx)

	var err error
	if id == "" {
		if id, err = getSimpleText(a.reader, "Pool id", a.out); err != nil {
			return err
		}
	}

	current, err := a.pools.Refresh(ctx, a.userID, id)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Fprintf(a.out, "No pool with id %s\n", id)
		return nil
	}
	if err != nil {
		return a.report(ctx, "editpool", err)
	}

	patch := models.PoolPatch{ID: id}
	name, err := getSimpleText(a.reader, fmt.Sprintf("Pool name [%s]", current.Name), a.out)
	if err != nil {
		return err
	}
	if name != "" {
		patch.Name = &name
	}

	if err := a.readPoolDetails(ctx, &patch, true); err != nil {
		return err
	}

	p, err := a.pools.Save(ctx, a.userID, patch)
	if err != nil {
		return a.report(ctx, "editpool", err)
	}
	fmt.Fprintf(a.out, "Pool updated: %s\n", p.ID)
	return nil
}

// readPoolDetails fills volume, location and equipment. With editing set,
// empty answers leave the field unset; otherwise location defaults to
// outdoor and equipment to none.
func (a *App) readPoolDetails(ctx context.Context, patch *models.PoolPatch, editing bool) error {
	units := a.units(ctx)
	volume, ok, err := GetFloat(a.reader, fmt.Sprintf("Volume in %s (empty to skip)", units.VolumeLabel()), a.out)
	if err != nil {
		return err
	}
	if ok {
		volume = units.ToCubicMetres(volume)
		patch.Volume = &volume
	}

	loc, err := getSimpleText(a.reader, "Location: outdoor or indoor (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if loc != "" {
		l := models.Location(strings.ToLower(loc))
		patch.Location = &l
	}

	eq, err := getSimpleText(a.reader, "Equipment, comma separated: ionizer, heater, ozone, chlorinator ('none' for none, empty to skip)", a.out)
	if err != nil {
		return err
	}
	if eq != "" || !editing {
		patch.Equipment = parseEquipment(eq)
	}
	return nil
}

// DeletePool removes a pool by id.
func (a *App) DeletePool(ctx context.Context, id string) error {
	a.prepare(ctx)

	ok, err := a.pools.Delete(ctx, a.userID, id)
	if err != nil {
		return a.report(ctx, "delpool", err)
	}
	if !ok {
		fmt.Fprintf(a.out, "No pool with id %s\n", id)
		return nil
	}
	fmt.Fprintln(a.out, "Pool deleted")
	return nil
}

// parseEquipment turns "heater, ozone" into a patch that sets every flag:
// listed ones true, the rest false.
func parseEquipment(s string) *models.EquipmentPatch {
	set := map[string]bool{}
	for _, item := range strings.Split(strings.ToLower(s), ",") {
		set[strings.TrimSpace(item)] = true
	}
	flag := func(name string) *bool {
		v := set[name]
		return &v
	}
	return &models.EquipmentPatch{
		Ionizer:     flag("ionizer"),
		Heater:      flag("heater"),
		Ozone:       flag("ozone"),
		Chlorinator: flag("chlorinator"),
	}
}

func equipmentString(e models.Equipment) string {
	var names []string
	if e.Ionizer {
		names = append(names, "ionizer")
	}
	if e.Heater {
		names = append(names, "heater")
	}
	if e.Ozone {
		names = append(names, "ozone")
	}
	if e.Chlorinator {
		names = append(names, "chlorinator")
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
