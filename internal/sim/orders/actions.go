package orders

import (
	"errors"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ecs"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/ledger"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/components"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/sim/trade"
)

const weaponCooldown = "weapon"

// approach moves e toward dst at its drive speed and reports whether it is
// within reach. An entity in another sector jumps there first.
func approach(ctx *Context, e *ecs.Entity, dst *components.Position, reach float64) (bool, error) {
	if _, err := e.RequireComponents(components.KindPosition, components.KindDrive); err != nil {
		return false, err
	}
	pos := ecs.MustGet[*components.Position](e)
	drive := ecs.MustGet[*components.Drive](e)

	if pos.Sector != dst.Sector {
		undock(ctx, e)
		pos.Sector = dst.Sector
		ctx.World.NotifyPartitionChanged(e)
	}
	dist := pos.Distance(dst)
	if dist <= reach {
		return true, nil
	}
	undock(ctx, e)
	travel := dist - reach
	step := drive.MaxSpeed * ctx.DT
	if step >= travel {
		// stop exactly at the edge of reach
		ratio := reach / dist
		pos.X = dst.X - (dst.X-pos.X)*ratio
		pos.Y = dst.Y - (dst.Y-pos.Y)*ratio
		return true, nil
	}
	pos.X += (dst.X - pos.X) / dist * step
	pos.Y += (dst.Y - pos.Y) / dist * step
	return false, nil
}

func targetPosition(ctx *Context, id ecs.EntityID) (*ecs.Entity, *components.Position, bool) {
	target, ok := ctx.Entity(id)
	if !ok {
		return nil, nil, false
	}
	p, ok := ecs.Get[*components.Position](target)
	if !ok {
		return nil, nil, false
	}
	return target, p, true
}

func execMove(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	_, dst, ok := targetPosition(ctx, a.Target)
	if !ok {
		return false, nil
	}
	reach := 0.0
	if d, ok := ecs.Get[*components.Drive](e); ok {
		reach = d.ArrivalRadius
	}
	return approach(ctx, e, dst, reach)
}

func execDock(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	target, dst, ok := targetPosition(ctx, a.Target)
	if !ok {
		return false, nil
	}
	if _, err := e.RequireComponents(components.KindDockable, components.KindPosition); err != nil {
		return false, err
	}
	docks, ok := ecs.Get[*components.Docks](target)
	if !ok {
		return false, nil
	}
	dockable := ecs.MustGet[*components.Dockable](e)
	if dockable.DockedAt == target.ID() {
		return true, nil
	}
	if docks.Free() <= 0 {
		return false, nil
	}
	undock(ctx, e)
	pos := ecs.MustGet[*components.Position](e)
	moved := pos.Sector != dst.Sector
	*pos = *dst
	if moved {
		ctx.World.NotifyPartitionChanged(e)
	}
	docks.Docked = append(docks.Docked, e.ID())
	dockable.DockedAt = target.ID()
	return true, nil
}

// undock detaches e from its dock, if any.
func undock(ctx *Context, e *ecs.Entity) {
	dockable, ok := ecs.Get[*components.Dockable](e)
	if !ok || dockable.DockedAt == 0 {
		return
	}
	if host, ok := ctx.Entity(dockable.DockedAt); ok {
		if docks, ok := ecs.Get[*components.Docks](host); ok {
			docks.Detach(e.ID())
		}
	}
	dockable.DockedAt = 0
}

func execUndock(ctx *Context, e *ecs.Entity, _ *components.Action) (bool, error) {
	undock(ctx, e)
	return true, nil
}

func execTeleport(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	_, dst, ok := targetPosition(ctx, a.Target)
	if !ok {
		return false, nil
	}
	if _, err := e.RequireComponents(components.KindPosition); err != nil {
		return false, err
	}
	pos := ecs.MustGet[*components.Position](e)
	undock(ctx, e)
	moved := pos.Sector != dst.Sector
	*pos = *dst
	if moved {
		ctx.World.NotifyPartitionChanged(e)
	}
	return true, nil
}

func docked(e, other *ecs.Entity) bool {
	if d, ok := ecs.Get[*components.Dockable](e); ok && d.DockedAt == other.ID() {
		return true
	}
	if d, ok := ecs.Get[*components.Dockable](other); ok && d.DockedAt == e.ID() {
		return true
	}
	return false
}

func execTransact(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	other, ok := ctx.Entity(a.Target)
	if !ok || !docked(e, other) {
		return false, nil
	}
	buyer, seller := e.ID(), other.ID()
	if a.Role == components.RoleSeller {
		buyer, seller = seller, buyer
	}
	err := trade.Settle(ctx.World, a.Transaction, buyer, seller)
	if errors.Is(err, trade.ErrUnknownDeal) {
		// cancelled meanwhile, nothing left to exchange
		return true, nil
	}
	return err == nil, err
}

func execAttack(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	target, dst, ok := targetPosition(ctx, a.Target)
	if !ok {
		return true, nil
	}
	hp, ok := ecs.Get[*components.Hitpoints](target)
	if !ok {
		return true, nil
	}
	if _, err := e.RequireComponents(components.KindWeapon); err != nil {
		return false, err
	}
	weapon := ecs.MustGet[*components.Weapon](e)
	inRange, err := approach(ctx, e, dst, weapon.Range)
	if err != nil || !inRange {
		return false, err
	}
	if !e.Cooldowns().Ready(weaponCooldown) {
		return false, nil
	}
	e.Cooldowns().Use(weaponCooldown, weapon.Cooldown)
	hp.HP -= weapon.Damage
	if hp.HP <= 0 {
		target.Unregister("destroyed")
		return true, nil
	}
	return false, nil
}

func execMine(ctx *Context, e *ecs.Entity, a *components.Action) (bool, error) {
	field, dst, ok := targetPosition(ctx, a.Target)
	if !ok {
		return true, nil
	}
	deposit, ok := ecs.Get[*components.Mineable](field)
	if !ok || deposit.Remaining <= 0 {
		return true, nil
	}
	if _, err := e.RequireComponents(components.KindMining, components.KindStorage); err != nil {
		return false, err
	}
	mining := ecs.MustGet[*components.Mining](e)
	storage := ecs.MustGet[*components.Storage](e)
	if storage.Space.Available() <= 0 {
		return true, nil
	}
	inRange, err := approach(ctx, e, dst, mining.Range)
	if err != nil || !inRange {
		return false, err
	}

	mining.Progress += mining.Rate * ctx.DT
	units := min(int(mining.Progress), deposit.Remaining, storage.Space.Available())
	if units > 0 {
		if err := storage.Put(ledger.Cargo{deposit.Commodity: units}); err != nil {
			return false, err
		}
		deposit.Remaining -= units
		mining.Progress -= float64(units)
	}
	if deposit.Remaining <= 0 || storage.Space.Available() <= 0 {
		mining.Progress = 0
		return true, nil
	}
	return false, nil
}
