package usage

import (
	"sort"

	"cookstove_tracker/internal/models"
)

const (
	unpairedName = "Unpaired"
	unknownModel = "Unknown"
)

// GroupByUser folds a flat usage join into user → stove → entries.
//
// Owners are ordered by ascending id and the unpaired bucket (no stove, or a
// stove without owner) comes last. Stoves keep first-seen order within their
// owner, entries keep the input order.
func GroupByUser(rows []models.UsageRow) models.GroupedUsage {
	type userAcc struct {
		owner      models.GroupOwner
		stoveOrder []string
		stoves     map[string]*models.StoveGroup
	}

	var (
		owned    = make(map[int]*userAcc)
		unpaired *userAcc
	)
	newAcc := func(owner models.GroupOwner) *userAcc {
		return &userAcc{owner: owner, stoves: make(map[string]*models.StoveGroup)}
	}

	for _, r := range rows {
		var acc *userAcc
		if r.OwnerID == nil {
			if unpaired == nil {
				unpaired = newAcc(models.GroupOwner{Name: unpairedName})
			}
			acc = unpaired
		} else {
			acc = owned[*r.OwnerID]
			if acc == nil {
				id := *r.OwnerID
				acc = newAcc(models.GroupOwner{ID: &id, Name: deref(r.OwnerName), Email: r.OwnerEmail})
				owned[id] = acc
			}
		}

		g := acc.stoves[r.StoveID]
		if g == nil {
			model := unknownModel
			if r.StoveModel != nil {
				model = *r.StoveModel
			}
			g = &models.StoveGroup{StoveID: r.StoveID, Model: model, Usage: []models.UsageEntry{}}
			acc.stoves[r.StoveID] = g
			acc.stoveOrder = append(acc.stoveOrder, r.StoveID)
		}
		g.Usage = append(g.Usage, models.UsageEntry{
			ID:            r.ID,
			Date:          r.Date,
			CookingEvents: r.CookingEvents,
			TotalMinutes:  r.TotalMinutes,
			FuelUsedKg:    r.FuelUsedKg,
			CreatedAt:     r.CreatedAt,
		})
	}

	ids := make([]int, 0, len(owned))
	for id := range owned {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	accs := make([]*userAcc, 0, len(ids)+1)
	for _, id := range ids {
		accs = append(accs, owned[id])
	}
	if unpaired != nil {
		accs = append(accs, unpaired)
	}

	out := models.GroupedUsage{TotalRecords: len(rows), GroupedByUser: make([]models.UserGroup, 0, len(accs))}
	for _, acc := range accs {
		ug := models.UserGroup{User: acc.owner, Stoves: make([]models.StoveGroup, 0, len(acc.stoveOrder))}
		for _, sid := range acc.stoveOrder {
			ug.Stoves = append(ug.Stoves, *acc.stoves[sid])
		}
		out.GroupedByUser = append(out.GroupedByUser, ug)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
