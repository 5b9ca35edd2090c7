// Package capacity derives utilization metrics from initiative effort and
// configured team capacity.
package capacity

import (
	"fmt"
	"math"
	"sort"

	"github.com/alexanderramin/portfolio/internal/domain"
)

// WarningThreshold is the utilization at which a team is flagged as
// nearly full.
const WarningThreshold = 85

type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelOver    Level = "over"
)

// Percent keeps the signed, unclamped value for threshold checks.
type Percent float64

// Display clamps to [0, 100] for progress bars.
func (p Percent) Display() float64 {
	return math.Max(0, math.Min(100, float64(p)))
}

func (p Percent) Level() Level {
	switch {
	case p > 100:
		return LevelOver
	case p >= WarningThreshold:
		return LevelWarning
	default:
		return LevelOK
	}
}

func (p Percent) String() string {
	return fmt.Sprintf("%.0f%%", float64(p))
}

func ratio(num, den float64) Percent {
	if den == 0 || math.IsNaN(num) || math.IsNaN(den) {
		return 0
	}
	return Percent(num / den * 100)
}

// counts reports whether an initiative contributes to load.
func counts(i *domain.Initiative) bool {
	return i.Status != domain.StatusDeleted && i.Status != domain.StatusObsolete
}

// EffectiveCapacity is base - adjustment - buffer, floored at zero. A
// negative adjustment adds capacity.
func EffectiveCapacity(ownerID string, cfg domain.AppConfig) float64 {
	eff := cfg.TeamCapacities[ownerID] - cfg.TeamCapacityAdjustments[ownerID] - cfg.TeamBuffers[ownerID]
	return math.Max(0, eff)
}

func ownerSet(ownerIDs []string) map[string]bool {
	set := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		set[id] = true
	}
	return set
}

// Utilization is the estimated effort of live initiatives owned by the set
// over the set's effective capacity. It is 0 when capacity is 0.
func Utilization(ownerIDs []string, initiatives []*domain.Initiative, cfg domain.AppConfig) Percent {
	set := ownerSet(ownerIDs)
	var load, capacity float64
	for id := range set {
		capacity += EffectiveCapacity(id, cfg)
	}
	for _, i := range initiatives {
		if set[i.OwnerID] && counts(i) {
			load += i.EstimatedEffort
		}
	}
	return ratio(load, capacity)
}

// Efficiency is actual over estimated effort across live initiatives.
func Efficiency(initiatives []*domain.Initiative) Percent {
	var actual, estimated float64
	for _, i := range initiatives {
		if !counts(i) {
			continue
		}
		actual += i.ActualEffort
		estimated += i.EstimatedEffort
	}
	return ratio(actual, estimated)
}

// UnplannedRatio is the share of estimated effort on unplanned work.
func UnplannedRatio(initiatives []*domain.Initiative) Percent {
	var unplanned, total float64
	for _, i := range initiatives {
		if !counts(i) {
			continue
		}
		total += i.EstimatedEffort
		if i.WorkType == domain.WorkUnplanned {
			unplanned += i.EstimatedEffort
		}
	}
	return ratio(unplanned, total)
}

// UnplannedActuals sums effort logged against unplanned work: whole
// unplanned initiatives plus tasks tagged Unplanned inside planned ones.
func UnplannedActuals(i *domain.Initiative) float64 {
	if !counts(i) {
		return 0
	}
	if i.WorkType == domain.WorkUnplanned {
		return i.ActualEffort
	}
	var total float64
	for idx := range i.Tasks {
		t := &i.Tasks[idx]
		if t.IsDeleted() {
			continue
		}
		for _, tag := range t.Tags {
			if tag == domain.TagUnplanned {
				total += t.ActualEffort
				break
			}
		}
	}
	return total
}

// BufferHealth is (buffer - unplanned actuals) / buffer for the owner set.
// It goes negative once unplanned work exceeds the reserve, and is 0 when
// no buffer is reserved.
func BufferHealth(ownerIDs []string, initiatives []*domain.Initiative, cfg domain.AppConfig) Percent {
	set := ownerSet(ownerIDs)
	var buffer, used float64
	for id := range set {
		buffer += cfg.TeamBuffers[id]
	}
	for _, i := range initiatives {
		if set[i.OwnerID] {
			used += UnplannedActuals(i)
		}
	}
	return ratio(buffer-used, buffer)
}

// SuggestedBuffer applies the BAU buffer percentage to an owner's base
// capacity.
func SuggestedBuffer(ownerID string, cfg domain.AppConfig) float64 {
	return cfg.TeamCapacities[ownerID] * cfg.BAUBufferSuggestion / 100
}

type Row struct {
	OwnerID         string
	Base            float64
	Adjustment      float64
	Buffer          float64
	SuggestedBuffer float64
	Effective       float64
	Estimated       float64
	Actual          float64
	Utilization     Percent
	BufferHealth    Percent
}

type Report struct {
	Rows           []Row
	Utilization    Percent
	Efficiency     Percent
	UnplannedRatio Percent
	BufferHealth   Percent
}

// TeamReport builds one row per owner, sorted by id, plus aggregate
// metrics over the whole set. Initiatives outside the set are ignored.
func TeamReport(ownerIDs []string, initiatives []*domain.Initiative, cfg domain.AppConfig) Report {
	set := ownerSet(ownerIDs)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	byOwner := make(map[string][]*domain.Initiative, len(ids))
	var owned []*domain.Initiative
	for _, i := range initiatives {
		if set[i.OwnerID] {
			byOwner[i.OwnerID] = append(byOwner[i.OwnerID], i)
			owned = append(owned, i)
		}
	}

	rep := Report{Rows: make([]Row, 0, len(ids))}
	for _, id := range ids {
		row := Row{
			OwnerID:         id,
			Base:            cfg.TeamCapacities[id],
			Adjustment:      cfg.TeamCapacityAdjustments[id],
			Buffer:          cfg.TeamBuffers[id],
			SuggestedBuffer: SuggestedBuffer(id, cfg),
			Effective:       EffectiveCapacity(id, cfg),
			Utilization:     Utilization([]string{id}, byOwner[id], cfg),
			BufferHealth:    BufferHealth([]string{id}, byOwner[id], cfg),
		}
		for _, i := range byOwner[id] {
			if counts(i) {
				row.Estimated += i.EstimatedEffort
				row.Actual += i.ActualEffort
			}
		}
		rep.Rows = append(rep.Rows, row)
	}
	rep.Utilization = Utilization(ids, owned, cfg)
	rep.Efficiency = Efficiency(owned)
	rep.UnplannedRatio = UnplannedRatio(owned)
	rep.BufferHealth = BufferHealth(ids, owned, cfg)
	return rep
}
