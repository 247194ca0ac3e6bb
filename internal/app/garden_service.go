package app

import (
	"context"

	"journal/internal/domain"
)

// Garden growth stages, lowest first.
const (
	StageSeedling  = "seedling"
	StageSprouting = "sprouting"
	StageGrowing   = "growing"
	StageBlooming  = "blooming"
)

// stageThresholds[i] is the count needed to leave stage i.
var stageThresholds = [...]int{2, 5, 10}

// Plant is one theme in the garden.
type Plant struct {
	Theme          string `json:"theme"`
	Count          int    `json:"count"`
	Stage          string `json:"stage"`
	NextStageNeeds int    `json:"nextStageNeeds"`
}

// Garden maps lifetime theme counts to growth stages.
type Garden struct {
	Plants         []Plant `json:"plants"`
	TotalPlants    int     `json:"totalPlants"`
	BloomingPlants int     `json:"bloomingPlants"`
}

// GardenService builds the garden view from a user's full history.
type GardenService struct {
	repo domain.EntryRepository
}

// NewGardenService creates a GardenService backed by the given repository.
func NewGardenService(repo domain.EntryRepository) *GardenService {
	return &GardenService{repo: repo}
}

// Get counts every theme across all of the user's entries.
func (s *GardenService) Get(ctx context.Context, userID string) (*Garden, error) {
	entries, err := s.repo.FindEntries(ctx, domain.EntryQuery{UserID: NormalizeUserID(userID)})
	if err != nil {
		return nil, err
	}
	return BuildGarden(CountThemes(entries)), nil
}

// BuildGarden converts theme counts into plants, largest first.
func BuildGarden(f ThemeFrequency) *Garden {
	g := &Garden{Plants: []Plant{}}
	for _, theme := range f.ranked() {
		count := f.counts[theme]
		if count < 1 {
			continue
		}
		stage, rank := StageFor(count)
		p := Plant{Theme: theme, Count: count, Stage: stage}
		if stage != StageBlooming {
			p.NextStageNeeds = stageThresholds[rank] - count
		}
		g.Plants = append(g.Plants, p)
		if stage == StageBlooming {
			g.BloomingPlants++
		}
	}
	g.TotalPlants = len(g.Plants)
	return g
}

// StageFor returns the stage for count and its rank among the stages.
func StageFor(count int) (string, int) {
	switch {
	case count >= 10:
		return StageBlooming, 3
	case count >= 5:
		return StageGrowing, 2
	case count >= 2:
		return StageSprouting, 1
	default:
		return StageSeedling, 0
	}
}
