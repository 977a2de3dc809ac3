package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"changemakers/internal/cascade"
	"changemakers/internal/store"
	"changemakers/internal/utils"
	"changemakers/pkg/types"
)

const seedPrefix = "[seed] "

type fakeInitiativeSeed struct {
	Title    string
	Summary  string
	Category types.InitiativeCategory
}

var fakeInitiatives = []fakeInitiativeSeed{
	{Title: "Borehole for Kiandutu", Summary: "Drill and equip a community borehole to end the daily walk for water.", Category: types.CategoryWater},
	{Title: "Solar lights for Ndhiwa market", Summary: "Install solar street lights so traders can stay open after dark.", Category: types.CategoryInfrastructure},
	{Title: "Maternity ward beds", Summary: "Replace broken beds at the sub-county maternity ward.", Category: types.CategoryHealth},
	{Title: "School feeding in Turkana South", Summary: "Provide a daily hot lunch to three primary schools.", Category: types.CategoryEducation},
	{Title: "Tree nursery for Mau restoration", Summary: "Raise indigenous seedlings for the Mau forest buffer zone.", Category: types.CategoryEnvironment},
	{Title: "Youth football pitch", Summary: "Level and fence a pitch for the ward youth league.", Category: types.CategorySocial},
	{Title: "Dairy cooling centre", Summary: "A shared milk cooler so farmers stop losing evening milk.", Category: types.CategoryAgriculture},
	{Title: "Boda boda savings group", Summary: "Seed capital for a rider savings and loans group.", Category: types.CategoryEconomic},
}

type fakeLocation struct {
	County       string
	Constituency string
	Area         string
	Latitude     float64
	Longitude    float64
}

var fakeLocations = []fakeLocation{
	{County: "Kiambu", Constituency: "Thika Town", Area: "Kiandutu", Latitude: -1.0333, Longitude: 37.0693},
	{County: "Homa Bay", Constituency: "Ndhiwa", Area: "Ndhiwa Market", Latitude: -0.7297, Longitude: 34.3667},
	{County: "Turkana", Constituency: "Turkana South", Area: "Lokichar", Latitude: 2.3833, Longitude: 35.65},
	{County: "Nakuru", Constituency: "Kuresoi South", Area: "Keringet", Latitude: -0.4667, Longitude: 35.6833},
	{County: "Mombasa", Constituency: "Likoni", Area: "Shika Adabu", Latitude: -4.0956, Longitude: 39.6583},
}

var fakeJobTitles = []string{"Site foreman", "Community mobiliser", "Treasurer", "Driver", "Photographer"}

type weightedInitiativeStatus struct {
	Status types.InitiativeStatus
	Weight int
}

var weightedStatuses = []weightedInitiativeStatus{
	{Status: types.InitiativeStatusDraft, Weight: 10},
	{Status: types.InitiativeStatusPublished, Weight: 40},
	{Status: types.InitiativeStatusActive, Weight: 30},
	{Status: types.InitiativeStatusCompleted, Weight: 10},
	{Status: types.InitiativeStatusStalled, Weight: 10},
}

type InitiativeRepos struct {
	Initiatives *store.InitiativeRepository
	Milestones  *store.MilestoneRepository
	Jobs        *store.JobRepository
}

// SeedFakeInitiatives creates count random initiatives spread across the fake
// changemakers. With reset, previously seeded initiatives are first removed
// through the cascade so their dependents go with them.
func SeedFakeInitiatives(ctx context.Context, repos InitiativeRepos, orchestrator *cascade.Orchestrator, count int, reset bool) error {
	if reset {
		removed, err := resetSeededInitiatives(ctx, repos.Initiatives, orchestrator)
		if err != nil {
			return err
		}
		fmt.Printf("Reset seeded fake initiatives: %d deleted\n", removed)
	}

	if count <= 0 {
		fmt.Println("Skipping fake initiatives seed because count <= 0")
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	changemakerIDs := seedChangemakerIDs()

	created := 0
	for i := 0; i < count; i++ {
		fake := fakeInitiatives[rng.Intn(len(fakeInitiatives))]
		location := fakeLocations[rng.Intn(len(fakeLocations))]
		status := pickWeightedStatus(rng)

		target := float64((rng.Intn(190) + 10) * 10000)
		raised := 0.0
		switch status {
		case types.InitiativeStatusCompleted:
			raised = target
		case types.InitiativeStatusActive, types.InitiativeStatusStalled:
			raised = float64(rng.Intn(int(target)))
		case types.InitiativeStatusPublished:
			raised = float64(rng.Intn(int(target) / 4))
		}

		initiative := &types.Initiative{
			ChangemakerID: changemakerIDs[rng.Intn(len(changemakerIDs))],
			InitiativeLocation: types.InitiativeLocation{
				County:       location.County,
				Constituency: location.Constituency,
				Area:         location.Area,
				Latitude:     location.Latitude,
				Longitude:    location.Longitude,
			},
			Title:            fake.Title,
			ShortDescription: seedPrefix + fake.Summary,
			Category:         fake.Category,
			TargetAmount:     target,
			RaisedAmount:     raised,
			ImageURLs:        []string{},
			PaymentDetails: &types.PaymentDetails{
				Method:        types.PaymentMethodMpesaPaybill,
				PaybillNumber: fmt.Sprintf("%06d", rng.Intn(1000000)),
				AccountNumber: strings.ToUpper(utils.NanoIDSize(8)),
			},
			Status:                status,
			AcceptProposals:       utils.BoolPtr(rng.Intn(100) < 80),
			AcceptContentCreators: utils.BoolPtr(rng.Intn(100) < 60),
			AcceptAmbassadors:     utils.BoolPtr(true),
		}

		if err := repos.Initiatives.CreateInitiative(ctx, initiative); err != nil {
			return fmt.Errorf("failed to create fake initiative %d: %w", i+1, err)
		}

		if err := repos.Milestones.CreateMilestones(ctx, fakeMilestones(rng, initiative.ID, status)); err != nil {
			return fmt.Errorf("failed to create milestones for fake initiative %s: %w", initiative.ID, err)
		}

		if err := repos.Jobs.CreateJobs(ctx, fakeJobs(rng, initiative.ID)); err != nil {
			return fmt.Errorf("failed to create jobs for fake initiative %s: %w", initiative.ID, err)
		}

		created++
	}

	fmt.Printf("Fake initiatives seeded: %d created\n", created)
	return nil
}

func resetSeededInitiatives(ctx context.Context, initiatives *store.InitiativeRepository, orchestrator *cascade.Orchestrator) (int, error) {
	removed := 0
	for _, changemakerID := range seedChangemakerIDs() {
		owned, err := initiatives.InitiativesByChangemaker(ctx, changemakerID)
		if err != nil {
			return removed, fmt.Errorf("failed to list seeded initiatives for %s: %w", changemakerID, err)
		}

		for _, initiative := range owned {
			if !strings.HasPrefix(initiative.ShortDescription, seedPrefix) {
				continue
			}

			result, err := orchestrator.DeleteInitiative(ctx, initiative.ID)
			if err != nil {
				return removed, fmt.Errorf("failed to delete seeded initiative %s: %w", initiative.ID, err)
			}
			if result.Deleted {
				removed++
			}
		}
	}
	return removed, nil
}

func fakeMilestones(rng *rand.Rand, initiativeID string, status types.InitiativeStatus) []*types.Milestone {
	titles := []string{"Community meeting", "Procurement", "Construction", "Handover"}
	start := time.Now().AddDate(0, -2, 0)

	done := 0
	switch status {
	case types.InitiativeStatusCompleted:
		done = len(titles)
	case types.InitiativeStatusActive, types.InitiativeStatusStalled:
		done = rng.Intn(len(titles))
	}

	milestones := make([]*types.Milestone, 0, len(titles))
	for i, title := range titles {
		milestoneStatus := types.MilestoneStatusPending
		switch {
		case i < done:
			milestoneStatus = types.MilestoneStatusCompleted
		case i == done && status == types.InitiativeStatusActive:
			milestoneStatus = types.MilestoneStatusInProgress
		}

		milestones = append(milestones, &types.Milestone{
			InitiativeID: initiativeID,
			Title:        title,
			TargetDate:   start.AddDate(0, i, 0).Format(time.DateOnly),
			Status:       milestoneStatus,
		})
	}
	return milestones
}

func fakeJobs(rng *rand.Rand, initiativeID string) []*types.Job {
	count := rng.Intn(3)
	jobs := make([]*types.Job, 0, count)
	for i := 0; i < count; i++ {
		jobs = append(jobs, &types.Job{
			InitiativeID: initiativeID,
			Title:        fakeJobTitles[rng.Intn(len(fakeJobTitles))],
			Type:         utils.StringPtr("volunteer"),
			IsActive:     true,
		})
	}
	return jobs
}

func pickWeightedStatus(rng *rand.Rand) types.InitiativeStatus {
	total := 0
	for _, item := range weightedStatuses {
		total += item.Weight
	}

	if total == 0 {
		return types.InitiativeStatusPublished
	}

	roll := rng.Intn(total)
	running := 0
	for _, item := range weightedStatuses {
		running += item.Weight
		if roll < running {
			return item.Status
		}
	}

	return types.InitiativeStatusPublished
}
