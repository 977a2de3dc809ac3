package seed

import (
	"context"
	"errors"
	"fmt"

	"changemakers/internal/store"
	"changemakers/internal/utils"
	"changemakers/pkg/types"
)

type fakeChangemakerSeed struct {
	ID           string
	AccountID    string
	DisplayName  string
	Organization string
}

// Fixed IDs keep repeated seeding idempotent.
// To generate new IDs: `go run ./cmd/changemakers nanoid`
var fakeChangemakers = []fakeChangemakerSeed{
	{ID: "t3VUYmqnx9tKFJ0bLHzqfW3o1Y8RkAaE", AccountID: "11111111-1111-1111-1111-111111111111", DisplayName: "Wanjiru Kamau", Organization: "Kiambu Water Users Association"},
	{ID: "b8cP2oWvRj4mNzQ7hX1sYk5eTgA0uLdF", AccountID: "22222222-2222-2222-2222-222222222222", DisplayName: "Otieno Ochieng"},
	{ID: "Hq6ZrS1jKxW9vBn3TfE7cLm2PaYo8UgD", AccountID: "33333333-3333-3333-3333-333333333333", DisplayName: "Amina Hassan", Organization: "Mombasa Youth Sports Trust"},
	{ID: "Lk0pXe4RtB7wQz2MnVs9JhC5aUfG1oYi", AccountID: "44444444-4444-4444-4444-444444444444", DisplayName: "Kiprono Cheruiyot"},
}

func seedChangemakerIDs() []string {
	ids := make([]string, 0, len(fakeChangemakers))
	for _, changemaker := range fakeChangemakers {
		ids = append(ids, changemaker.ID)
	}
	return ids
}

// SeedChangemakers inserts any of the fake changemakers that are missing.
// Existing rows are left untouched.
func SeedChangemakers(ctx context.Context, repo *store.ChangemakerRepository) error {
	seeded := 0
	for _, fake := range fakeChangemakers {
		_, err := repo.ChangemakerByAccount(ctx, fake.AccountID)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrChangemakerNotFound) {
			return fmt.Errorf("failed to fetch fake changemaker %s: %w", fake.AccountID, err)
		}

		changemaker := &types.Changemaker{
			ID:          fake.ID,
			AccountID:   fake.AccountID,
			DisplayName: fake.DisplayName,
		}
		if fake.Organization != "" {
			changemaker.Organization = utils.StringPtr(fake.Organization)
		}

		if err := repo.CreateChangemaker(ctx, changemaker); err != nil {
			return fmt.Errorf("failed to create fake changemaker %s: %w", fake.AccountID, err)
		}
		seeded++
	}

	fmt.Printf("Fake changemakers seeded: %d created\n", seeded)
	return nil
}
