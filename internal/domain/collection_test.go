package domain_test

import (
	"testing"

	"github.com/msomdec/userdesk/internal/domain"
)

func strPtr(s string) *string { return &s }

func sampleUsers() domain.UserCollection {
	return domain.UserCollection{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", AvatarURL: "https://example.com/1.jpg"},
		{ID: 2, FirstName: "Bob", LastName: "Marsh", Email: "bob@example.com", AvatarURL: "https://example.com/2.jpg"},
		{ID: 3, FirstName: "Cleo", LastName: "Annand", Email: "cleo@example.com", AvatarURL: "https://example.com/3.jpg"},
	}
}

func TestMerge_OverwritesPresentFieldsOnly(t *testing.T) {
	users := domain.UserCollection{{ID: 1, FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"}}

	merged, ok := users.Merge(domain.UserPatch{ID: 1, FirstName: strPtr("Anna")})
	if !ok {
		t.Fatal("expected merge to find record 1")
	}
	want := domain.UserRecord{ID: 1, FirstName: "Anna", LastName: "Lee", Email: "ann@example.com"}
	if len(merged) != 1 || merged[0] != want {
		t.Fatalf("expected [%+v], got %+v", want, merged)
	}
	if users[0].FirstName != "Ann" {
		t.Fatalf("merge mutated the input collection: %+v", users[0])
	}
}

func TestMerge_PreservesOrderAndOtherRecords(t *testing.T) {
	users := sampleUsers()

	merged, ok := users.Merge(domain.PatchFromFields(2, domain.UserFields{
		FirstName: "Robert", LastName: "Marsh", Email: "robert@example.com",
	}))
	if !ok {
		t.Fatal("expected merge to find record 2")
	}
	if len(merged) != len(users) {
		t.Fatalf("expected %d records, got %d", len(users), len(merged))
	}
	for i := range users {
		if merged[i].ID != users[i].ID {
			t.Fatalf("order changed at %d: got id %d, want %d", i, merged[i].ID, users[i].ID)
		}
	}
	if merged[0] != users[0] || merged[2] != users[2] {
		t.Fatal("expected untouched records to be unchanged")
	}
	if merged[1].FirstName != "Robert" || merged[1].Email != "robert@example.com" {
		t.Fatalf("expected record 2 to be updated, got %+v", merged[1])
	}
	if merged[1].AvatarURL != users[1].AvatarURL {
		t.Fatalf("expected avatar to be preserved, got %q", merged[1].AvatarURL)
	}
}

func TestMerge_UnknownIDLeavesCollectionUnchanged(t *testing.T) {
	users := sampleUsers()

	merged, ok := users.Merge(domain.UserPatch{ID: 99, FirstName: strPtr("Ghost")})
	if ok {
		t.Fatal("expected merge of unknown id to report false")
	}
	if !merged.Equal(users) {
		t.Fatalf("expected unchanged collection, got %+v", merged)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantLen int
		wantOK  bool
	}{
		{"present", 2, 2, true},
		{"absent", 42, 3, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := sampleUsers()
			remaining, ok := users.Remove(tc.id)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if len(remaining) != tc.wantLen {
				t.Fatalf("expected %d records, got %d", tc.wantLen, len(remaining))
			}
			if _, found := remaining.Find(tc.id); found {
				t.Fatalf("record %d still present", tc.id)
			}
			if len(users) != 3 {
				t.Fatal("remove mutated the input collection")
			}
		})
	}
}

func TestFilter(t *testing.T) {
	users := sampleUsers()

	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"empty term returns all", "", []int64{1, 2, 3}},
		{"case insensitive", "ANN", []int64{1, 3}},
		{"spans first and last name", "bob mar", []int64{2}},
		{"no match", "zed", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := users.Filter(tc.term)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d records, got %d (%+v)", len(tc.want), len(got), got)
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	users := sampleUsers()

	once := users.Filter("an")
	twice := once.Filter("an")
	if !once.Equal(twice) {
		t.Fatalf("expected filtering twice to be idempotent: %+v vs %+v", once, twice)
	}
	if len(users) != 3 {
		t.Fatal("filter mutated the input collection")
	}
}
