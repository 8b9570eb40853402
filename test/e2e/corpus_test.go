package e2e

import "testing"

func TestBuildCorpus(t *testing.T) {
	corpus := BuildCorpus()
	if len(corpus.Items) == 0 {
		t.Fatal("corpus has no items")
	}
	if len(corpus.TestCases) == 0 {
		t.Fatal("corpus has no goal test cases")
	}

	ids := make(map[string]struct{}, len(corpus.Items))
	for _, item := range corpus.Items {
		if item.ID == "" {
			t.Errorf("item %q has no ID", item.Title)
		}
		if _, dup := ids[item.ID]; dup {
			t.Errorf("duplicate item ID %q", item.ID)
		}
		ids[item.ID] = struct{}{}
		if item.Annotation == nil {
			t.Errorf("item %q has no annotation", item.ID)
		}
	}

	// Every expected winner must exist in the corpus.
	for _, tc := range corpus.TestCases {
		for _, want := range tc.ExpectedItemIDs {
			if _, ok := ids[want]; !ok {
				t.Errorf("test case %q expects unknown item %q", tc.Description, want)
			}
		}
	}
}
