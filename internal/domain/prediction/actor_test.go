package prediction

import "testing"

func TestCanSettle(t *testing.T) {
	t.Parallel()

	post := Post{ID: "post-1", AuthorID: "user-7"}
	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{name: "admin", actor: Actor{ID: "a", Role: RoleAdmin}, want: true},
		{name: "system", actor: SystemActor, want: true},
		{name: "author", actor: Actor{ID: "user-7", Role: RoleUser}, want: true},
		{name: "other user", actor: Actor{ID: "user-8", Role: RoleUser}, want: false},
		{name: "anonymous", actor: Actor{}, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanSettle(tc.actor, post); got != tc.want {
				t.Fatalf("CanSettle=%v want %v", got, tc.want)
			}
		})
	}
}

func TestOutcomeGroupRule(t *testing.T) {
	t.Parallel()

	group := OutcomeGroup{Outcomes: []Rule{{Name: "Over"}, {Name: "Under"}}}
	rule, ok := group.Rule(" under ")
	if !ok || rule.Name != "Under" {
		t.Fatalf("expected Under rule, got %+v ok=%v", rule, ok)
	}
	if _, ok := group.Rule("exact"); ok {
		t.Fatalf("unexpected match for unknown outcome")
	}

	single := OutcomeGroup{Outcomes: []Rule{{Name: "BTTS"}}}
	if _, ok := single.Rule("anything"); !ok {
		t.Fatalf("single-rule group must resolve any name")
	}
}
