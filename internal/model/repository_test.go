package model

import "testing"

func TestParseRepository(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RepositoryReference
		wantErr bool
	}{
		{name: "valid", in: "acme/widgets", want: RepositoryReference{Owner: "acme", Name: "widgets"}},
		{name: "missing name", in: "acme/", wantErr: true},
		{name: "no slash", in: "acme", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepository(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.FullPath() != "acme/widgets" || got.Key() != "acme-widgets" {
				t.Errorf("unexpected derived paths %q %q", got.FullPath(), got.Key())
			}
		})
	}
}

func TestPullRequestMutable(t *testing.T) {
	tests := []struct {
		pr   PullRequestContext
		want bool
	}{
		{PullRequestContext{State: PullRequestOpen}, true},
		{PullRequestContext{State: PullRequestOpen, IsDraft: true}, false},
		{PullRequestContext{State: PullRequestClosed}, false},
	}
	for _, tt := range tests {
		if got := tt.pr.Mutable(); got != tt.want {
			t.Errorf("Mutable(%+v) = %v, want %v", tt.pr, got, tt.want)
		}
	}
}

func TestEventKindFromHeader(t *testing.T) {
	if EventKindFromHeader("push") != EventPush {
		t.Error("push header should map to EventPush")
	}
	if EventKindFromHeader("ping") != EventUnknown {
		t.Error("ping header should map to EventUnknown")
	}
}
